package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
)

var (
	tokenSalt = []byte("amal.core.user.password_reset")
	b32       = base32.StdEncoding.WithPadding(base32.NoPadding)
	tokenRef  = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// EncodeUID base64 encodes the ID of usr.
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

func decodeUID(uid string) (string, error) {
	id, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(id), nil
}

// tokenGenerator makes single-use password reset tokens: "<base32 day>-<signature>".
// The signature covers the password hash and the last login time, so a token stops working as
// soon as the password is changed or the user logs in.
type tokenGenerator struct {
	key     [32]byte
	timeout time.Duration
	now     func() time.Time
}

func newTokenGenerator(secret string, timeout time.Duration) tokenGenerator {
	return tokenGenerator{
		key:     sha256.Sum256(append(append([]byte{}, tokenSalt...), secret...)),
		timeout: timeout,
		now:     core.NowFunc,
	}
}

func (g tokenGenerator) make(usr User) string {
	return g.makeWithDay(usr, daysSinceRef(g.now()))
}

func (g tokenGenerator) check(usr User, token string) error {
	parts := strings.SplitN(token, "-", 2)
	if token == "" || len(parts) != 2 {
		return errInvalidToken
	}
	raw, err := b32.DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}
	day, err := strconv.Atoi(string(raw))
	if err != nil {
		return errInvalidToken
	}

	// tampering
	if subtle.ConstantTimeCompare([]byte(g.makeWithDay(usr, day)), []byte(token)) == 0 {
		return errInvalidToken
	}
	if daysSinceRef(g.now())-day > int(g.timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func (g tokenGenerator) makeWithDay(usr User, day int) string {
	var state bytes.Buffer
	state.WriteString(usr.ID)
	state.Write(usr.PasswordHash)
	if !usr.LastLogin.IsZero() {
		state.WriteString(usr.LastLogin.UTC().Format(time.RFC3339Nano))
	}
	state.WriteString(strconv.Itoa(day))

	mac := hmac.New(sha256.New, g.key[:])
	mac.Write(state.Bytes())
	return b32.EncodeToString([]byte(strconv.Itoa(day))) + "-" + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func daysSinceRef(t time.Time) int {
	return int(t.Sub(tokenRef).Hours() / 24)
}
