package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/amal/apps/api/echo"
	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/content"
	"github.com/trezcool/amal/core/guestsync"
	"github.com/trezcool/amal/core/intention"
	"github.com/trezcool/amal/core/mission"
	"github.com/trezcool/amal/core/progress"
	"github.com/trezcool/amal/core/quran"
	"github.com/trezcool/amal/core/ramadan"
	"github.com/trezcool/amal/core/user"
	appfs "github.com/trezcool/amal/fs"
	emailsvc "github.com/trezcool/amal/services/email"
	sqlxrepos "github.com/trezcool/amal/storage/database/sqlx"
	testutil "github.com/trezcool/amal/tests"
)

// now is 05:00 on 2 March 2026 in Jakarta (the configured location): Subuh time.
var now = time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type fixture struct {
	app     echoapi.Server
	conf    *core.Config
	usrRepo user.Repository
	mails   *emailsvc.ServiceMock
	tafsir  *tafsirStub
}

type tafsirStub struct {
	calls int
}

func (s *tafsirStub) Surah(_ context.Context, n int) (quran.Tafsir, error) {
	s.calls++
	if n != 1 {
		return quran.Tafsir{}, quran.ErrTafsirUnavailable
	}
	return quran.Tafsir{Surah: 1, Name: "Al-Fatihah", Ayahs: []quran.AyahTafsir{
		{Ayah: 1, Text: "In the name of Allah"},
		{Ayah: 2, Text: "All praise is due to Allah"},
	}}, nil
}

func setup(t *testing.T) fixture {
	t.Helper()

	origNow, origJWTNow := core.NowFunc, jwt.TimeFunc
	core.NowFunc = func() time.Time { return now }
	jwt.TimeFunc = core.NowFunc
	t.Cleanup(func() {
		core.NowFunc = origNow
		jwt.TimeFunc = origJWTNow
	})

	conf := core.NewTestConfig()
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	missionRepo := sqlxrepos.NewMissionRepository(db)
	quranRepo := sqlxrepos.NewQuranRepository(db)
	intentionRepo := sqlxrepos.NewIntentionRepository(db)

	catalog, err := mission.LoadCatalog(appfs.FS)
	require.NoError(t, err)
	titles, err := progress.LoadTitles(appfs.FS)
	require.NoError(t, err)
	faq, err := content.LoadFAQ(appfs.FS)
	require.NoError(t, err)

	// set up services
	mails := emailsvc.NewServiceMock(conf)
	tafsir := new(tafsirStub)

	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         nopLogger{},
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		UserSvc:        user.NewServiceMock(usrRepo, mails, conf),
		MissionSvc:     mission.NewService(missionRepo, catalog),
		ProgressSvc:    progress.NewService(missionRepo, titles),
		QuranSvc:       quran.NewService(quranRepo),
		Tafsir:         tafsir,
		IntentionSvc:   intention.NewService(intentionRepo),
		RamadanSvc:     ramadan.NewService(sqlxrepos.NewRamadanRepository(db)),
		SyncSvc:        guestsync.NewService(db, catalog, missionRepo, quranRepo, intentionRepo),
		FAQ:            faq,
	})
	return fixture{app: app, conf: conf, usrRepo: usrRepo, mails: mails, tafsir: tafsir}
}

func (f fixture) createUser(t *testing.T, name, uname, email, pwd string, isActive bool) user.User {
	t.Helper()
	return testutil.CreateUser(t, f.usrRepo, name, uname, email, pwd, isActive, now)
}

func (f fixture) createAdmin(t *testing.T, name, uname, email string) user.User {
	t.Helper()
	usr := f.createUser(t, name, uname, email, "", true)
	usr.IsAdmin = true
	usr, err := f.usrRepo.UpdateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func (f fixture) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.NewToken(f.conf, usr)
	require.NoError(t, err)
	return token
}

// do serves the request and returns the recorded response.
func (f fixture) do(method, path, token string, body ...interface{}) *httptest.ResponseRecorder {
	var data []byte
	if len(body) > 0 {
		switch b := body[0].(type) {
		case []byte:
			data = b
		case string:
			data = []byte(b)
		default:
			data, _ = json.Marshal(b)
		}
	}
	req, rec := newAuthRequest(method, path, token, data)
	f.app.ServeHTTP(rec, req)
	return rec
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data []byte) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, f fixture, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.body != nil {
				rec = f.do(tt.method, tt.path, tt.token, tt.body)
			} else {
				rec = f.do(tt.method, tt.path, tt.token)
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
