package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/user"
)

const userColumns = `id, name, username, email, password_hash, is_active, is_admin,
	latitude, longitude, timezone, method, hijri_adjustment, created_at, updated_at, last_login`

var userOrderings = map[string]string{
	"name":       "name",
	"username":   "username",
	"email":      "email",
	"is_active":  "is_active",
	"is_admin":   "is_admin",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"last_login": "last_login",
}

type userRow struct {
	ID              string       `db:"id"`
	Name            string       `db:"name"`
	Username        null.String  `db:"username"`
	Email           null.String  `db:"email"`
	PasswordHash    string       `db:"password_hash"`
	IsActive        bool         `db:"is_active"`
	IsAdmin         bool         `db:"is_admin"`
	Latitude        null.Float64 `db:"latitude"`
	Longitude       null.Float64 `db:"longitude"`
	Timezone        string       `db:"timezone"`
	Method          string       `db:"method"`
	HijriAdjustment int          `db:"hijri_adjustment"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
	LastLogin       null.Time    `db:"last_login"`
}

func (row userRow) user() user.User {
	return user.User{
		ID:       row.ID,
		Name:     row.Name,
		Username: row.Username.String,
		Email:    row.Email.String,
		IsActive: row.IsActive,
		IsAdmin:  row.IsAdmin,
		Preferences: user.Preferences{
			Latitude:        row.Latitude.Ptr(),
			Longitude:       row.Longitude.Ptr(),
			Timezone:        row.Timezone,
			Method:          row.Method,
			HijriAdjustment: row.HijriAdjustment,
		},
		PasswordHash: []byte(row.PasswordHash),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
}

func userArgs(usr user.User) []interface{} {
	return []interface{}{
		usr.Name,
		null.NewString(usr.Username, usr.Username != ""),
		null.NewString(usr.Email, usr.Email != ""),
		string(usr.PasswordHash),
		usr.IsActive,
		usr.IsAdmin,
		null.Float64FromPtr(usr.Preferences.Latitude),
		null.Float64FromPtr(usr.Preferences.Longitude),
		usr.Preferences.Timezone,
		usr.Preferences.Method,
		usr.Preferences.HijriAdjustment,
		utc(usr.CreatedAt),
		utc(usr.UpdatedAt),
		null.NewTime(utc(usr.LastLogin), !usr.LastLogin.IsZero()),
	}
}

type userRepository struct {
	repo
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repo{exec: exec}}
}

func (r userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	if username == "" && email == "" {
		return nil
	}
	exe := r.getExec(exec)

	var w where
	w.add("(username = ? OR email = ?)", null.NewString(username, username != ""), null.NewString(email, email != ""))
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		w.add("id NOT IN (?)", ids)
	}
	q, args, err := in(exe, "SELECT username, email FROM users"+w.String(), w.args...)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}

	var taken []struct {
		Username null.String `db:"username"`
		Email    null.String `db:"email"`
	}
	if err = exe.SelectContext(ctx, &taken, q, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, t := range taken {
		if username != "" && t.Username.String == username {
			return user.ErrUsernameExists
		}
	}
	if len(taken) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (r userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	q := "INSERT INTO users (" + userColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	args := append([]interface{}{usr.ID}, userArgs(usr)...)
	if _, err := execAffected(ctx, r.getExec(exec), q, args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return r.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
}

func (r userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	var w where

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + strings.ToLower(filter.Search) + "%"
			w.add("(LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?)", val, val, val)
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
		if filter.IsAdmin != nil {
			w.add("is_admin = ?", *filter.IsAdmin)
		}
		if !filter.CreatedFrom.IsZero() {
			w.add("created_at >= ?", utc(filter.CreatedFrom))
		}
		if !filter.CreatedTo.IsZero() {
			w.add("created_at <= ?", utc(filter.CreatedTo))
		}
	}

	q := "SELECT " + userColumns + " FROM users" + w.String() +
		" ORDER BY " + core.OrderBy(ordering, userOrderings, "created_at DESC")
	var rows []userRow
	if err := selectRows(ctx, r.getExec(exec), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users, nil
}

func (r userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var w where
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	case filter.Username != "":
		w.add("username = ?", filter.Username)
	case filter.Email != "":
		w.add("email = ?", filter.Email)
	case filter.UsernameOrEmail != "":
		w.add("(username = ? OR email = ?)", filter.UsernameOrEmail, filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := getRow(ctx, r.getExec(exec), &row, "SELECT "+userColumns+" FROM users"+w.String(), w.args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return row.user(), nil
}

func (r userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := `UPDATE users SET name = ?, username = ?, email = ?, password_hash = ?, is_active = ?, is_admin = ?,
		latitude = ?, longitude = ?, timezone = ?, method = ?, hijri_adjustment = ?,
		created_at = ?, updated_at = ?, last_login = ?
		WHERE id = ?`
	args := append(userArgs(usr), usr.ID)
	cnt, err := execAffected(ctx, r.getExec(exec), q, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return r.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
}

func (r userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	exe := r.getExec(exec)
	q, args, err := in(exe, "DELETE FROM users WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	res, err := exe.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}
