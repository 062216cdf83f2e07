package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/user"
	testutil "github.com/trezcool/amal/tests"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := NewUserRepository(db)

	jan := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	aisha := testutil.CreateUser(t, repo, "Aisha", "aisha", "aisha@example.com", "Passw0rd!", true, jan)
	umar := testutil.CreateUser(t, repo, "Umar", "umar", "umar@example.com", "", false, feb)
	noEmail := testutil.CreateUser(t, repo, "Bilal", "bilal", "", "", true, mar)

	t.Run("get", func(t *testing.T) {
		tests := []struct {
			name    string
			filter  user.GetFilter
			wantID  string
			wantErr error
		}{
			{name: "by id", filter: user.GetFilter{ID: aisha.ID}, wantID: aisha.ID},
			{name: "by malformed id", filter: user.GetFilter{ID: "42"}, wantErr: user.ErrNotFound},
			{name: "by username", filter: user.GetFilter{Username: "umar"}, wantID: umar.ID},
			{name: "by email", filter: user.GetFilter{Email: "aisha@example.com"}, wantID: aisha.ID},
			{name: "by username or email: username", filter: user.GetFilter{UsernameOrEmail: "bilal"}, wantID: noEmail.ID},
			{name: "by username or email: email", filter: user.GetFilter{UsernameOrEmail: "umar@example.com"}, wantID: umar.ID},
			{name: "unknown", filter: user.GetFilter{Username: "zaid"}, wantErr: user.ErrNotFound},
			{name: "empty filter", filter: user.GetFilter{}, wantErr: user.ErrNotFound},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				usr, err := repo.GetUser(ctx, tc.filter)
				if tc.wantErr != nil {
					assert.Equal(t, tc.wantErr, err)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tc.wantID, usr.ID)
			})
		}
	})

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.GetUser(ctx, user.GetFilter{ID: aisha.ID})
		require.NoError(t, err)
		if diff := cmp.Diff(aisha, got); diff != "" {
			t.Errorf("GetUser() mismatch (-want +got):\n%s", diff)
		}
		assert.NoError(t, got.CheckPassword("Passw0rd!"))
		assert.True(t, got.LastLogin.IsZero())
		assert.Empty(t, noEmail.Email)
	})

	t.Run("uniqueness", func(t *testing.T) {
		tests := []struct {
			name     string
			username string
			email    string
			excluded []user.User
			want     error
		}{
			{name: "free", username: "zaid", email: "zaid@example.com"},
			{name: "username taken", username: "aisha", email: "zaid@example.com", want: user.ErrUsernameExists},
			{name: "email taken", username: "zaid", email: "umar@example.com", want: user.ErrEmailExists},
			{name: "own values", username: "aisha", email: "aisha@example.com", excluded: []user.User{aisha}},
			{name: "empty email never clashes", username: "zaid", email: ""},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, tc.want, repo.CheckUsernameUniqueness(ctx, tc.username, tc.email, tc.excluded))
			})
		}
	})

	t.Run("query", func(t *testing.T) {
		active, inactive := true, false
		tests := []struct {
			name     string
			filter   *user.QueryFilter
			ordering []core.DBOrdering
			want     []string
		}{
			{name: "all, default ordering", want: []string{noEmail.ID, umar.ID, aisha.ID}},
			{name: "search is case insensitive", filter: &user.QueryFilter{Search: "AISH"}, want: []string{aisha.ID}},
			{name: "active", filter: &user.QueryFilter{IsActive: &active}, ordering: []core.DBOrdering{{Field: "name", Ascending: true}}, want: []string{aisha.ID, noEmail.ID}},
			{name: "inactive", filter: &user.QueryFilter{IsActive: &inactive}, want: []string{umar.ID}},
			{name: "created range", filter: &user.QueryFilter{CreatedTo: jan.Add(time.Hour)}, want: []string{aisha.ID}},
			{name: "unknown ordering ignored", ordering: []core.DBOrdering{{Field: "password_hash", Ascending: true}, {Field: "username", Ascending: true}}, want: []string{aisha.ID, noEmail.ID, umar.ID}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				users, err := repo.QueryUsers(ctx, tc.filter, tc.ordering)
				require.NoError(t, err)
				ids := make([]string, 0, len(users))
				for _, u := range users {
					ids = append(ids, u.ID)
				}
				assert.Equal(t, tc.want, ids)
			})
		}
	})

	t.Run("update", func(t *testing.T) {
		lat, lng := 21.4225, 39.8262
		usr := umar
		usr.Name = "Umar ibn Khattab"
		usr.IsActive = true
		usr.LastLogin = time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC)
		usr.Preferences = user.Preferences{Latitude: &lat, Longitude: &lng, Timezone: "Asia/Riyadh", Method: "makkah", HijriAdjustment: -1}

		got, err := repo.UpdateUser(ctx, usr)
		require.NoError(t, err)
		if diff := cmp.Diff(usr, got); diff != "" {
			t.Errorf("UpdateUser() mismatch (-want +got):\n%s", diff)
		}

		usr.ID = "b3b0f3f5-0000-4000-8000-000000000000"
		_, err = repo.UpdateUser(ctx, usr)
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("delete", func(t *testing.T) {
		cnt, err := repo.DeleteUsersByID(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, cnt)

		cnt, err = repo.DeleteUsersByID(ctx, []string{noEmail.ID, "b3b0f3f5-0000-4000-8000-000000000000"})
		require.NoError(t, err)
		assert.Equal(t, 1, cnt)

		_, err = repo.GetUser(ctx, user.GetFilter{ID: noEmail.ID})
		assert.Equal(t, user.ErrNotFound, err)
	})
}
