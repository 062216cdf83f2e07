package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/amal/apps/api/echo"
	"github.com/trezcool/amal/core/mission"
	"github.com/trezcool/amal/core/progress"
)

func Test_missionApi(t *testing.T) {
	f := setup(t)
	aisha := f.createUser(t, "Aisha", "aisha", "aisha@example.com", "", true)
	token := f.token(t, aisha)

	byID := func(list []mission.DayMission) map[string]mission.DayMission {
		m := make(map[string]mission.DayMission, len(list))
		for _, dm := range list {
			m[dm.ID] = dm
		}
		return m
	}

	t.Run("guest list", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/missions?category=prayer", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res echoapi.DayMissionsResponse
		unmarshal(t, rec, &res)
		assert.Equal(t, "2026-03-02", res.Date)
		missions := byID(res.Missions)
		require.Contains(t, missions, "subuh")
		require.Contains(t, missions, "dhuhr")
		assert.False(t, missions["subuh"].Status.Locked)
		assert.True(t, missions["dhuhr"].Status.Locked)
		assert.True(t, missions["dhuhr"].Status.IsEarly)
		for _, dm := range res.Missions {
			assert.Equal(t, mission.Category("prayer"), dm.Category)
			assert.Nil(t, dm.Completion)
		}
	})

	runHTTPTests(t, f, []httpTest{
		{name: "complete: auth required", method: http.MethodPost, path: "/v1/missions/subuh/complete", wantCode: http.StatusUnauthorized},
		{name: "complete: unknown mission", method: http.MethodPost, path: "/v1/missions/nope/complete", token: token, wantCode: http.StatusNotFound},
		{
			name: "complete: locked", method: http.MethodPost, path: "/v1/missions/dhuhr/complete", token: token,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "mission is locked"}),
		},
		{name: "retrieve: unknown", path: "/v1/missions/nope", wantCode: http.StatusNotFound},
		{name: "bad time zone", path: "/v1/missions?tz=Mars/Olympus", wantCode: http.StatusBadRequest},
	})

	t.Run("complete", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/missions/subuh/complete", token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var c mission.Completion
		unmarshal(t, rec, &c)
		assert.Equal(t, "subuh", c.MissionID)
		assert.Equal(t, "2026-03-02", c.LocalDate)
		assert.Equal(t, "2026-03-02", c.PeriodKey)
		assert.Equal(t, 20, c.XP)
		assert.False(t, c.IsLate)

		rec = f.do(http.MethodPost, "/v1/missions/subuh/complete", token)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("list shows completion", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/missions/subuh", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var dm mission.DayMission
		unmarshal(t, rec, &dm)
		require.NotNil(t, dm.Completion)
		assert.Equal(t, 20, dm.Completion.XP)
	})

	t.Run("completions", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/missions/completions?from=2026-03-01", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var list []mission.Completion
		unmarshal(t, rec, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "subuh", list[0].MissionID)

		rec = f.do(http.MethodGet, "/v1/missions/completions?from=yesterday", token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("dashboard", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/progress", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var d progress.Dashboard
		unmarshal(t, rec, &d)
		assert.Equal(t, 20, d.Level.XP)
		assert.Equal(t, 1, d.Level.Level)
		assert.Equal(t, 1, d.Streak.Current)
		assert.Equal(t, progress.DayXP{Date: "2026-03-02", XP: 20, Count: 1}, d.Today)
		assert.Len(t, d.History, 7)
	})

	t.Run("uncomplete", func(t *testing.T) {
		rec := f.do(http.MethodDelete, "/v1/missions/subuh/complete", token)
		assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = f.do(http.MethodDelete, "/v1/missions/subuh/complete", token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("titles", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/progress/titles", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var titles progress.Titles
		unmarshal(t, rec, &titles)
		assert.NotEmpty(t, titles)
	})
}
