package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/amal/apps/api/echo"
	"github.com/trezcool/amal/core/ramadan"
)

func Test_ramadanApi_schedule(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodGet, "/v1/ramadan/schedule", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res echoapi.ScheduleResponse
	unmarshal(t, rec, &res)
	assert.Equal(t, 1447, res.HijriYear)
	require.Len(t, res.Days, 30)
	assert.Equal(t, "2026-02-18", res.Days[0].Date)
	assert.Equal(t, "2026-03-19", res.Days[29].Date)
	for _, d := range res.Days {
		assert.True(t, d.Imsak.Before(d.Maghrib), "day %d", d.Day)
	}

	rec = f.do(http.MethodGet, "/v1/ramadan/schedule?year=1448", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &res)
	assert.Equal(t, 1448, res.HijriYear)

	runHTTPTests(t, f, []httpTest{
		{name: "bad year", path: "/v1/ramadan/schedule?year=next", wantCode: http.StatusBadRequest},
		{name: "invalid year", path: "/v1/ramadan/schedule?year=0", wantCode: http.StatusBadRequest},
	})
}

func Test_ramadanApi_taraweh(t *testing.T) {
	f := setup(t)
	aisha := f.createUser(t, "Aisha", "aisha", "aisha@example.com", "", true)
	token := f.token(t, aisha)

	for _, nr := range []ramadan.NewTarawehRecord{
		{Night: 1, Rakaat: 20, Place: "Mosque"},
		{Night: 2, Rakaat: 8, Place: "home"},
		{Night: 2, Rakaat: 11, Place: "mosque"}, // overwrites night 2
	} {
		rec := f.do(http.MethodPut, "/v1/ramadan/taraweh", token, nr)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := f.do(http.MethodGet, "/v1/ramadan/taraweh", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sum ramadan.TarawehSummary
	unmarshal(t, rec, &sum)
	assert.Equal(t, 1447, sum.HijriYear)
	assert.Equal(t, 2, sum.Nights)
	assert.Equal(t, 31, sum.TotalRakaat)
	assert.Equal(t, 2, sum.AtMosque)

	rec = f.do(http.MethodGet, "/v1/ramadan/taraweh?year=1446", token)
	unmarshal(t, rec, &sum)
	assert.Equal(t, 0, sum.Nights)
	assert.Empty(t, sum.Records)

	runHTTPTests(t, f, []httpTest{
		{name: "auth required", path: "/v1/ramadan/taraweh", wantCode: http.StatusUnauthorized},
		{
			name: "bad rakaat", method: http.MethodPut, path: "/v1/ramadan/taraweh", token: token,
			body: ramadan.NewTarawehRecord{Night: 3, Rakaat: 12, Place: "home"}, wantCode: http.StatusBadRequest,
		},
		{
			name: "bad place", method: http.MethodPut, path: "/v1/ramadan/taraweh", token: token,
			body: ramadan.NewTarawehRecord{Night: 3, Rakaat: 8, Place: "office"}, wantCode: http.StatusBadRequest,
		},
		{
			name: "bad night", method: http.MethodPut, path: "/v1/ramadan/taraweh", token: token,
			body: ramadan.NewTarawehRecord{Night: 31, Rakaat: 8, Place: "home"}, wantCode: http.StatusBadRequest,
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/ramadan/taraweh/1", token: token, wantCode: http.StatusNoContent},
		{name: "delete: unknown night", method: http.MethodDelete, path: "/v1/ramadan/taraweh/1", token: token, wantCode: http.StatusNotFound},
	})
}

func Test_ramadanApi_khataman(t *testing.T) {
	f := setup(t)
	aisha := f.createUser(t, "Aisha", "aisha", "aisha@example.com", "", true)
	token := f.token(t, aisha)

	var prog ramadan.KhatamanProgress
	for _, juz := range []string{"1", "2", "2"} {
		rec := f.do(http.MethodPut, "/v1/ramadan/khataman/"+juz, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshal(t, rec, &prog)
	}
	assert.Equal(t, 2, prog.Count)
	assert.Equal(t, 6.67, prog.Percent)
	assert.False(t, prog.Khatam)

	rec := f.do(http.MethodDelete, "/v1/ramadan/khataman/1", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &prog)
	assert.Equal(t, 1, prog.Count)
	assert.Equal(t, 2, prog.Completed[0].Juz)

	runHTTPTests(t, f, []httpTest{
		{name: "progress", path: "/v1/ramadan/khataman", token: token},
		{name: "juz out of range", method: http.MethodPut, path: "/v1/ramadan/khataman/31", token: token, wantCode: http.StatusBadRequest},
		{name: "unmark unread juz", method: http.MethodDelete, path: "/v1/ramadan/khataman/1", token: token, wantCode: http.StatusNotFound},
	})
}

func Test_ramadanApi_zakat(t *testing.T) {
	f := setup(t)

	runHTTPTests(t, f, []httpTest{
		{
			name: "fitrah: configured price",
			path: "/v1/zakat/fitrah?people=3",
			wantData: marchallObj(t, ramadan.FitrahResult{
				People: 3, KgPerPerson: 2.5, TotalKg: 7.5, PricePerKg: 15000, Total: 112500,
			}),
		},
		{
			name: "fitrah: defaults to one person",
			path: "/v1/zakat/fitrah?price_per_kg=12000",
			wantData: marchallObj(t, ramadan.FitrahResult{
				People: 1, KgPerPerson: 2.5, TotalKg: 2.5, PricePerKg: 12000, Total: 30000,
			}),
		},
		{name: "fitrah: no people", path: "/v1/zakat/fitrah?people=0", wantCode: http.StatusBadRequest},
		{
			name: "maal: due", method: http.MethodPost, path: "/v1/zakat/maal",
			body: ramadan.MaalInput{Cash: 50000000, Savings: 50000000, Debts: 10000000, HaulReached: true},
			wantData: marchallObj(t, ramadan.MaalResult{
				NetAssets: 90000000, Nisab: 85000000, AboveNisab: true, HaulReached: true, Due: true, Zakat: 2250000,
			}),
		},
		{
			name: "maal: haul not reached", method: http.MethodPost, path: "/v1/zakat/maal",
			body: ramadan.MaalInput{Cash: 100000000},
			wantData: marchallObj(t, ramadan.MaalResult{
				NetAssets: 100000000, Nisab: 85000000, AboveNisab: true,
			}),
		},
		{
			name: "maal: below nisab", method: http.MethodPost, path: "/v1/zakat/maal",
			body: ramadan.MaalInput{Cash: 1000, HaulReached: true, GoldPricePerGram: 100},
			wantData: marchallObj(t, ramadan.MaalResult{
				NetAssets: 1000, Nisab: 8500, HaulReached: true,
			}),
		},
		{
			name: "maal: negative amount", method: http.MethodPost, path: "/v1/zakat/maal",
			body: `{"cash": -1}`, wantCode: http.StatusBadRequest,
		},
	})
}
