package mission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/prayer"
)

type memRepo struct {
	mu   sync.Mutex
	rows []Completion
}

var _ Repository = (*memRepo)(nil)

func (r *memRepo) InsertCompletion(_ context.Context, c Completion, _ ...core.DBExecutor) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == c.UserID && row.MissionID == c.MissionID && row.PeriodKey == c.PeriodKey {
			return false, nil
		}
	}
	r.rows = append(r.rows, c)
	return true, nil
}

func (r *memRepo) DeleteCompletion(_ context.Context, userID, missionID, periodKey string, _ ...core.DBExecutor) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.UserID == userID && row.MissionID == missionID && row.PeriodKey == periodKey {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) CompletionsInPeriods(_ context.Context, userID string, keys []string, _ ...core.DBExecutor) ([]Completion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Completion
	for _, row := range r.rows {
		for _, k := range keys {
			if row.UserID == userID && row.PeriodKey == k {
				out = append(out, row)
			}
		}
	}
	return out, nil
}

func (r *memRepo) QueryCompletions(_ context.Context, filter CompletionFilter, _ ...core.DBExecutor) ([]Completion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Completion
	for _, row := range r.rows {
		if row.UserID == filter.UserID {
			out = append(out, row)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) *Service {
	catalog, err := NewCatalog([]Mission{
		{ID: "subuh", Title: "Subuh", Category: CategoryPrayer, Period: Daily, Hukum: Wajib, XP: 20,
			Rule: Rule{Window: window(pr(prayer.Fajr), pr(prayer.Sunrise))}},
		{ID: "qabliyah", Title: "Qabliyah", Category: CategoryPrayer, Period: Daily, Hukum: Sunnah, XP: 10,
			Rule: Rule{Window: window(pr(prayer.Fajr), pr(prayer.Sunrise)), LockAfterEnd: true}},
		{ID: "kahf", Title: "Al-Kahf", Category: CategoryQuran, Period: Weekly, Hukum: Sunnah, XP: 30},
	})
	require.NoError(t, err)
	return NewService(&memRepo{}, catalog)
}

func TestService_Complete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	c, err := svc.Complete(ctx, "u1", "subuh", dayAt(at(5, 0)))
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 20, c.XP)
	assert.False(t, c.IsLate)
	assert.Equal(t, "2026-03-02", c.PeriodKey)
	assert.Equal(t, "2026-03-02", c.LocalDate)
	assert.Equal(t, SourceApp, c.Source)

	// once per period
	_, err = svc.Complete(ctx, "u1", "subuh", dayAt(at(5, 30)))
	assert.Equal(t, ErrAlreadyCompleted, err)
	assert.True(t, core.IsKind(err, core.KindConflict))

	// other users are independent
	late, err := svc.Complete(ctx, "u2", "subuh", dayAt(at(8, 0)))
	require.NoError(t, err)
	assert.Equal(t, 10, late.XP)
	assert.True(t, late.IsLate)

	// locked
	_, err = svc.Complete(ctx, "u1", "qabliyah", dayAt(at(8, 0)))
	assert.Equal(t, ErrLocked, err)
	_, err = svc.Complete(ctx, "u1", "subuh", dayAt(at(3, 0)).withDay(1))
	assert.Equal(t, ErrLocked, err)

	_, err = svc.Complete(ctx, "u1", "unknown", dayAt(at(5, 0)))
	assert.Equal(t, ErrNotFound, err)
}

func TestService_Uncomplete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Complete(ctx, "u1", "kahf", dayAt(at(9, 0)))
	require.NoError(t, err)

	// same ISO week, different day
	assert.NoError(t, svc.Uncomplete(ctx, "u1", "kahf", dayAt(at(9, 0)).withDay(3)))
	assert.Equal(t, ErrNotCompleted, svc.Uncomplete(ctx, "u1", "kahf", dayAt(at(9, 0))))
	assert.Equal(t, ErrNotFound, svc.Uncomplete(ctx, "u1", "nope", dayAt(at(9, 0))))

	_, err = svc.Complete(ctx, "u1", "kahf", dayAt(at(9, 0)))
	assert.NoError(t, err)
}

func TestService_ListForDay(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Complete(ctx, "u1", "subuh", dayAt(at(5, 0)))
	require.NoError(t, err)

	list, err := svc.ListForDay(ctx, "u1", dayAt(at(8, 0)), ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	byID := make(map[string]DayMission)
	for _, dm := range list {
		byID[dm.ID] = dm
	}
	require.NotNil(t, byID["subuh"].Completion)
	assert.Equal(t, 20, byID["subuh"].Completion.XP)
	assert.True(t, byID["subuh"].Status.IsLate)
	assert.Nil(t, byID["qabliyah"].Completion)
	assert.True(t, byID["qabliyah"].Status.Locked)
	assert.Equal(t, "2026-W10", byID["kahf"].PeriodKey)

	// yesterday's completions do not show up
	list, err = svc.ListForDay(ctx, "u1", dayAt(at(5, 0)).withDay(3), ListFilter{Category: CategoryPrayer})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, dm := range list {
		assert.Nil(t, dm.Completion)
	}

	// guests
	list, err = svc.ListForDay(ctx, "", dayAt(at(5, 0)), ListFilter{})
	require.NoError(t, err)
	for _, dm := range list {
		assert.Nil(t, dm.Completion)
	}
}

// withDay moves dc to another day of March 2026, keeping the clock time and prayer times.
func (dc DayContext) withDay(day int) DayContext {
	shift := func(t0 time.Time) time.Time { return t0.AddDate(0, 0, day-2) }
	dc.Now = shift(dc.Now)
	dc.Times.Imsak = shift(dc.Times.Imsak)
	dc.Times.Fajr = shift(dc.Times.Fajr)
	dc.Times.Sunrise = shift(dc.Times.Sunrise)
	dc.Times.Dhuhr = shift(dc.Times.Dhuhr)
	dc.Times.Asr = shift(dc.Times.Asr)
	dc.Times.Maghrib = shift(dc.Times.Maghrib)
	dc.Times.Isha = shift(dc.Times.Isha)
	dc.Hijri.Day += day - 2
	return dc
}
