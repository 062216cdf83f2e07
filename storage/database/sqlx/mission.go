package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/mission"
	"github.com/trezcool/amal/core/progress"
)

const completionColumns = "id, user_id, mission_id, period_key, local_date, xp, is_late, source, completed_at"

type completionRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	MissionID   string    `db:"mission_id"`
	PeriodKey   string    `db:"period_key"`
	LocalDate   string    `db:"local_date"`
	XP          int       `db:"xp"`
	IsLate      bool      `db:"is_late"`
	Source      string    `db:"source"`
	CompletedAt time.Time `db:"completed_at"`
}

func (row completionRow) completion() mission.Completion {
	return mission.Completion{
		ID:          row.ID,
		UserID:      row.UserID,
		MissionID:   row.MissionID,
		PeriodKey:   row.PeriodKey,
		LocalDate:   row.LocalDate,
		XP:          row.XP,
		IsLate:      row.IsLate,
		Source:      row.Source,
		CompletedAt: row.CompletedAt.UTC(),
	}
}

func completions(rows []completionRow) []mission.Completion {
	cs := make([]mission.Completion, 0, len(rows))
	for _, row := range rows {
		cs = append(cs, row.completion())
	}
	return cs
}

// missionRepository stores mission completions and serves the progress aggregates computed from them.
type missionRepository struct {
	repo
}

var (
	// interface compliance checks
	_ mission.Repository  = (*missionRepository)(nil)
	_ progress.Repository = (*missionRepository)(nil)
)

func NewMissionRepository(exec core.DBExecutor) *missionRepository {
	return &missionRepository{repo{exec: exec}}
}

func (r missionRepository) InsertCompletion(ctx context.Context, c mission.Completion, exec ...core.DBExecutor) (bool, error) {
	q := "INSERT INTO mission_completions (" + completionColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)" +
		" ON CONFLICT (user_id, mission_id, period_key) DO NOTHING"
	cnt, err := execAffected(ctx, r.getExec(exec), q,
		c.ID, c.UserID, c.MissionID, c.PeriodKey, c.LocalDate, c.XP, c.IsLate, c.Source, utc(c.CompletedAt))
	if err != nil {
		return false, errors.Wrap(err, "inserting completion")
	}
	return cnt > 0, nil
}

func (r missionRepository) DeleteCompletion(ctx context.Context, userID, missionID, periodKey string, exec ...core.DBExecutor) (bool, error) {
	q := "DELETE FROM mission_completions WHERE user_id = ? AND mission_id = ? AND period_key = ?"
	cnt, err := execAffected(ctx, r.getExec(exec), q, userID, missionID, periodKey)
	if err != nil {
		return false, errors.Wrap(err, "deleting completion")
	}
	return cnt > 0, nil
}

func (r missionRepository) CompletionsInPeriods(ctx context.Context, userID string, keys []string, exec ...core.DBExecutor) ([]mission.Completion, error) {
	if len(keys) == 0 {
		return []mission.Completion{}, nil
	}
	exe := r.getExec(exec)
	q, args, err := in(exe, "SELECT "+completionColumns+" FROM mission_completions WHERE user_id = ? AND period_key IN (?)", userID, keys)
	if err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	var rows []completionRow
	if err = exe.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	return completions(rows), nil
}

func (r missionRepository) QueryCompletions(ctx context.Context, filter mission.CompletionFilter, exec ...core.DBExecutor) ([]mission.Completion, error) {
	var w where
	w.add("user_id = ?", filter.UserID)
	if filter.MissionID != "" {
		w.add("mission_id = ?", filter.MissionID)
	}
	if filter.From != "" {
		w.add("local_date >= ?", filter.From)
	}
	if filter.To != "" {
		w.add("local_date <= ?", filter.To)
	}

	var rows []completionRow
	q := "SELECT " + completionColumns + " FROM mission_completions" + w.String() + " ORDER BY local_date DESC, completed_at DESC"
	if err := selectRows(ctx, r.getExec(exec), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	return completions(rows), nil
}

func (r missionRepository) TotalXP(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error) {
	var xp int
	if err := getRow(ctx, r.getExec(exec), &xp, "SELECT COALESCE(SUM(xp), 0) FROM mission_completions WHERE user_id = ?", userID); err != nil {
		return 0, errors.Wrap(err, "summing xp")
	}
	return xp, nil
}

func (r missionRepository) CompletionDates(ctx context.Context, userID string, exec ...core.DBExecutor) ([]string, error) {
	dates := make([]string, 0)
	q := "SELECT DISTINCT local_date FROM mission_completions WHERE user_id = ? ORDER BY local_date"
	if err := selectRows(ctx, r.getExec(exec), &dates, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying completion dates")
	}
	return dates, nil
}

func (r missionRepository) DailyXP(ctx context.Context, userID, from, to string, exec ...core.DBExecutor) ([]progress.DayXP, error) {
	var rows []struct {
		Date  string `db:"local_date"`
		XP    int    `db:"xp"`
		Count int    `db:"cnt"`
	}
	q := `SELECT local_date, COALESCE(SUM(xp), 0) AS xp, COUNT(*) AS cnt FROM mission_completions
		WHERE user_id = ? AND local_date >= ? AND local_date <= ?
		GROUP BY local_date ORDER BY local_date`
	if err := selectRows(ctx, r.getExec(exec), &rows, q, userID, from, to); err != nil {
		return nil, errors.Wrap(err, "querying daily xp")
	}

	days := make([]progress.DayXP, 0, len(rows))
	for _, row := range rows {
		days = append(days, progress.DayXP{Date: row.Date, XP: row.XP, Count: row.Count})
	}
	return days, nil
}
