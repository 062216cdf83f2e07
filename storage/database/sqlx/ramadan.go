package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/ramadan"
)

type tarawehRow struct {
	UserID    string    `db:"user_id"`
	HijriYear int       `db:"hijri_year"`
	Night     int       `db:"night"`
	Rakaat    int       `db:"rakaat"`
	Place     string    `db:"place"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ramadanRepository struct {
	repo
}

var _ ramadan.Repository = (*ramadanRepository)(nil) // interface compliance check

func NewRamadanRepository(exec core.DBExecutor) *ramadanRepository {
	return &ramadanRepository{repo{exec: exec}}
}

func (r ramadanRepository) UpsertTaraweh(ctx context.Context, rec ramadan.TarawehRecord, exec ...core.DBExecutor) error {
	q := `INSERT INTO taraweh_records (user_id, hijri_year, night, rakaat, place, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, hijri_year, night) DO UPDATE
		SET rakaat = excluded.rakaat, place = excluded.place, updated_at = excluded.updated_at`
	if _, err := execAffected(ctx, r.getExec(exec), q, rec.UserID, rec.HijriYear, rec.Night, rec.Rakaat, rec.Place, utc(rec.UpdatedAt)); err != nil {
		return errors.Wrap(err, "upserting taraweh")
	}
	return nil
}

func (r ramadanRepository) QueryTaraweh(ctx context.Context, userID string, year int, exec ...core.DBExecutor) ([]ramadan.TarawehRecord, error) {
	var rows []tarawehRow
	q := `SELECT user_id, hijri_year, night, rakaat, place, updated_at FROM taraweh_records
		WHERE user_id = ? AND hijri_year = ? ORDER BY night`
	if err := selectRows(ctx, r.getExec(exec), &rows, q, userID, year); err != nil {
		return nil, errors.Wrap(err, "querying taraweh")
	}

	records := make([]ramadan.TarawehRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ramadan.TarawehRecord{
			UserID:    row.UserID,
			HijriYear: row.HijriYear,
			Night:     row.Night,
			Rakaat:    row.Rakaat,
			Place:     row.Place,
			UpdatedAt: row.UpdatedAt.UTC(),
		})
	}
	return records, nil
}

func (r ramadanRepository) DeleteTaraweh(ctx context.Context, userID string, year, night int, exec ...core.DBExecutor) (bool, error) {
	q := "DELETE FROM taraweh_records WHERE user_id = ? AND hijri_year = ? AND night = ?"
	cnt, err := execAffected(ctx, r.getExec(exec), q, userID, year, night)
	if err != nil {
		return false, errors.Wrap(err, "deleting taraweh")
	}
	return cnt > 0, nil
}

func (r ramadanRepository) MarkJuz(ctx context.Context, userID string, year, juz int, at time.Time, exec ...core.DBExecutor) (bool, error) {
	q := `INSERT INTO khataman_juz (user_id, hijri_year, juz, completed_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, hijri_year, juz) DO NOTHING`
	cnt, err := execAffected(ctx, r.getExec(exec), q, userID, year, juz, utc(at))
	if err != nil {
		return false, errors.Wrap(err, "marking juz")
	}
	return cnt > 0, nil
}

func (r ramadanRepository) UnmarkJuz(ctx context.Context, userID string, year, juz int, exec ...core.DBExecutor) (bool, error) {
	q := "DELETE FROM khataman_juz WHERE user_id = ? AND hijri_year = ? AND juz = ?"
	cnt, err := execAffected(ctx, r.getExec(exec), q, userID, year, juz)
	if err != nil {
		return false, errors.Wrap(err, "unmarking juz")
	}
	return cnt > 0, nil
}

func (r ramadanRepository) QueryJuz(ctx context.Context, userID string, year int, exec ...core.DBExecutor) ([]ramadan.KhatamanJuz, error) {
	var rows []struct {
		Juz         int       `db:"juz"`
		CompletedAt time.Time `db:"completed_at"`
	}
	q := "SELECT juz, completed_at FROM khataman_juz WHERE user_id = ? AND hijri_year = ? ORDER BY juz"
	if err := selectRows(ctx, r.getExec(exec), &rows, q, userID, year); err != nil {
		return nil, errors.Wrap(err, "querying khataman")
	}

	done := make([]ramadan.KhatamanJuz, 0, len(rows))
	for _, row := range rows {
		done = append(done, ramadan.KhatamanJuz{Juz: row.Juz, CompletedAt: row.CompletedAt.UTC()})
	}
	return done, nil
}
