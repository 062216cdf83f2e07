package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/intention"
)

const intentionColumns = "id, user_id, client_id, text, date, fulfilled, created_at, updated_at"

type intentionRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	ClientID  null.String `db:"client_id"`
	Text      string      `db:"text"`
	Date      string      `db:"date"`
	Fulfilled bool        `db:"fulfilled"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (row intentionRow) intention() intention.Intention {
	return intention.Intention{
		ID:        row.ID,
		UserID:    row.UserID,
		ClientID:  row.ClientID.String,
		Text:      row.Text,
		Date:      row.Date,
		Fulfilled: row.Fulfilled,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type intentionRepository struct {
	repo
}

var _ intention.Repository = (*intentionRepository)(nil) // interface compliance check

func NewIntentionRepository(exec core.DBExecutor) *intentionRepository {
	return &intentionRepository{repo{exec: exec}}
}

// insert stores i, doing nothing when its client_id is already taken.
func (r intentionRepository) insert(ctx context.Context, exe core.DBExecutor, i *intention.Intention) (bool, error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	q := "INSERT INTO intentions (" + intentionColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)" +
		" ON CONFLICT (user_id, client_id) DO NOTHING"
	cnt, err := execAffected(ctx, exe, q,
		i.ID, i.UserID, null.NewString(i.ClientID, i.ClientID != ""), i.Text, i.Date, i.Fulfilled,
		utc(i.CreatedAt), utc(i.UpdatedAt))
	if err != nil {
		return false, errors.Wrap(err, "inserting intention")
	}
	return cnt > 0, nil
}

func (r intentionRepository) CreateIntention(ctx context.Context, i intention.Intention, exec ...core.DBExecutor) (intention.Intention, error) {
	exe := r.getExec(exec)
	inserted, err := r.insert(ctx, exe, &i)
	if err != nil {
		return intention.Intention{}, err
	}
	if !inserted {
		return intention.Intention{}, intention.ErrExists
	}
	return r.GetIntention(ctx, i.UserID, i.ID, exe)
}

func (r intentionRepository) InsertIntentionIfAbsent(ctx context.Context, i intention.Intention, exec ...core.DBExecutor) (bool, error) {
	return r.insert(ctx, r.getExec(exec), &i)
}

func (r intentionRepository) GetIntention(ctx context.Context, userID, id string, exec ...core.DBExecutor) (intention.Intention, error) {
	var row intentionRow
	q := "SELECT " + intentionColumns + " FROM intentions WHERE user_id = ? AND id = ?"
	if err := getRow(ctx, r.getExec(exec), &row, q, userID, id); err != nil {
		return intention.Intention{}, trapNoRowsErr(err, intention.ErrNotFound, "finding intention")
	}
	return row.intention(), nil
}

func (r intentionRepository) QueryIntentions(ctx context.Context, userID string, filter intention.QueryFilter, exec ...core.DBExecutor) ([]intention.Intention, error) {
	var w where
	w.add("user_id = ?", userID)
	if filter.Date != "" {
		w.add("date = ?", filter.Date)
	}
	if filter.From != "" {
		w.add("date >= ?", filter.From)
	}
	if filter.To != "" {
		w.add("date <= ?", filter.To)
	}

	var rows []intentionRow
	q := "SELECT " + intentionColumns + " FROM intentions" + w.String() + " ORDER BY date DESC, created_at DESC"
	if err := selectRows(ctx, r.getExec(exec), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying intentions")
	}

	intentions := make([]intention.Intention, 0, len(rows))
	for _, row := range rows {
		intentions = append(intentions, row.intention())
	}
	return intentions, nil
}

func (r intentionRepository) UpdateIntention(ctx context.Context, i intention.Intention, exec ...core.DBExecutor) (intention.Intention, error) {
	exe := r.getExec(exec)
	q := "UPDATE intentions SET text = ?, fulfilled = ?, updated_at = ? WHERE user_id = ? AND id = ?"
	cnt, err := execAffected(ctx, exe, q, i.Text, i.Fulfilled, utc(i.UpdatedAt), i.UserID, i.ID)
	if err != nil {
		return intention.Intention{}, errors.Wrap(err, "updating intention")
	}
	if cnt == 0 {
		return intention.Intention{}, intention.ErrNotFound
	}
	return r.GetIntention(ctx, i.UserID, i.ID, exe)
}

func (r intentionRepository) DeleteIntention(ctx context.Context, userID, id string, exec ...core.DBExecutor) (bool, error) {
	cnt, err := execAffected(ctx, r.getExec(exec), "DELETE FROM intentions WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return false, errors.Wrap(err, "deleting intention")
	}
	return cnt > 0, nil
}
