package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/quran"
)

const bookmarkColumns = "id, user_id, surah, ayah, note, created_at, updated_at"

var bookmarkOrderings = map[string]string{
	"surah":      "surah",
	"ayah":       "ayah",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type bookmarkRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Surah     int       `db:"surah"`
	Ayah      int       `db:"ayah"`
	Note      string    `db:"note"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row bookmarkRow) bookmark() quran.Bookmark {
	return quran.Bookmark{
		ID:        row.ID,
		UserID:    row.UserID,
		Surah:     row.Surah,
		Ayah:      row.Ayah,
		Note:      row.Note,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type quranRepository struct {
	repo
}

var _ quran.Repository = (*quranRepository)(nil) // interface compliance check

func NewQuranRepository(exec core.DBExecutor) *quranRepository {
	return &quranRepository{repo{exec: exec}}
}

func (r quranRepository) insertBookmark(ctx context.Context, exe core.DBExecutor, b quran.Bookmark, onConflict string) (int64, error) {
	q := "INSERT INTO quran_bookmarks (" + bookmarkColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?) " + onConflict
	return execAffected(ctx, exe, q, b.ID, b.UserID, b.Surah, b.Ayah, b.Note, utc(b.CreatedAt), utc(b.UpdatedAt))
}

func (r quranRepository) CreateBookmark(ctx context.Context, b quran.Bookmark, exec ...core.DBExecutor) (quran.Bookmark, error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	exe := r.getExec(exec)
	cnt, err := r.insertBookmark(ctx, exe, b, "ON CONFLICT (user_id, surah, ayah) DO NOTHING")
	if err != nil {
		return quran.Bookmark{}, errors.Wrap(err, "inserting bookmark")
	}
	if cnt == 0 {
		return quran.Bookmark{}, quran.ErrBookmarkExists
	}
	return r.GetBookmark(ctx, b.UserID, b.ID, exe)
}

func (r quranRepository) UpsertBookmark(ctx context.Context, b quran.Bookmark, exec ...core.DBExecutor) (bool, error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	cnt, err := r.insertBookmark(ctx, r.getExec(exec), b,
		`ON CONFLICT (user_id, surah, ayah) DO UPDATE SET note = excluded.note, updated_at = excluded.updated_at
		WHERE quran_bookmarks.updated_at < excluded.updated_at`)
	if err != nil {
		return false, errors.Wrap(err, "upserting bookmark")
	}
	return cnt > 0, nil
}

func (r quranRepository) GetBookmark(ctx context.Context, userID, id string, exec ...core.DBExecutor) (quran.Bookmark, error) {
	var row bookmarkRow
	q := "SELECT " + bookmarkColumns + " FROM quran_bookmarks WHERE user_id = ? AND id = ?"
	if err := getRow(ctx, r.getExec(exec), &row, q, userID, id); err != nil {
		return quran.Bookmark{}, trapNoRowsErr(err, quran.ErrBookmarkNotFound, "finding bookmark")
	}
	return row.bookmark(), nil
}

func (r quranRepository) QueryBookmarks(ctx context.Context, userID string, filter quran.BookmarkFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]quran.Bookmark, error) {
	var w where
	w.add("user_id = ?", userID)
	if filter.Surah > 0 {
		w.add("surah = ?", filter.Surah)
	}

	var rows []bookmarkRow
	q := "SELECT " + bookmarkColumns + " FROM quran_bookmarks" + w.String() +
		" ORDER BY " + core.OrderBy(ordering, bookmarkOrderings, "created_at DESC")
	if err := selectRows(ctx, r.getExec(exec), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying bookmarks")
	}

	bookmarks := make([]quran.Bookmark, 0, len(rows))
	for _, row := range rows {
		bookmarks = append(bookmarks, row.bookmark())
	}
	return bookmarks, nil
}

func (r quranRepository) UpdateBookmark(ctx context.Context, b quran.Bookmark, exec ...core.DBExecutor) (quran.Bookmark, error) {
	exe := r.getExec(exec)
	q := "UPDATE quran_bookmarks SET note = ?, updated_at = ? WHERE user_id = ? AND id = ?"
	cnt, err := execAffected(ctx, exe, q, b.Note, utc(b.UpdatedAt), b.UserID, b.ID)
	if err != nil {
		return quran.Bookmark{}, errors.Wrap(err, "updating bookmark")
	}
	if cnt == 0 {
		return quran.Bookmark{}, quran.ErrBookmarkNotFound
	}
	return r.GetBookmark(ctx, b.UserID, b.ID, exe)
}

func (r quranRepository) DeleteBookmarks(ctx context.Context, userID string, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	exe := r.getExec(exec)
	q, args, err := in(exe, "DELETE FROM quran_bookmarks WHERE user_id = ? AND id IN (?)", userID, ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting bookmarks")
	}
	res, err := exe.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting bookmarks")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting bookmarks")
	}
	return int(cnt), nil
}

func (r quranRepository) GetLastRead(ctx context.Context, userID string, exec ...core.DBExecutor) (quran.LastRead, error) {
	var row struct {
		Surah     int       `db:"surah"`
		Ayah      int       `db:"ayah"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	q := "SELECT surah, ayah, updated_at FROM quran_last_read WHERE user_id = ?"
	if err := getRow(ctx, r.getExec(exec), &row, q, userID); err != nil {
		return quran.LastRead{}, trapNoRowsErr(err, quran.ErrNoLastRead, "finding last read")
	}
	return quran.LastRead{Surah: row.Surah, Ayah: row.Ayah, UpdatedAt: row.UpdatedAt.UTC()}, nil
}

func (r quranRepository) SaveLastRead(ctx context.Context, userID string, lr quran.LastRead, exec ...core.DBExecutor) (bool, error) {
	q := `INSERT INTO quran_last_read (user_id, surah, ayah, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET surah = excluded.surah, ayah = excluded.ayah, updated_at = excluded.updated_at
		WHERE quran_last_read.updated_at < excluded.updated_at`
	cnt, err := execAffected(ctx, r.getExec(exec), q, userID, lr.Surah, lr.Ayah, utc(lr.UpdatedAt))
	if err != nil {
		return false, errors.Wrap(err, "saving last read")
	}
	return cnt > 0, nil
}
