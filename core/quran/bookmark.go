package quran

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
)

var (
	// errors
	ErrInvalidPosition  = errors.New("this ayah does not exist")
	ErrSurahNotFound    = core.NewNotFoundError("surah not found")
	ErrBookmarkNotFound = core.NewNotFoundError("bookmark not found")
	ErrBookmarkExists   = core.NewConflictError("this ayah is already bookmarked")
	ErrNoLastRead       = core.NewNotFoundError("no reading position saved yet")
)

type (
	Bookmark struct {
		ID        string    `json:"id"`
		UserID    string    `json:"-"`
		Surah     int       `json:"surah"`
		Ayah      int       `json:"ayah"`
		Note      string    `json:"note"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	NewBookmark struct {
		Surah int    `json:"surah" validate:"min=1,max=114"`
		Ayah  int    `json:"ayah" validate:"min=1,max=286"`
		Note  string `json:"note" validate:"max=500"`
	}

	UpdateBookmark struct {
		Note string `json:"note" validate:"max=500"`
	}

	BookmarkFilter struct {
		Surah int `query:"surah"`
	}

	LastRead struct {
		Surah     int       `json:"surah" validate:"min=1,max=114"`
		Ayah      int       `json:"ayah" validate:"min=1,max=286"`
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	Repository interface {
		// CreateBookmark inserts b, returning ErrBookmarkExists when the ayah is already bookmarked.
		CreateBookmark(ctx context.Context, b Bookmark, exec ...core.DBExecutor) (Bookmark, error)
		// UpsertBookmark inserts b or overwrites the existing bookmark of the same ayah when b is
		// newer. It reports whether a row was written.
		UpsertBookmark(ctx context.Context, b Bookmark, exec ...core.DBExecutor) (bool, error)
		GetBookmark(ctx context.Context, userID, id string, exec ...core.DBExecutor) (Bookmark, error)
		QueryBookmarks(ctx context.Context, userID string, filter BookmarkFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Bookmark, error)
		UpdateBookmark(ctx context.Context, b Bookmark, exec ...core.DBExecutor) (Bookmark, error)
		DeleteBookmarks(ctx context.Context, userID string, ids []string, exec ...core.DBExecutor) (int, error)
		GetLastRead(ctx context.Context, userID string, exec ...core.DBExecutor) (LastRead, error)
		// SaveLastRead stores lr unless the stored position is newer. It reports whether a row was written.
		SaveLastRead(ctx context.Context, userID string, lr LastRead, exec ...core.DBExecutor) (bool, error)
	}
)

func positionError() error {
	return core.NewValidationError(nil, core.FieldError{Field: "ayah", Error: ErrInvalidPosition.Error()})
}

func (nb *NewBookmark) Validate(validate *validator.Validate) error {
	nb.Note = core.CleanString(nb.Note)
	if err := validate.Struct(nb); err != nil {
		return err
	}
	if !(Position{Surah: nb.Surah, Ayah: nb.Ayah}).Valid() {
		return positionError()
	}
	return nil
}

func (ub *UpdateBookmark) Validate(validate *validator.Validate) error {
	ub.Note = core.CleanString(ub.Note)
	return validate.Struct(ub)
}

func (lr *LastRead) Validate(validate *validator.Validate) error {
	if err := validate.Struct(lr); err != nil {
		return err
	}
	if !(Position{Surah: lr.Surah, Ayah: lr.Ayah}).Valid() {
		return positionError()
	}
	return nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateBookmark(ctx context.Context, userID string, nb NewBookmark) (Bookmark, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateBookmark(ctx, Bookmark{
		UserID:    userID,
		Surah:     nb.Surah,
		Ayah:      nb.Ayah,
		Note:      nb.Note,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Bookmarks(ctx context.Context, userID string, filter BookmarkFilter, ordering []core.DBOrdering) ([]Bookmark, error) {
	return svc.repo.QueryBookmarks(ctx, userID, filter, ordering)
}

func (svc *Service) GetBookmark(ctx context.Context, userID, id string) (Bookmark, error) {
	return svc.repo.GetBookmark(ctx, userID, id)
}

func (svc *Service) UpdateBookmark(ctx context.Context, userID, id string, ub UpdateBookmark) (Bookmark, error) {
	b, err := svc.repo.GetBookmark(ctx, userID, id)
	if err != nil {
		return Bookmark{}, err
	}
	b.Note = ub.Note
	b.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateBookmark(ctx, b)
}

func (svc *Service) DeleteBookmark(ctx context.Context, userID, id string) error {
	cnt, err := svc.repo.DeleteBookmarks(ctx, userID, []string{id})
	if err != nil {
		return errors.Wrap(err, "deleting bookmark")
	}
	if cnt == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

func (svc *Service) LastRead(ctx context.Context, userID string) (LastRead, error) {
	return svc.repo.GetLastRead(ctx, userID)
}

func (svc *Service) SaveLastRead(ctx context.Context, userID string, lr LastRead) (LastRead, error) {
	lr.UpdatedAt = core.NowFunc().UTC()
	if _, err := svc.repo.SaveLastRead(ctx, userID, lr); err != nil {
		return LastRead{}, errors.Wrap(err, "saving last read")
	}
	return lr, nil
}
