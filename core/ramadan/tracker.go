package ramadan

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/quran"
)

const (
	PlaceMosque = "mosque"
	PlaceHome   = "home"
)

var (
	// errors
	ErrTarawehNotFound = core.NewNotFoundError("no taraweh recorded for this night")
	ErrJuzNotFound     = core.NewNotFoundError("juz is not marked as read")
)

type (
	TarawehRecord struct {
		UserID    string    `json:"-"`
		HijriYear int       `json:"hijri_year"`
		Night     int       `json:"night"`
		Rakaat    int       `json:"rakaat"`
		Place     string    `json:"place"`
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	NewTarawehRecord struct {
		Night  int    `json:"night" validate:"min=1,max=30"`
		Rakaat int    `json:"rakaat" validate:"oneof=8 11 20 23"`
		Place  string `json:"place" validate:"oneof=mosque home"`
	}

	TarawehSummary struct {
		HijriYear   int             `json:"hijri_year"`
		Nights      int             `json:"nights"`
		TotalRakaat int             `json:"total_rakaat"`
		AtMosque    int             `json:"at_mosque"`
		Records     []TarawehRecord `json:"records"`
	}

	KhatamanJuz struct {
		Juz         int       `json:"juz"`
		CompletedAt time.Time `json:"completed_at"` // UTC
	}

	KhatamanProgress struct {
		HijriYear int           `json:"hijri_year"`
		Completed []KhatamanJuz `json:"completed"`
		Count     int           `json:"count"`
		Percent   float64       `json:"percent"`
		Khatam    bool          `json:"khatam"`
	}

	Repository interface {
		UpsertTaraweh(ctx context.Context, r TarawehRecord, exec ...core.DBExecutor) error
		QueryTaraweh(ctx context.Context, userID string, year int, exec ...core.DBExecutor) ([]TarawehRecord, error)
		DeleteTaraweh(ctx context.Context, userID string, year, night int, exec ...core.DBExecutor) (bool, error)
		// MarkJuz records juz as read, keeping the first completion time. It reports whether a row was inserted.
		MarkJuz(ctx context.Context, userID string, year, juz int, at time.Time, exec ...core.DBExecutor) (bool, error)
		UnmarkJuz(ctx context.Context, userID string, year, juz int, exec ...core.DBExecutor) (bool, error)
		QueryJuz(ctx context.Context, userID string, year int, exec ...core.DBExecutor) ([]KhatamanJuz, error)
	}

	Service struct {
		repo Repository
	}
)

func (nr *NewTarawehRecord) Validate(validate *validator.Validate) error {
	nr.Place = core.CleanString(nr.Place, true /* lower */)
	return validate.Struct(nr)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) RecordTaraweh(ctx context.Context, userID string, year int, nr NewTarawehRecord) (TarawehRecord, error) {
	r := TarawehRecord{
		UserID:    userID,
		HijriYear: year,
		Night:     nr.Night,
		Rakaat:    nr.Rakaat,
		Place:     nr.Place,
		UpdatedAt: core.NowFunc().UTC(),
	}
	if err := svc.repo.UpsertTaraweh(ctx, r); err != nil {
		return TarawehRecord{}, errors.Wrap(err, "saving taraweh")
	}
	return r, nil
}

func (svc *Service) Taraweh(ctx context.Context, userID string, year int) (TarawehSummary, error) {
	records, err := svc.repo.QueryTaraweh(ctx, userID, year)
	if err != nil {
		return TarawehSummary{}, errors.Wrap(err, "querying taraweh")
	}
	sum := TarawehSummary{HijriYear: year, Nights: len(records), Records: records}
	if sum.Records == nil {
		sum.Records = []TarawehRecord{}
	}
	for _, r := range records {
		sum.TotalRakaat += r.Rakaat
		if r.Place == PlaceMosque {
			sum.AtMosque++
		}
	}
	return sum, nil
}

func (svc *Service) DeleteTaraweh(ctx context.Context, userID string, year, night int) error {
	deleted, err := svc.repo.DeleteTaraweh(ctx, userID, year, night)
	if err != nil {
		return errors.Wrap(err, "deleting taraweh")
	}
	if !deleted {
		return ErrTarawehNotFound
	}
	return nil
}

func validJuz(juz int) error {
	if juz < 1 || juz > quran.JuzCount {
		return core.NewValidationError(nil, core.FieldError{Field: "juz", Error: "juz must be between 1 and 30"})
	}
	return nil
}

// MarkJuz marks juz as read. Marking an already read juz is a no-op.
func (svc *Service) MarkJuz(ctx context.Context, userID string, year, juz int) (KhatamanProgress, error) {
	if err := validJuz(juz); err != nil {
		return KhatamanProgress{}, err
	}
	if _, err := svc.repo.MarkJuz(ctx, userID, year, juz, core.NowFunc().UTC()); err != nil {
		return KhatamanProgress{}, errors.Wrap(err, "marking juz")
	}
	return svc.Khataman(ctx, userID, year)
}

func (svc *Service) UnmarkJuz(ctx context.Context, userID string, year, juz int) (KhatamanProgress, error) {
	if err := validJuz(juz); err != nil {
		return KhatamanProgress{}, err
	}
	deleted, err := svc.repo.UnmarkJuz(ctx, userID, year, juz)
	if err != nil {
		return KhatamanProgress{}, errors.Wrap(err, "unmarking juz")
	}
	if !deleted {
		return KhatamanProgress{}, ErrJuzNotFound
	}
	return svc.Khataman(ctx, userID, year)
}

func (svc *Service) Khataman(ctx context.Context, userID string, year int) (KhatamanProgress, error) {
	done, err := svc.repo.QueryJuz(ctx, userID, year)
	if err != nil {
		return KhatamanProgress{}, errors.Wrap(err, "querying khataman")
	}
	if done == nil {
		done = []KhatamanJuz{}
	}
	return KhatamanProgress{
		HijriYear: year,
		Completed: done,
		Count:     len(done),
		Percent:   round2(float64(len(done)) * 100 / quran.JuzCount),
		Khatam:    len(done) == quran.JuzCount,
	}, nil
}
