// Package intention manages the user's daily intentions (niat).
package intention

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
)

const MaxTextLen = 500

var (
	// errors
	ErrNotFound = core.NewNotFoundError("intention not found")
	ErrExists   = core.NewConflictError("an intention with this client_id already exists")
)

type (
	Intention struct {
		ID        string    `json:"id"`
		UserID    string    `json:"-"`
		ClientID  string    `json:"client_id,omitempty"` // set by offline clients, unique per user
		Text      string    `json:"text"`
		Date      string    `json:"date"` // YYYY-MM-DD
		Fulfilled bool      `json:"fulfilled"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	NewIntention struct {
		ClientID string `json:"client_id" validate:"omitempty,max=64"`
		Text     string `json:"text" validate:"required,notblank,max=500"`
		Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	}

	UpdateIntention struct {
		Text      string `json:"text" validate:"omitempty,max=500"`
		Fulfilled *bool  `json:"fulfilled"`
	}

	QueryFilter struct {
		Date string `query:"date" validate:"omitempty,datetime=2006-01-02"`
		From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
		To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	}

	Repository interface {
		// CreateIntention returns ErrExists when i.ClientID is already used by the user.
		CreateIntention(ctx context.Context, i Intention, exec ...core.DBExecutor) (Intention, error)
		// InsertIntentionIfAbsent inserts i unless the user already has an intention with i.ClientID.
		// It reports whether a row was inserted.
		InsertIntentionIfAbsent(ctx context.Context, i Intention, exec ...core.DBExecutor) (bool, error)
		GetIntention(ctx context.Context, userID, id string, exec ...core.DBExecutor) (Intention, error)
		QueryIntentions(ctx context.Context, userID string, filter QueryFilter, exec ...core.DBExecutor) ([]Intention, error)
		UpdateIntention(ctx context.Context, i Intention, exec ...core.DBExecutor) (Intention, error)
		DeleteIntention(ctx context.Context, userID, id string, exec ...core.DBExecutor) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func (ni *NewIntention) Validate(validate *validator.Validate) error {
	ni.Text = core.CleanString(ni.Text)
	ni.ClientID = core.CleanString(ni.ClientID)
	return validate.Struct(ni)
}

func (ui *UpdateIntention) Validate(validate *validator.Validate) error {
	ui.Text = core.CleanString(ui.Text)
	return validate.Struct(ui)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new intention. The date defaults to today in the user's time zone.
func (svc *Service) Create(ctx context.Context, userID string, ni NewIntention, today time.Time) (Intention, error) {
	now := core.NowFunc().UTC()
	i := Intention{
		UserID:    userID,
		ClientID:  ni.ClientID,
		Text:      ni.Text,
		Date:      ni.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if i.Date == "" {
		i.Date = core.DateKey(today)
	}
	return svc.repo.CreateIntention(ctx, i)
}

func (svc *Service) Query(ctx context.Context, userID string, filter QueryFilter) ([]Intention, error) {
	return svc.repo.QueryIntentions(ctx, userID, filter)
}

func (svc *Service) Get(ctx context.Context, userID, id string) (Intention, error) {
	return svc.repo.GetIntention(ctx, userID, id)
}

func (svc *Service) Update(ctx context.Context, userID, id string, ui UpdateIntention) (Intention, error) {
	i, err := svc.repo.GetIntention(ctx, userID, id)
	if err != nil {
		return Intention{}, err
	}
	if ui.Text != "" {
		i.Text = ui.Text
	}
	if ui.Fulfilled != nil {
		i.Fulfilled = *ui.Fulfilled
	}
	i.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateIntention(ctx, i)
}

func (svc *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := svc.repo.DeleteIntention(ctx, userID, id)
	if err != nil {
		return errors.Wrap(err, "deleting intention")
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
