// Package guestsync merges the data a guest accumulated on their device into their account.
package guestsync

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/calendar"
	"github.com/trezcool/amal/core/intention"
	"github.com/trezcool/amal/core/mission"
	"github.com/trezcool/amal/core/quran"
)

// Payload limits
const (
	MaxBookmarks         = 1000
	MaxCompletedMissions = 1000
	MaxIntentions        = 100
)

type (
	Bookmark struct {
		Surah     int       `json:"surah" validate:"min=1,max=114"`
		Ayah      int       `json:"ayah" validate:"min=1,max=286"`
		Note      string    `json:"note" validate:"max=500"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	CompletedMission struct {
		MissionID   string    `json:"mission_id" validate:"required,max=64"`
		Date        string    `json:"date" validate:"required,datetime=2006-01-02"` // local date
		IsLate      bool      `json:"is_late"`
		CompletedAt time.Time `json:"completed_at"`
	}

	Intention struct {
		ClientID  string    `json:"client_id" validate:"required,max=64"`
		Text      string    `json:"text" validate:"required,notblank,max=500"`
		Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
		Fulfilled bool      `json:"fulfilled"`
		CreatedAt time.Time `json:"created_at"`
	}

	LastRead struct {
		Surah     int       `json:"surah" validate:"min=1,max=114"`
		Ayah      int       `json:"ayah" validate:"min=1,max=286"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Payload struct {
		Bookmarks         []Bookmark         `json:"bookmarks" validate:"dive"`
		CompletedMissions []CompletedMission `json:"completed_missions" validate:"dive"`
		Intentions        []Intention        `json:"intentions" validate:"dive"`
		LastRead          *LastRead          `json:"last_read"`
	}

	Counts struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}

	Result struct {
		Bookmarks         Counts `json:"bookmarks"`
		CompletedMissions Counts `json:"completed_missions"`
		Intentions        Counts `json:"intentions"`
		LastRead          bool   `json:"last_read"`
	}

	Service struct {
		db         core.DB
		catalog    *mission.Catalog
		missions   mission.Repository
		quran      quran.Repository
		intentions intention.Repository
	}
)

// Validate rejects the whole payload when a limit is exceeded or an item is malformed.
func (p *Payload) Validate(validate *validator.Validate) error {
	var fldErrs []core.FieldError
	for _, l := range []struct {
		field    string
		n, limit int
	}{
		{"bookmarks", len(p.Bookmarks), MaxBookmarks},
		{"completed_missions", len(p.CompletedMissions), MaxCompletedMissions},
		{"intentions", len(p.Intentions), MaxIntentions},
	} {
		if l.n > l.limit {
			fldErrs = append(fldErrs, core.FieldError{
				Field: l.field,
				Error: fmt.Sprintf("%s must contain at most %d items", l.field, l.limit),
			})
		}
	}
	if fldErrs != nil {
		return core.NewValidationError(nil, fldErrs...)
	}

	for i := range p.Bookmarks {
		p.Bookmarks[i].Note = core.CleanString(p.Bookmarks[i].Note)
	}
	for i := range p.Intentions {
		p.Intentions[i].Text = core.CleanString(p.Intentions[i].Text)
		p.Intentions[i].ClientID = core.CleanString(p.Intentions[i].ClientID)
	}
	return validate.Struct(p)
}

func NewService(
	db core.DB,
	catalog *mission.Catalog,
	missions mission.Repository,
	quranRepo quran.Repository,
	intentions intention.Repository,
) *Service {
	return &Service{
		db:         db,
		catalog:    catalog,
		missions:   missions,
		quran:      quranRepo,
		intentions: intentions,
	}
}

// Sync imports p into the account of userID in a single transaction: either everything is
// written or nothing is.
//
//   - bookmarks are upserted per ayah, the most recently updated note wins;
//   - completed missions are inserted unless already completed in the same period, with the XP
//     recomputed from the catalog; unknown missions, future dates and days the mission's
//     calendar rule locks are skipped;
//   - intentions are inserted unless their client_id was already synced;
//   - the last read position replaces the stored one when it is newer.
//
// Items pointing at a non-existent ayah are skipped.
func (svc *Service) Sync(ctx context.Context, userID string, p Payload, hijriAdjust int) (Result, error) {
	var res Result
	now := core.NowFunc().UTC()

	err := core.InTx(ctx, svc.db, func(tx core.DBExecutor) error {
		for _, item := range p.Bookmarks {
			ok, err := svc.importBookmark(ctx, tx, userID, item, now)
			if err != nil {
				return errors.Wrap(err, "importing bookmark")
			}
			res.Bookmarks.count(ok)
		}
		for _, item := range p.CompletedMissions {
			ok, err := svc.importCompletion(ctx, tx, userID, item, hijriAdjust, now)
			if err != nil {
				return errors.Wrap(err, "importing completed mission")
			}
			res.CompletedMissions.count(ok)
		}
		for _, item := range p.Intentions {
			ok, err := svc.importIntention(ctx, tx, userID, item, now)
			if err != nil {
				return errors.Wrap(err, "importing intention")
			}
			res.Intentions.count(ok)
		}
		if p.LastRead != nil {
			ok, err := svc.importLastRead(ctx, tx, userID, *p.LastRead, now)
			if err != nil {
				return errors.Wrap(err, "importing last read")
			}
			res.LastRead = ok
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (c *Counts) count(imported bool) {
	if imported {
		c.Imported++
	} else {
		c.Skipped++
	}
}

// clamp replaces zero and future client timestamps with now.
func clamp(t, now time.Time) time.Time {
	if t.IsZero() || t.After(now) {
		return now
	}
	return t.UTC()
}

func (svc *Service) importBookmark(ctx context.Context, tx core.DBExecutor, userID string, item Bookmark, now time.Time) (bool, error) {
	if !(quran.Position{Surah: item.Surah, Ayah: item.Ayah}).Valid() {
		return false, nil
	}
	updated := clamp(item.UpdatedAt, now)
	created := clamp(item.CreatedAt, updated)
	return svc.quran.UpsertBookmark(ctx, quran.Bookmark{
		UserID:    userID,
		Surah:     item.Surah,
		Ayah:      item.Ayah,
		Note:      item.Note,
		CreatedAt: created,
		UpdatedAt: updated,
	}, tx)
}

func (svc *Service) importCompletion(ctx context.Context, tx core.DBExecutor, userID string, item CompletedMission, hijriAdjust int, now time.Time) (bool, error) {
	m, ok := svc.catalog.Get(item.MissionID)
	if !ok {
		return false, nil
	}
	day, err := time.Parse("2006-01-02", item.Date)
	if err != nil || day.After(now.AddDate(0, 0, 1)) { // local dates run up to 14h ahead of UTC
		return false, nil
	}
	h := calendar.ToHijri(day, hijriAdjust)
	st := mission.CalendarStatus(m, day.Weekday(), h)
	if st.Locked {
		return false, nil
	}
	st.IsLate = item.IsLate
	xp, err := mission.Award(m, st)
	if err != nil {
		return false, err
	}

	completedAt := item.CompletedAt
	if completedAt.IsZero() || completedAt.After(now) {
		completedAt = day
	}
	return svc.missions.InsertCompletion(ctx, mission.Completion{
		ID:          uuid.New().String(),
		UserID:      userID,
		MissionID:   m.ID,
		PeriodKey:   mission.PeriodKey(m, day, h),
		LocalDate:   item.Date,
		XP:          xp,
		IsLate:      item.IsLate,
		Source:      mission.SourceSync,
		CompletedAt: completedAt.UTC(),
	}, tx)
}

func (svc *Service) importIntention(ctx context.Context, tx core.DBExecutor, userID string, item Intention, now time.Time) (bool, error) {
	created := clamp(item.CreatedAt, now)
	return svc.intentions.InsertIntentionIfAbsent(ctx, intention.Intention{
		UserID:    userID,
		ClientID:  item.ClientID,
		Text:      item.Text,
		Date:      item.Date,
		Fulfilled: item.Fulfilled,
		CreatedAt: created,
		UpdatedAt: created,
	}, tx)
}

func (svc *Service) importLastRead(ctx context.Context, tx core.DBExecutor, userID string, item LastRead, now time.Time) (bool, error) {
	if !(quran.Position{Surah: item.Surah, Ayah: item.Ayah}).Valid() {
		return false, nil
	}
	return svc.quran.SaveLastRead(ctx, userID, quran.LastRead{
		Surah:     item.Surah,
		Ayah:      item.Ayah,
		UpdatedAt: clamp(item.UpdatedAt, now),
	}, tx)
}
