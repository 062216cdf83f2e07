// Package mission evaluates mission rules against the user's day and records completions.
package mission

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("mission not found")
	ErrLocked           = core.NewForbiddenError("mission is locked")
	ErrAlreadyCompleted = core.NewConflictError("mission already completed for this period")
	ErrNotCompleted     = core.NewNotFoundError("mission is not completed for this period")
)

type (
	Repository interface {
		// InsertCompletion stores c unless the user already completed c.MissionID in c.PeriodKey.
		// It reports whether a row was inserted.
		InsertCompletion(ctx context.Context, c Completion, exec ...core.DBExecutor) (bool, error)
		DeleteCompletion(ctx context.Context, userID, missionID, periodKey string, exec ...core.DBExecutor) (bool, error)
		// CompletionsInPeriods returns the user's completions whose period key is one of keys.
		CompletionsInPeriods(ctx context.Context, userID string, keys []string, exec ...core.DBExecutor) ([]Completion, error)
		QueryCompletions(ctx context.Context, filter CompletionFilter, exec ...core.DBExecutor) ([]Completion, error)
	}

	// DayMission is a catalog mission evaluated for a given day.
	DayMission struct {
		Mission
		Status     Status      `json:"status"`
		PeriodKey  string      `json:"period_key"`
		Completion *Completion `json:"completion,omitempty"`
	}

	Service struct {
		repo    Repository
		catalog *Catalog
	}
)

func NewService(repo Repository, catalog *Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

func (svc *Service) Catalog() *Catalog { return svc.catalog }

// ListForDay evaluates the catalog at dc. Completions are only looked up when userID is set.
func (svc *Service) ListForDay(ctx context.Context, userID string, dc DayContext, filter ListFilter) ([]DayMission, error) {
	missions := svc.catalog.Filter(filter)
	list := make([]DayMission, 0, len(missions))
	keySet := make(map[string]bool)
	for _, m := range missions {
		key := PeriodKey(m, dc.Now, dc.Hijri)
		keySet[key] = true
		list = append(list, DayMission{
			Mission:   m,
			Status:    Validate(m, dc),
			PeriodKey: key,
		})
	}
	if userID == "" || len(list) == 0 {
		return list, nil
	}

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	completions, err := svc.repo.CompletionsInPeriods(ctx, userID, keys)
	if err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	done := make(map[string]Completion, len(completions)) // {missionID/periodKey: completion}
	for _, c := range completions {
		done[c.MissionID+"/"+c.PeriodKey] = c
	}
	for i := range list {
		if c, ok := done[list[i].ID+"/"+list[i].PeriodKey]; ok {
			c := c
			list[i].Completion = &c
		}
	}
	return list, nil
}

// Complete records the completion of missionID at dc.
// Locked missions cannot be completed and a mission is completed at most once per period.
func (svc *Service) Complete(ctx context.Context, userID, missionID string, dc DayContext) (Completion, error) {
	m, ok := svc.catalog.Get(missionID)
	if !ok {
		return Completion{}, ErrNotFound
	}
	st := Validate(m, dc)
	xp, err := Award(m, st)
	if err != nil {
		return Completion{}, err
	}

	c := Completion{
		ID:          uuid.New().String(),
		UserID:      userID,
		MissionID:   m.ID,
		PeriodKey:   PeriodKey(m, dc.Now, dc.Hijri),
		LocalDate:   dc.Date(),
		XP:          xp,
		IsLate:      st.IsLate,
		Source:      SourceApp,
		CompletedAt: dc.Now.UTC(),
	}
	inserted, err := svc.repo.InsertCompletion(ctx, c)
	if err != nil {
		return Completion{}, errors.Wrap(err, "inserting completion")
	}
	if !inserted {
		return Completion{}, ErrAlreadyCompleted
	}
	return c, nil
}

// Uncomplete removes the completion of missionID in the period of dc.
func (svc *Service) Uncomplete(ctx context.Context, userID, missionID string, dc DayContext) error {
	m, ok := svc.catalog.Get(missionID)
	if !ok {
		return ErrNotFound
	}
	deleted, err := svc.repo.DeleteCompletion(ctx, userID, m.ID, PeriodKey(m, dc.Now, dc.Hijri))
	if err != nil {
		return errors.Wrap(err, "deleting completion")
	}
	if !deleted {
		return ErrNotCompleted
	}
	return nil
}

func (svc *Service) Completions(ctx context.Context, filter CompletionFilter) ([]Completion, error) {
	return svc.repo.QueryCompletions(ctx, filter)
}
