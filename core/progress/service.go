// Package progress turns mission completions into XP levels, titles and streaks.
package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/amal/core"
)

const historyDays = 7

type (
	DayXP struct {
		Date  string `json:"date"`
		XP    int    `json:"xp"`
		Count int    `json:"count"`
	}

	Repository interface {
		TotalXP(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error)
		// CompletionDates returns the distinct local dates on which the user completed a mission.
		CompletionDates(ctx context.Context, userID string, exec ...core.DBExecutor) ([]string, error)
		// DailyXP returns the XP and completion count per local date in [from, to].
		DailyXP(ctx context.Context, userID, from, to string, exec ...core.DBExecutor) ([]DayXP, error)
	}

	Dashboard struct {
		Level   Level   `json:"level"`
		Streak  Streak  `json:"streak"`
		Today   DayXP   `json:"today"`
		History []DayXP `json:"history"` // the last 7 days, oldest first
	}

	Service struct {
		repo   Repository
		titles Titles
	}
)

func NewService(repo Repository, titles Titles) *Service {
	return &Service{repo: repo, titles: titles}
}

func (svc *Service) Titles() Titles { return svc.titles }

// Dashboard gathers the user's progress as of today (in the user's time zone).
func (svc *Service) Dashboard(ctx context.Context, userID string, today time.Time) (Dashboard, error) {
	var (
		xp    int
		dates []string
		daily []DayXP
	)
	todayKey := core.DateKey(today)
	fromKey := core.DateKey(today.AddDate(0, 0, -(historyDays - 1)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		xp, err = svc.repo.TotalXP(gctx, userID)
		return errors.Wrap(err, "querying total xp")
	})
	g.Go(func() (err error) {
		dates, err = svc.repo.CompletionDates(gctx, userID)
		return errors.Wrap(err, "querying completion dates")
	})
	g.Go(func() (err error) {
		daily, err = svc.repo.DailyXP(gctx, userID, fromKey, todayKey)
		return errors.Wrap(err, "querying daily xp")
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	byDate := make(map[string]DayXP, len(daily))
	for _, d := range daily {
		byDate[d.Date] = d
	}
	history := make([]DayXP, 0, historyDays)
	for i := historyDays - 1; i >= 0; i-- {
		key := core.DateKey(today.AddDate(0, 0, -i))
		d, ok := byDate[key]
		if !ok {
			d = DayXP{Date: key}
		}
		history = append(history, d)
	}

	return Dashboard{
		Level:   NewLevel(xp, svc.titles),
		Streak:  Streaks(dates, todayKey),
		Today:   history[len(history)-1],
		History: history,
	}, nil
}
