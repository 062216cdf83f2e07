package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/calendar"
	"github.com/trezcool/amal/core/prayer"
)

type prayerApi struct {
	*server
}

func registerPrayerAPI(g *echo.Group, optJWT echo.MiddlewareFunc, s *server) {
	api := prayerApi{server: s}

	g.GET("/prayer-times", api.times, optJWT)
	g.GET("/prayer-times/methods", api.methods)

	cg := g.Group("/calendar")
	cg.GET("/hijri", api.hijri, optJWT)
	cg.GET("/gregorian", api.gregorian, optJWT)
}

// Handlers

func (api *prayerApi) times(ctx echo.Context) error {
	p, err := api.resolvePlace(ctx)
	if err != nil {
		return err
	}
	date, err := dateParam(ctx, "date", p)
	if err != nil {
		return err
	}

	times, err := prayer.Calculate(date, p.Location, p.method)
	if err != nil {
		return errors.Wrap(err, "calculating prayer times")
	}
	res := PrayerTimesResponse{
		Place: p,
		Hijri: newHijriResponse(date, calendar.ToHijri(date, p.HijriAdjust)),
		Times: times,
	}
	if now := p.Now(); core.DateKey(now) == times.Date {
		res.Current = times.Current(now)
		if res.Current == "" {
			res.Next = prayer.Imsak
		} else if next, ok := times.Next(res.Current); ok {
			res.Next = next
		}
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *prayerApi) methods(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, prayer.Methods())
}

func (api *prayerApi) hijri(ctx echo.Context) error {
	p, err := api.resolvePlace(ctx)
	if err != nil {
		return err
	}
	date, err := dateParam(ctx, "date", p)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newHijriResponse(date, calendar.ToHijri(date, p.HijriAdjust)))
}

func (api *prayerApi) gregorian(ctx echo.Context) error {
	p, err := api.resolvePlace(ctx)
	if err != nil {
		return err
	}
	var h calendar.Hijri
	if h.Year, err = intQuery(ctx, "year", 0); err != nil {
		return err
	}
	if h.Month, err = intQuery(ctx, "month", 0); err != nil {
		return err
	}
	if h.Day, err = intQuery(ctx, "day", 0); err != nil {
		return err
	}
	if !h.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "day", Error: "this hijri date does not exist"})
	}
	date := calendar.FromHijri(h, p.HijriAdjust, p.tz)
	return ctx.JSON(http.StatusOK, newHijriResponse(date, h))
}

type (
	PrayerTimesResponse struct {
		Place   Place         `json:"place"`
		Hijri   HijriResponse `json:"hijri"`
		Times   prayer.Times  `json:"times"`
		Current prayer.Prayer `json:"current,omitempty"` // only for today
		Next    prayer.Prayer `json:"next,omitempty"`
	}

	HijriResponse struct {
		Date      string         `json:"date"` // gregorian, YYYY-MM-DD
		Hijri     calendar.Hijri `json:"hijri"`
		MonthName string         `json:"month_name"`
		Formatted string         `json:"formatted"`
		Season    string         `json:"season,omitempty"`
	}
)

func newHijriResponse(date time.Time, h calendar.Hijri) HijriResponse {
	return HijriResponse{
		Date:      core.DateKey(date),
		Hijri:     h,
		MonthName: h.MonthName(),
		Formatted: h.String(),
		Season:    h.Season(),
	}
}
