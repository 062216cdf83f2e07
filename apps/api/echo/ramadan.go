package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core/ramadan"
)

type ramadanApi struct {
	*server
	svc *ramadan.Service
}

func registerRamadanAPI(g *echo.Group, jwt, optJWT echo.MiddlewareFunc, s *server) {
	api := ramadanApi{server: s, svc: s.deps.RamadanSvc}

	rg := g.Group("/ramadan")
	rg.GET("/schedule", api.schedule, optJWT)

	ag := rg.Group("", jwt, s.activeUserMiddleware)
	ag.GET("/taraweh", api.taraweh)
	ag.PUT("/taraweh", api.recordTaraweh)
	ag.DELETE("/taraweh/:night", api.deleteTaraweh)
	ag.GET("/khataman", api.khataman)
	ag.PUT("/khataman/:juz", api.markJuz)
	ag.DELETE("/khataman/:juz", api.unmarkJuz)

	zg := g.Group("/zakat")
	zg.GET("/fitrah", api.fitrah)
	zg.POST("/maal", api.maal)
}

// year returns the hijri year named by the "year" query param, defaulting to the current or
// next Ramadan.
func (api *ramadanApi) year(ctx echo.Context, p Place) (int, error) {
	return intQuery(ctx, "year", ramadan.UpcomingYear(p.Now(), p.HijriAdjust))
}

// tracker resolves the user and the hijri year of a tracker request.
func (api *ramadanApi) tracker(ctx echo.Context) (string, int, error) {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return "", 0, errors.Wrap(err, "getting context user")
	}
	p, err := api.resolvePlace(ctx)
	if err != nil {
		return "", 0, err
	}
	year, err := api.year(ctx, p)
	if err != nil {
		return "", 0, err
	}
	return usr.ID, year, nil
}

// Handlers

func (api *ramadanApi) schedule(ctx echo.Context) error {
	p, err := api.resolvePlace(ctx)
	if err != nil {
		return err
	}
	year, err := api.year(ctx, p)
	if err != nil {
		return err
	}

	days, err := ramadan.Schedule(year, p.Location, p.method, p.HijriAdjust)
	if err != nil {
		return errors.Wrap(err, "computing schedule")
	}
	return ctx.JSON(http.StatusOK, ScheduleResponse{HijriYear: year, Place: p, Days: days})
}

func (api *ramadanApi) taraweh(ctx echo.Context) error {
	userID, year, err := api.tracker(ctx)
	if err != nil {
		return err
	}
	sum, err := api.svc.Taraweh(ctx.Request().Context(), userID, year)
	if err != nil {
		return errors.Wrap(err, "getting taraweh")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *ramadanApi) recordTaraweh(ctx echo.Context) error {
	var data ramadan.NewTarawehRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTarawehRecord")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	userID, year, err := api.tracker(ctx)
	if err != nil {
		return err
	}

	r, err := api.svc.RecordTaraweh(ctx.Request().Context(), userID, year, data)
	if err != nil {
		return errors.Wrap(err, "recording taraweh")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *ramadanApi) deleteTaraweh(ctx echo.Context) error {
	night, err := intParam(ctx, "night")
	if err != nil {
		return err
	}
	userID, year, err := api.tracker(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTaraweh(ctx.Request().Context(), userID, year, night); err != nil {
		return errors.Wrap(err, "deleting taraweh")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *ramadanApi) khataman(ctx echo.Context) error {
	userID, year, err := api.tracker(ctx)
	if err != nil {
		return err
	}
	prog, err := api.svc.Khataman(ctx.Request().Context(), userID, year)
	if err != nil {
		return errors.Wrap(err, "getting khataman")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *ramadanApi) markJuz(ctx echo.Context) error {
	juz, err := intParam(ctx, "juz")
	if err != nil {
		return err
	}
	userID, year, err := api.tracker(ctx)
	if err != nil {
		return err
	}
	prog, err := api.svc.MarkJuz(ctx.Request().Context(), userID, year, juz)
	if err != nil {
		return errors.Wrap(err, "marking juz")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *ramadanApi) unmarkJuz(ctx echo.Context) error {
	juz, err := intParam(ctx, "juz")
	if err != nil {
		return err
	}
	userID, year, err := api.tracker(ctx)
	if err != nil {
		return err
	}
	prog, err := api.svc.UnmarkJuz(ctx.Request().Context(), userID, year, juz)
	if err != nil {
		return errors.Wrap(err, "unmarking juz")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *ramadanApi) fitrah(ctx echo.Context) error {
	in := ramadan.FitrahInput{People: 1}
	if err := ctx.Bind(&in); err != nil {
		return errors.Wrap(err, "binding to FitrahInput")
	}
	if err := api.deps.Validate.Struct(in); err != nil {
		return err
	}
	if in.PricePerKg == 0 {
		in.PricePerKg = api.deps.Conf.Zakat.StaplePricePerKg
	}
	return ctx.JSON(http.StatusOK, ramadan.Fitrah(in))
}

func (api *ramadanApi) maal(ctx echo.Context) error {
	var in ramadan.MaalInput
	if err := ctx.Bind(&in); err != nil {
		return errors.Wrap(err, "binding to MaalInput")
	}
	if err := api.deps.Validate.Struct(in); err != nil {
		return err
	}
	if in.GoldPricePerGram == 0 {
		in.GoldPricePerGram = api.deps.Conf.Zakat.GoldPricePerGram
	}
	return ctx.JSON(http.StatusOK, ramadan.Maal(in))
}

type ScheduleResponse struct {
	HijriYear int                  `json:"hijri_year"`
	Place     Place                `json:"place"`
	Days      []ramadan.FastingDay `json:"days"`
}
