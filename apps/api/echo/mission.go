package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core/mission"
	"github.com/trezcool/amal/core/progress"
)

type missionApi struct {
	*server
	svc      *mission.Service
	progress *progress.Service
}

func registerMissionAPI(g *echo.Group, jwt, optJWT echo.MiddlewareFunc, s *server) {
	api := missionApi{server: s, svc: s.deps.MissionSvc, progress: s.deps.ProgressSvc}

	mg := g.Group("/missions")
	mg.GET("", api.list, optJWT)
	mg.GET("/completions", api.completions, jwt, s.activeUserMiddleware)
	mg.GET("/:id", api.retrieve, optJWT)
	mg.POST("/:id/complete", api.complete, jwt, s.activeUserMiddleware)
	mg.DELETE("/:id/complete", api.uncomplete, jwt, s.activeUserMiddleware)

	pg := g.Group("/progress")
	pg.GET("", api.dashboard, jwt, s.activeUserMiddleware)
	pg.GET("/titles", api.titles)
}

// day resolves the place of the request and evaluates the current day there.
func (api *missionApi) day(ctx echo.Context) (mission.DayContext, string, error) {
	p, err := api.resolvePlace(ctx)
	if err != nil {
		return mission.DayContext{}, "", err
	}
	dc, err := p.dayContext(p.Now())
	if err != nil {
		return mission.DayContext{}, "", err
	}

	var userID string
	if usr, err := api.auth.optionalUser(ctx); err != nil {
		return mission.DayContext{}, "", err
	} else if usr != nil {
		userID = usr.ID
	}
	return dc, userID, nil
}

// Handlers

func (api *missionApi) list(ctx echo.Context) error {
	var filter mission.ListFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ListFilter")
	}
	dc, userID, err := api.day(ctx)
	if err != nil {
		return err
	}

	missions, err := api.svc.ListForDay(ctx.Request().Context(), userID, dc, filter)
	if err != nil {
		return errors.Wrap(err, "listing missions")
	}
	return ctx.JSON(http.StatusOK, DayMissionsResponse{
		Date:     dc.Date(),
		Hijri:    dc.Hijri.String(),
		Missions: missions,
	})
}

func (api *missionApi) retrieve(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, ok := api.svc.Catalog().Get(id); !ok {
		return mission.ErrNotFound
	}
	dc, userID, err := api.day(ctx)
	if err != nil {
		return err
	}

	missions, err := api.svc.ListForDay(ctx.Request().Context(), userID, dc, mission.ListFilter{})
	if err != nil {
		return errors.Wrap(err, "listing missions")
	}
	for _, m := range missions {
		if m.ID == id {
			return ctx.JSON(http.StatusOK, m)
		}
	}
	return mission.ErrNotFound
}

func (api *missionApi) complete(ctx echo.Context) error {
	dc, userID, err := api.day(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Complete(ctx.Request().Context(), userID, ctx.Param("id"), dc)
	if err != nil {
		return errors.Wrap(err, "completing mission")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *missionApi) uncomplete(ctx echo.Context) error {
	dc, userID, err := api.day(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Uncomplete(ctx.Request().Context(), userID, ctx.Param("id"), dc); err != nil {
		return errors.Wrap(err, "uncompleting mission")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *missionApi) completions(ctx echo.Context) error {
	var filter mission.CompletionFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to CompletionFilter")
	}
	if err := api.deps.Validate.Struct(filter); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	filter.UserID = usr.ID

	list, err := api.svc.Completions(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying completions")
	}
	if list == nil {
		list = []mission.Completion{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *missionApi) dashboard(ctx echo.Context) error {
	p, err := api.resolvePlace(ctx)
	if err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	d, err := api.progress.Dashboard(ctx.Request().Context(), usr.ID, p.Now())
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *missionApi) titles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.progress.Titles())
}

type DayMissionsResponse struct {
	Date     string               `json:"date"`
	Hijri    string               `json:"hijri"`
	Missions []mission.DayMission `json:"missions"`
}
