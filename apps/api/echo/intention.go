package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core/intention"
)

type intentionApi struct {
	*server
	svc *intention.Service
}

func registerIntentionAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := intentionApi{server: s, svc: s.deps.IntentionSvc}

	ig := g.Group("/intentions", jwt, s.activeUserMiddleware)
	ig.GET("", api.query)
	ig.POST("", api.create)
	ig.GET("/:id", api.retrieve)
	ig.PUT("/:id", api.update)
	ig.DELETE("/:id", api.destroy)
}

// Handlers

func (api *intentionApi) query(ctx echo.Context) error {
	var filter intention.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err := api.deps.Validate.Struct(filter); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	list, err := api.svc.Query(ctx.Request().Context(), usr.ID, filter)
	if err != nil {
		return errors.Wrap(err, "querying intentions")
	}
	if list == nil {
		list = []intention.Intention{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *intentionApi) create(ctx echo.Context) error {
	var data intention.NewIntention
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewIntention")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	p, err := api.resolvePlace(ctx)
	if err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	i, err := api.svc.Create(ctx.Request().Context(), usr.ID, data, p.Now())
	if err != nil {
		return errors.Wrap(err, "creating intention")
	}
	return ctx.JSON(http.StatusCreated, i)
}

func (api *intentionApi) retrieve(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	i, err := api.svc.Get(ctx.Request().Context(), usr.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting intention")
	}
	return ctx.JSON(http.StatusOK, i)
}

func (api *intentionApi) update(ctx echo.Context) error {
	var data intention.UpdateIntention
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateIntention")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	i, err := api.svc.Update(ctx.Request().Context(), usr.ID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating intention")
	}
	return ctx.JSON(http.StatusOK, i)
}

func (api *intentionApi) destroy(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.Delete(ctx.Request().Context(), usr.ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting intention")
	}
	return ctx.NoContent(http.StatusNoContent)
}
