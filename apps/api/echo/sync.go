package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core/guestsync"
)

// bodyLimit caps the sync payload, large enough for the item limits.
const bodyLimit = "2M"

func registerSyncAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	g.POST("/sync", func(ctx echo.Context) error {
		var data guestsync.Payload
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to Payload")
		}
		if err := data.Validate(s.deps.Validate); err != nil {
			return err
		}
		usr, err := s.auth.contextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}

		res, err := s.deps.SyncSvc.Sync(ctx.Request().Context(), usr.ID, data, usr.Preferences.HijriAdjustment)
		if err != nil {
			return errors.Wrap(err, "syncing guest data")
		}
		return ctx.JSON(http.StatusOK, res)
	}, jwt, s.activeUserMiddleware, middleware.BodyLimit(bodyLimit))
}
