package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
)

const contextObjectKey = "object"

func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		if claims.IsAdmin {
			return next(ctx)
		}
		return errHttpForbidden
	}
}

// activeUserMiddleware loads the authenticated user and rejects disabled accounts, whose tokens
// may still be valid.
func (s *server) activeUserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := s.auth.contextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		if !usr.IsActive {
			return errAccountDeactivated
		}
		return next(ctx)
	}
}

// ctxUserOrAdminMiddleware exposes the user named by the :id param to itself and to admins.
// Everyone else gets a 404.
func (s *server) ctxUserOrAdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := s.auth.contextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}

		if ctx.Param("id") == ctxUsr.ID || ctxUsr.IsAdmin {
			if usr, err := s.deps.UserSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err == nil {
				ctx.Set(contextObjectKey, usr)
				return next(ctx)
			} else if !core.IsKind(err, core.KindNotFound) {
				return errors.Wrap(err, "finding user by ID")
			}
		}
		return errHttpNotFound
	}
}
