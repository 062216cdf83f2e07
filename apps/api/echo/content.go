package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core/content"
)

func registerContentAPI(g *echo.Group, s *server) {
	faq := s.deps.FAQ

	fg := g.Group("/faq")
	fg.GET("", func(ctx echo.Context) error {
		var filter content.FAQFilter
		if err := ctx.Bind(&filter); err != nil {
			return errors.Wrap(err, "binding to FAQFilter")
		}
		return ctx.JSON(http.StatusOK, faq.Query(filter))
	})
	fg.GET("/categories", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, faq.Categories())
	})
}
