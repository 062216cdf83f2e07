package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amal/core/quran"
)

type quranApi struct {
	*server
	svc *quran.Service
}

func registerQuranAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := quranApi{server: s, svc: s.deps.QuranSvc}

	qg := g.Group("/quran")
	qg.GET("/surahs", api.surahs)
	qg.GET("/surahs/:surah", api.surah)
	qg.GET("/juz", api.juz)
	qg.GET("/audio/:surah/:ayah", api.audio)
	qg.GET("/tafsir/:surah", api.tafsir)
	qg.GET("/tafsir/:surah/:ayah", api.ayahTafsir)

	ag := qg.Group("", jwt, s.activeUserMiddleware)
	ag.GET("/bookmarks", api.queryBookmarks)
	ag.POST("/bookmarks", api.createBookmark)
	ag.GET("/bookmarks/:id", api.retrieveBookmark)
	ag.PUT("/bookmarks/:id", api.updateBookmark)
	ag.DELETE("/bookmarks/:id", api.destroyBookmark)
	ag.GET("/last-read", api.lastRead)
	ag.PUT("/last-read", api.saveLastRead)
}

func (api *quranApi) position(ctx echo.Context) (quran.Position, error) {
	var p quran.Position
	var err error
	if p.Surah, err = intParam(ctx, "surah"); err != nil {
		return p, err
	}
	if p.Ayah, err = intParam(ctx, "ayah"); err != nil {
		return p, err
	}
	if !p.Valid() {
		return p, errHttpNotFound
	}
	return p, nil
}

func (api *quranApi) userID(ctx echo.Context) (string, error) {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}
	return usr.ID, nil
}

// Handlers

func (api *quranApi) surahs(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, quran.Surahs())
}

func (api *quranApi) surah(ctx echo.Context) error {
	n, err := intParam(ctx, "surah")
	if err != nil {
		return err
	}
	s, ok := quran.SurahByNumber(n)
	if !ok {
		return quran.ErrSurahNotFound
	}
	conf := api.deps.Conf.Quran
	audio, _ := quran.SurahAudio(conf.AudioBaseURL, conf.Reciter, n)
	return ctx.JSON(http.StatusOK, SurahResponse{
		Surah:   s,
		Juz:     quran.JuzOf(quran.Position{Surah: n, Ayah: 1}),
		Reciter: conf.Reciter,
		Audio:   audio,
	})
}

func (api *quranApi) juz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, quran.JuzList())
}

func (api *quranApi) audio(ctx echo.Context) error {
	p, err := api.position(ctx)
	if err != nil {
		return err
	}
	conf := api.deps.Conf.Quran
	return ctx.JSON(http.StatusOK, AudioResponse{
		Position: p,
		Reciter:  conf.Reciter,
		URL:      quran.AudioURL(conf.AudioBaseURL, conf.Reciter, p),
	})
}

func (api *quranApi) tafsir(ctx echo.Context) error {
	n, err := intParam(ctx, "surah")
	if err != nil {
		return err
	}
	t, err := api.deps.Tafsir.Surah(ctx.Request().Context(), n)
	if err != nil {
		return errors.Wrap(err, "fetching tafsir")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *quranApi) ayahTafsir(ctx echo.Context) error {
	p, err := api.position(ctx)
	if err != nil {
		return err
	}
	t, err := quran.AyahTafsirOf(ctx.Request().Context(), api.deps.Tafsir, p)
	if err != nil {
		return errors.Wrap(err, "fetching tafsir")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *quranApi) queryBookmarks(ctx echo.Context) error {
	var filter quran.BookmarkFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to BookmarkFilter")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}

	list, err := api.svc.Bookmarks(ctx.Request().Context(), userID, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying bookmarks")
	}
	if list == nil {
		list = []quran.Bookmark{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *quranApi) createBookmark(ctx echo.Context) error {
	var data quran.NewBookmark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBookmark")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}

	b, err := api.svc.CreateBookmark(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating bookmark")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *quranApi) retrieveBookmark(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}
	b, err := api.svc.GetBookmark(ctx.Request().Context(), userID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting bookmark")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *quranApi) updateBookmark(ctx echo.Context) error {
	var data quran.UpdateBookmark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBookmark")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}

	b, err := api.svc.UpdateBookmark(ctx.Request().Context(), userID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating bookmark")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *quranApi) destroyBookmark(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteBookmark(ctx.Request().Context(), userID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting bookmark")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *quranApi) lastRead(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}
	lr, err := api.svc.LastRead(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "getting last read")
	}
	return ctx.JSON(http.StatusOK, lr)
}

func (api *quranApi) saveLastRead(ctx echo.Context) error {
	var data quran.LastRead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LastRead")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}

	lr, err := api.svc.SaveLastRead(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "saving last read")
	}
	return ctx.JSON(http.StatusOK, lr)
}

type (
	SurahResponse struct {
		quran.Surah
		Juz     int      `json:"juz"` // juz of the first ayah
		Reciter string   `json:"reciter"`
		Audio   []string `json:"audio"`
	}

	AudioResponse struct {
		quran.Position
		Reciter string `json:"reciter"`
		URL     string `json:"url"`
	}
)
