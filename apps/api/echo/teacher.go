package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core/teacher"
)

type teacherApi struct {
	svc *teacher.Service
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *teacher.Service) {
	api := teacherApi{svc: svc}

	tg := g.Group("/teachers", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/restore", api.restore)
}

// Handlers

func (api *teacherApi) query(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var ord Ordering
	ord.Bind(ctx)

	col, err := api.svc.AllBySchool(ctx.Request().Context(), ses, ord.Orderings...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, col)
}

func (api *teacherApi) create(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}

	tch, err := api.svc.Create(ctx.Request().Context(), ses, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tch)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	tch, err := api.svc.Get(ctx.Request().Context(), ses, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) update(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}

	tch, err := api.svc.Update(ctx.Request().Context(), ses, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ses, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) restore(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Restore(ctx.Request().Context(), ses, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
