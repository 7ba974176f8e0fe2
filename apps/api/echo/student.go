package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core/student"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/restore", api.restore)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
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

func (api *studentApi) create(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.svc.Create(ctx.Request().Context(), ses, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	std, err := api.svc.Get(ctx.Request().Context(), ses, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	std, err := api.svc.Update(ctx.Request().Context(), ses, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ses, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) restore(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Restore(ctx.Request().Context(), ses, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
