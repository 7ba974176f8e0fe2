package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core/group"
)

type groupApi struct {
	svc *group.Service
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *group.Service) {
	api := groupApi{svc: svc}

	gg := g.Group("/groups", jwt)
	gg.GET("", api.query)
	gg.POST("", api.create)

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/restore", api.restore)
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
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

func (api *groupApi) create(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}

	grp, err := api.svc.Create(ctx.Request().Context(), ses, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	grp, err := api.svc.Get(ctx.Request().Context(), ses, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}

	grp, err := api.svc.Update(ctx.Request().Context(), ses, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ses, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) restore(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Restore(ctx.Request().Context(), ses, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
