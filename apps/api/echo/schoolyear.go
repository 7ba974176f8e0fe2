package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ltoral/escolar/core/schoolyear"
)

type schoolYearApi struct {
	svc *schoolyear.Service
}

func registerSchoolYearAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schoolyear.Service) {
	api := schoolYearApi{svc: svc}

	yg := g.Group("/school-years", jwt)
	yg.GET("", api.query)
	yg.GET("/current", api.current)
}

// Handlers

func (api *schoolYearApi) query(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	years, err := api.svc.AllBySchool(ctx.Request().Context(), ses)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *schoolYearApi) current(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	year, err := api.svc.Current(ctx.Request().Context(), ses)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, year)
}
