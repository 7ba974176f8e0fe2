package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ltoral/escolar/core/group"
	"github.com/ltoral/escolar/core/student"
)

type dashboardApi struct {
	studentSvc *student.Service
	groupSvc   *group.Service
	cache      student.MetricsCache
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, studentSvc *student.Service, groupSvc *group.Service) {
	api := &dashboardApi{studentSvc: studentSvc, groupSvc: groupSvc}

	g.GET("/dashboard", api.metrics, jwt)
}

// metrics serves the dashboard counters. The three school-wide fetches feed a
// memoized reduction, so unchanged data costs a fingerprint instead of a
// recount.
func (api *dashboardApi) metrics(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	studentCol, err := api.studentSvc.AllBySchool(reqCtx, ses)
	if err != nil {
		return err
	}
	groupCol, err := api.groupSvc.AllBySchool(reqCtx, ses)
	if err != nil {
		return err
	}
	memberships, err := api.groupSvc.Memberships(reqCtx, ses)
	if err != nil {
		return err
	}

	students := append(studentCol.Active, studentCol.Deleted...)
	groups := append(groupCol.Active, groupCol.Deleted...)

	return ctx.JSON(http.StatusOK, api.cache.Get(students, groups, memberships))
}
