package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core/event"
)

type eventApi struct {
	svc *event.Service
}

func registerEventAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *event.Service) {
	api := eventApi{svc: svc}

	g.GET("/calendar", api.calendar, jwt)

	eg := g.Group("/events", jwt)
	eg.POST("", api.create)

	dg := eg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/restore", api.restore)
}

type (
	// EventView decorates an event with the palette token the calendar
	// widget renders it in.
	EventView struct {
		event.Event
		Color event.Color `json:"color"`
	}

	EventTypeView struct {
		event.EventType
		Token event.Color `json:"token"`
	}

	RoleView struct {
		event.Role
		DisplayName string `json:"display_name"`
	}

	CalendarResponse struct {
		Events     []EventView     `json:"events"`
		EventTypes []EventTypeView `json:"event_types"`
		Roles      []RoleView      `json:"roles"`
	}
)

func newCalendarResponse(data event.CalendarData) CalendarResponse {
	resp := CalendarResponse{
		Events:     make([]EventView, 0, len(data.Events)),
		EventTypes: make([]EventTypeView, 0, len(data.EventTypes)),
		Roles:      make([]RoleView, 0, len(data.Roles)),
	}
	for _, evt := range data.Events {
		resp.Events = append(resp.Events, EventView{Event: evt, Color: event.EventColor(evt, data.EventTypes)})
	}
	for _, t := range data.EventTypes {
		token := event.TypeColor(t.ID)
		if t.Color != "" {
			token = event.HexColor(t.Color)
		}
		resp.EventTypes = append(resp.EventTypes, EventTypeView{EventType: t, Token: token})
	}
	for _, r := range data.Roles {
		resp.Roles = append(resp.Roles, RoleView{Role: r, DisplayName: event.TranslateRole(r.Name)})
	}
	return resp
}

// Handlers

func (api *eventApi) calendar(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	data := api.svc.CalendarData(ctx.Request().Context(), ses, ctx.QueryParam("school_year_id"))
	return ctx.JSON(http.StatusOK, newCalendarResponse(data))
}

func (api *eventApi) create(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}

	evt, err := api.svc.Create(ctx.Request().Context(), ses, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	evt, err := api.svc.Get(ctx.Request().Context(), ses, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) update(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data event.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}

	evt, err := api.svc.Update(ctx.Request().Context(), ses, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ses, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventApi) restore(ctx echo.Context) error {
	ses, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Restore(ctx.Request().Context(), ses, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
