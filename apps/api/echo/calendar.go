package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/agenda"
	"github.com/trezcool/agenda/core/event"
)

var exportCalendar = (*agenda.Controller).Export // mockable

type calendarApi struct {
	registry *agenda.Registry
	conf     *core.Config
}

func registerTypesAPI(g *echo.Group) {
	g.GET("/event-types", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, event.Types)
	})
	g.GET("/calendar/options", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{
			"types":     event.Types,
			"subjects":  event.Subjects,
			"reminders": event.ReminderOptions,
		})
	})
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, registry *agenda.Registry, conf *core.Config) {
	api := calendarApi{registry: registry, conf: conf}

	g.POST("/session/logout", api.logout, jwt)

	cg := g.Group("/calendar", jwt, calendarMiddleware(registry))
	cg.GET("", api.view)
	cg.POST("/navigate", api.navigate)
	cg.POST("/today", api.today)
	cg.POST("/refresh", api.refresh)
	cg.GET("/days/:date", api.day)
	cg.GET("/upcoming", api.upcoming)
	cg.GET("/export.ics", api.export)
	cg.DELETE("/notice", api.dismissNotice)

	cg.GET("/events", api.events)
	cg.GET("/events/:id", api.detail)
	cg.DELETE("/events/:id", api.remove)
	cg.DELETE("/detail", api.closeDetail)

	cg.GET("/form", api.form)
	cg.POST("/form", api.startForm)
	cg.PATCH("/form", api.editForm)
	cg.DELETE("/form", api.cancelForm)
	cg.POST("/form/submit", api.submit)
}

// Handlers

func (api *calendarApi) view(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	m, ok, err := bindMonth(ctx)
	if err != nil {
		return err
	}
	if ok {
		if err = c.GoTo(m); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, c.View())
}

func (api *calendarApi) navigate(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	var data navigateRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to navigateRequest")
	}
	if err = c.Navigate(data.Delta); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.View())
}

func (api *calendarApi) today(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	if err = c.Today(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.View())
}

func (api *calendarApi) refresh(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	if err = c.Refresh(ctx.Request().Context()); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.View())
}

func (api *calendarApi) day(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	d, err := bindDate(ctx)
	if err != nil {
		return err
	}
	evs, err := c.SelectDate(d)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, agenda.DayView{Date: d, Events: evs})
}

func (api *calendarApi) upcoming(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.Upcoming())
}

func (api *calendarApi) export(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = exportCalendar(c, &buf, api.conf.AppName); err != nil {
		return errors.Wrap(err, "exporting calendar")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="calendar.ics"`)
	return ctx.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (api *calendarApi) dismissNotice(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	c.DismissNotice()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *calendarApi) events(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.Events())
}

func (api *calendarApi) detail(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	d, err := c.SelectEvent(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *calendarApi) remove(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	if err = c.Remove(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *calendarApi) closeDetail(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	c.CloseDetail()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *calendarApi) form(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	fv, ok := c.Form()
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, fv)
}

// startForm opens the create form, or the edit form when an event id is given.
func (api *calendarApi) startForm(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	var data formRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to formRequest")
	}

	var fv agenda.FormView
	if data.EventID != "" {
		fv, err = c.StartEdit(data.EventID)
	} else {
		fv, err = c.StartCreate()
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, fv)
}

func (api *calendarApi) editForm(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	var data event.Patch
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to event.Patch")
	}
	fv, err := c.EditForm(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fv)
}

func (api *calendarApi) cancelForm(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	c.CancelForm()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *calendarApi) submit(ctx echo.Context) error {
	c, err := getContextCalendar(ctx)
	if err != nil {
		return err
	}
	fv, _ := c.Form()
	ev, err := c.Submit(ctx.Request().Context())
	if err != nil {
		return err
	}
	if fv.Mode == agenda.FormEdit {
		return ctx.JSON(http.StatusOK, ev)
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *calendarApi) logout(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	api.registry.Close(p.ID)
	return ctx.NoContent(http.StatusNoContent)
}
