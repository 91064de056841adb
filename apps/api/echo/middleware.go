package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core/agenda"
)

var contextCalendarKey = "calendar"

// calendarMiddleware opens (or resumes) the calendar session of the authenticated principal.
func calendarMiddleware(registry *agenda.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx)
			if err != nil {
				return err
			}
			c, err := registry.Open(ctx.Request().Context(), p)
			if err != nil {
				return errors.Wrap(err, "opening calendar")
			}
			ctx.Set(contextCalendarKey, c)
			return next(ctx)
		}
	}
}

func getContextCalendar(ctx echo.Context) (*agenda.Controller, error) {
	if c, ok := ctx.Get(contextCalendarKey).(*agenda.Controller); ok {
		return c, nil
	}
	return nil, errUnauthorized
}
