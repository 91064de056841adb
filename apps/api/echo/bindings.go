package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/calendar"
)

var (
	monthParam = "month"
	dateParam  = "date"
)

// bindMonth reads the optional "month" query param (YYYY-MM).
func bindMonth(ctx echo.Context) (calendar.Month, bool, error) {
	val := ctx.QueryParam(monthParam)
	if val == "" {
		return calendar.Month{}, false, nil
	}
	m, err := calendar.ParseMonth(val)
	if err != nil {
		return calendar.Month{}, false, core.NewValidationError(nil, core.FieldError{Field: monthParam, Error: err.Error()})
	}
	return m, true, nil
}

// bindDate reads the "date" path param (YYYY-MM-DD).
func bindDate(ctx echo.Context) (calendar.Date, error) {
	d, err := calendar.ParseDate(ctx.Param(dateParam))
	if err != nil {
		return calendar.Date{}, core.NewValidationError(nil, core.FieldError{Field: dateParam, Error: err.Error()})
	}
	return d, nil
}

type (
	navigateRequest struct {
		Delta int `json:"delta"`
	}

	formRequest struct {
		EventID string `json:"eventId"`
	}
)
