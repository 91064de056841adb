package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/agenda"
	"github.com/trezcool/agenda/core/event"
	"github.com/trezcool/agenda/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var httpErr *echo.HTTPError
		var vErr *core.ValidationError
		var pErr *core.PersistenceError

		switch {
		case errors.As(err, &httpErr):
			if httpErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = httpErr.Message
				break
			}
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &vErr):
			if vErr.Fields != nil {
				message = vErr.FieldMap()
			} else {
				message = vErr.Error()
			}
			code = http.StatusBadRequest
		case errors.Is(err, event.ErrNotFound):
			code = http.StatusNotFound
			message = event.ErrNotFound.Error()
		case errors.Is(err, core.ErrForbidden):
			code = http.StatusForbidden
			message = errHttpForbidden.Message
		case errors.Is(err, agenda.ErrBusy), errors.Is(err, agenda.ErrNoForm):
			code = http.StatusConflict
			message = errors.Cause(err).Error()
		case errors.Is(err, agenda.ErrClosed), errors.Is(err, agenda.ErrInactive):
			code = http.StatusUnauthorized
			message = "session ended, please sign in again"
		case errors.As(err, &pErr):
			code = http.StatusServiceUnavailable
			message = pErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var p user.Principal
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				p = claims.Principal()
			}
			logger.Error(msg, errors.Wrap(err, msg), p)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
