package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/agenda"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
	}

	Server struct {
		opts     Options
		conf     *core.Config
		logger   core.Logger
		registry *agenda.Registry
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

// NewServer returns the API server. Calendar sessions are kept in registry, one per principal.
func NewServer(conf *core.Config, logger core.Logger, registry *agenda.Registry) *Server {
	s := &Server{
		opts: Options{
			Address:        conf.Server.Host,
			DisableReqLogs: conf.TestMode,
		},
		conf:     conf,
		logger:   logger,
		registry: registry,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = s.conf.TestMode
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.signalShutdown)
	s.app.Debug = s.conf.Debug && !s.conf.TestMode

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(s.conf))

	registerTypesAPI(v1)
	registerCalendarAPI(v1, jwt, s.registry, s.conf)
}

// Start schedules the idle session sweep and serves until Shutdown; failures are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	if err := s.registry.Start(); err != nil {
		s.errors <- err
		return
	}
	if err := s.app.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

// Shutdown stops accepting requests, then ends every calendar session.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutting down server")
	}
	return errors.Wrap(s.registry.Stop(ctx), "stopping calendar sessions")
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
