// Package echoapi is the HTTP application: routing, auth, request binding
// and error translation on top of the core services.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/lesson"
	"github.com/edulabbr/oratoria/core/progress"
	"github.com/edulabbr/oratoria/core/user"
	ttssvc "github.com/edulabbr/oratoria/services/tts"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		UserSvc     user.Service
		LessonSvc   lesson.Service
		ProgressSvc progress.Service
		TTSSvc      ttssvc.Service
		RateLimiter core.RateLimiter
		Validate    *validator.Validate
		Translator  ut.Translator
	}

	Server struct {
		deps       ServerDeps
		app        *echo.Echo
		errCh      chan error
		shutdownCh chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	initJWTConfig(deps.Conf)

	s := &Server{
		deps:       deps,
		app:        echo.New(),
		errCh:      make(chan error, 1),
		shutdownCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownCh, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate)
	registerLessonAPI(v1, jwt, s.deps)
	registerUploadAPI(v1, jwt, s.deps)
	registerProgressAPI(v1, jwt, s.deps)
	registerTTSAPI(v1, jwt, s.deps)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errCh <- err
	}
}

// Errors receives fatal server errors.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// ShutdownSignal receives OS interrupt/terminate signals, and synthetic ones
// raised by the error handler on integrity issues.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownCh
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	s.shutdownCh <- syscall.SIGTERM
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Oratória API!")
}
