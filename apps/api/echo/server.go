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

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/event"
	"github.com/ltoral/escolar/core/group"
	"github.com/ltoral/escolar/core/schoolyear"
	"github.com/ltoral/escolar/core/student"
	"github.com/ltoral/escolar/core/teacher"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		EventSvc      *event.Service
		GroupSvc      *group.Service
		StudentSvc    *student.Service
		TeacherSvc    *teacher.Service
		SchoolYearSvc *schoolyear.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
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

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig())

	registerEventAPI(v1, jwt, s.deps.EventSvc)
	registerGroupAPI(v1, jwt, s.deps.GroupSvc)
	registerStudentAPI(v1, jwt, s.deps.StudentSvc)
	registerTeacherAPI(v1, jwt, s.deps.TeacherSvc)
	registerSchoolYearAPI(v1, jwt, s.deps.SchoolYearSvc)
	registerDashboardAPI(v1, jwt, s.deps.StudentSvc, s.deps.GroupSvc)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errs }

// ShutdownSignal relays SIGINT/SIGTERM; SignalShutdown feeds the same channel
// so a shutdown error caught by the error handler drains like an OS signal.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s.shutdown
}

func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
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

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Escolar API!")
}
