// Package server exposes a Database over a JSON HTTP API.
//
// Callers are identified by the X-Owner-ID header, which an upstream gateway
// sets after authenticating the user. Requests without it are anonymous:
// listings come back empty and everything else is rejected.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/poiesic/scholia"
	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/generation"
	"github.com/poiesic/scholia/storage"
)

// OwnerHeader carries the caller's identity.
const OwnerHeader = "X-Owner-ID"

const ownerKey = "owner"

// Server serves the HTTP API.
type Server struct {
	db     Service
	echo   *echo.Echo
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New builds a server for db and registers every route.
func New(db Service, opts ...Option) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	s := &Server{
		db:     db,
		echo:   echo.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "server")

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency)
			return nil
		},
	}))
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(s.db.Metrics().Handler()))

	api := e.Group("/api", withOwner)

	docs := api.Group("/documents")
	docs.POST("", s.createDocument)
	docs.GET("", s.listDocuments)
	docs.GET("/:id", s.getDocument)
	docs.PATCH("/:id", s.updateDocument)
	docs.DELETE("/:id", s.deleteDocument)
	docs.POST("/:id/retry", s.retryDocument)

	nbs := api.Group("/notebooks")
	nbs.POST("", s.createNotebook)
	nbs.GET("", s.listNotebooks)
	nbs.GET("/:id", s.getNotebook)
	nbs.DELETE("/:id", s.deleteNotebook)
	nbs.GET("/:id/documents", s.listNotebookDocuments)
	nbs.POST("/:id/documents", s.addNotebookDocument)
	nbs.GET("/:id/messages", s.listMessages)
	nbs.POST("/:id/messages", s.sendMessage)
	nbs.GET("/:id/content", s.listContent)
	nbs.POST("/:id/content", s.generateContent)

	api.GET("/content/:id", s.getContent)
	api.POST("/search", s.search)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func withOwner(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(ownerKey, core.OwnerID(c.Request().Header.Get(OwnerHeader)))
		return next(c)
	}
}

func owner(c echo.Context) core.OwnerID {
	id, _ := c.Get(ownerKey).(core.OwnerID)
	return id
}

func pathID(c echo.Context) (core.ID, error) {
	var id uint64
	if _, err := fmt.Sscan(c.Param("id"), &id); err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return core.ID(id), nil
}

// statusCode maps domain errors to HTTP status codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, scholia.ErrInvalidRequest),
		errors.Is(err, scholia.ErrEmptyQuery),
		errors.Is(err, generation.ErrNoDocuments),
		errors.Is(err, core.ErrInvalidChatMessage),
		errors.Is(err, core.ErrInvalidContentType),
		errors.Is(err, core.ErrInvalidGeneratedContent):
		return http.StatusBadRequest
	case errors.Is(err, ai.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := statusCode(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	req := c.Request()
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", req.Method, "path", req.URL.Path, "status", code, "err", err)
	}
	if err := c.JSON(code, map[string]string{"error": msg}); err != nil {
		s.logger.Error("failed to write error response", "err", err)
	}
}
