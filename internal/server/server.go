// Package server exposes the search pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/deusflow/newslens/internal/app"
	"github.com/deusflow/newslens/internal/logger"
	"github.com/deusflow/newslens/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const headerProcessTime = "X-Process-Time"

type Options struct {
	Version string
	Debug   bool
	// HealthTimeout bounds each external probe of /health?include_external=true.
	HealthTimeout time.Duration
	// Stats adds named sections to the JSON stats endpoint.
	Stats map[string]func() map[string]any
}

type Server struct {
	echo     *echo.Echo
	pipeline *app.Pipeline
	metrics  *metrics.Metrics
	opts     Options
	log      *slog.Logger
}

func New(p *app.Pipeline, m *metrics.Metrics, opts Options, log *slog.Logger) *Server {
	if m == nil {
		m = metrics.Global
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 10 * time.Second
	}
	s := &Server{
		echo:     echo.New(),
		pipeline: p,
		metrics:  m,
		opts:     opts,
		log:      logger.OrDefault(log),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: app.NewValidator()}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(processTime())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if v.Error != nil {
				s.log.Error("request failed", append(attrs, "error", v.Error.Error())...)
				return nil
			}
			s.log.Info("request completed", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := e.Group("/api/v1")
	api.POST("/search", s.search)
	api.GET("/health", s.health)
	api.GET("/metrics", s.stats)

	return s
}

func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start(addr string) error {
	s.log.Info("Starting HTTP server", "address", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// processTime reports the handler time in milliseconds as a response header.
func processTime() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				ms := float64(time.Since(start).Microseconds()) / 1000
				c.Response().Header().Set(headerProcessTime, strconv.FormatFloat(ms, 'f', 2, 64))
			})
			return next(c)
		}
	}
}

type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return app.ValidationFailure(verrs)
	}
	return err
}

func (s *Server) search(c echo.Context) error {
	var req app.SearchRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := app.WithRequestID(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))
	resp, err := s.pipeline.ProcessSearchRequest(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

type healthResponse struct {
	Status           string            `json:"status"`
	Timestamp        time.Time         `json:"timestamp"`
	Version          string            `json:"version"`
	UptimeSeconds    float64           `json:"uptime_seconds"`
	LastRun          any               `json:"last_run,omitempty"`
	LastError        string            `json:"last_error,omitempty"`
	ExternalServices map[string]string `json:"external_services,omitempty"`
}

func (s *Server) health(c echo.Context) error {
	var includeExternal bool
	if err := echo.QueryParamsBinder(c).Bool("include_external", &includeExternal).BindError(); err != nil {
		return invalidBody(err)
	}

	stats := s.metrics.GetStats()
	resp := healthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       s.opts.Version,
		UptimeSeconds: s.metrics.Uptime().Seconds(),
		LastRun:       stats["last_run_time"],
	}
	if msg, _ := stats["last_error"].(string); msg != "" {
		resp.LastError = msg
	}
	// Cleared by the next successful pipeline run.
	if healthy, ok := stats["is_healthy"].(bool); ok && !healthy {
		resp.Status = "degraded"
	}

	if includeExternal {
		resp.ExternalServices = s.probe(c.Request().Context())
		for _, state := range resp.ExternalServices {
			if state != "healthy" {
				resp.Status = "degraded"
			}
		}
		if resp.Status == "degraded" {
			s.log.Warn("Health check shows degraded status", "external_services", resp.ExternalServices)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type healthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

func (s *Server) probe(ctx context.Context) map[string]string {
	var checks []healthChecker
	if p := s.pipeline.Search(); p != nil {
		checks = append(checks, p)
	}
	if a := s.pipeline.Analyzer(); a != nil {
		checks = append(checks, a)
	}

	out := make(map[string]string, len(checks))
	for _, hc := range checks {
		cctx, cancel := context.WithTimeout(ctx, s.opts.HealthTimeout)
		err := hc.HealthCheck(cctx)
		cancel()
		if err != nil {
			s.log.Warn("External health check failed", "service", hc.Name(), "error", err)
			s.metrics.SetUnhealthy(fmt.Sprintf("%s health check failed: %v", hc.Name(), err))
			out[hc.Name()] = "unhealthy"
			continue
		}
		out[hc.Name()] = "healthy"
	}
	return out
}

func (s *Server) stats(c echo.Context) error {
	out := map[string]any{
		"version":   s.opts.Version,
		"timestamp": time.Now().UTC(),
		"pipeline":  s.metrics.GetStats(),
	}
	if p := s.pipeline.Search(); p != nil {
		out["search_provider"] = p.Name()
	}
	if a := s.pipeline.Analyzer(); a != nil {
		out["ai_provider"] = a.Name()
	}
	for name, fn := range s.opts.Stats {
		out[name] = fn()
	}
	return c.JSON(http.StatusOK, out)
}
