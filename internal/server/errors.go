package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func invalidBody(err error) error {
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return apperr.NewValidation("Invalid request", map[string]any{"reason": msg})
}

// handleError writes every handler error as an errorResponse. Unknown errors
// are logged in full and reported generically.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := s.mapError(err)
	attrs := []any{
		"path", c.Request().URL.Path,
		"status", status,
		"error_type", body.Error,
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("Request error", attrs...)
	} else {
		s.log.Warn("Request error", attrs...)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.log.Error("Failed to write error response", "error", err)
	}
}

func (s *Server) mapError(err error) (int, errorResponse) {
	resp := errorResponse{Timestamp: time.Now().UTC()}

	var (
		verr *apperr.ValidationError
		cerr *apperr.ContentProcessingError
		xerr *apperr.ExternalServiceError
		herr *echo.HTTPError
	)
	switch {
	case errors.As(err, &verr):
		resp.Error, resp.Message, resp.Details = "ValidationError", verr.Message, verr.Details
		return http.StatusBadRequest, resp

	case errors.As(err, &cerr):
		resp.Error, resp.Message, resp.Details = "ContentProcessingError", cerr.Message, cerr.Details
		if cerr.Err != nil {
			resp.Details = withCause(cerr.Details, cerr.Err)
		}
		return http.StatusBadRequest, resp

	case errors.As(err, &xerr):
		resp.Error = "ExternalServiceError"
		resp.Message = fmt.Sprintf("%s service error", xerr.Service)
		resp.Details = map[string]any{"service": xerr.Service, "status_code": xerr.StatusCode}
		if xerr.StatusCode >= 400 && xerr.StatusCode < 500 {
			return http.StatusBadRequest, resp
		}
		return http.StatusBadGateway, resp

	case errors.As(err, &herr):
		resp.Error = http.StatusText(herr.Code)
		resp.Message = fmt.Sprint(herr.Message)
		return herr.Code, resp
	}

	resp.Error = "InternalServerError"
	resp.Message = "An unexpected error occurred"
	if s.opts.Debug {
		resp.Details = map[string]any{"error": err.Error()}
	}
	return http.StatusInternalServerError, resp
}

// withCause copies details and adds the upstream service, if any.
func withCause(details map[string]any, cause error) map[string]any {
	out := make(map[string]any, len(details)+2)
	for k, v := range details {
		out[k] = v
	}
	if ext, ok := apperr.AsExternal(cause); ok {
		out["service"] = ext.Service
		out["status_code"] = ext.StatusCode
	}
	return out
}
