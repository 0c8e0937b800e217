// Package api provides the HTTP handlers for the prompt-forge backend.
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jchen2215/promptforge/auth"
	"github.com/jchen2215/promptforge/conversation"
	"github.com/jchen2215/promptforge/domain"
	"github.com/jchen2215/promptforge/policy"
)

// Handler handles HTTP requests.
type Handler struct {
	svc    *conversation.Service
	auth   *auth.Service
	policy *policy.Engine
}

// NewHandler creates a new handler.
func NewHandler(svc *conversation.Service, authSvc *auth.Service, policyEngine *policy.Engine) *Handler {
	return &Handler{
		svc:    svc,
		auth:   authSvc,
		policy: policyEngine,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/token", h.IssueToken)
	e.GET("/health", h.Health)

	g := e.Group("", h.RequireAuth)
	g.POST("/chat", h.Chat)
	g.POST("/reset", h.Reset)
	g.GET("/sessions", h.ListSessions)
	g.GET("/history/:session_id", h.GetHistory)
	g.GET("/summary/:session_id", h.GetSummary)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// errorJSON maps a domain error to its HTTP status and a human-readable body.
func errorJSON(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier), errors.Is(err, domain.ErrCorruptState):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamFailure), errors.Is(err, domain.ErrInvalidModelOutput):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrStorageUnavailable):
		status = http.StatusInternalServerError
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
