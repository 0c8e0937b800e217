package api

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	UserInput string `json:"user_input"`
}

// SessionRequest is the body of POST /reset.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// Chat runs one conversation turn.
// POST /chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	userID := currentUserID(c)

	decision, err := h.policy.Evaluate(ctx, map[string]interface{}{
		"session_id": req.SessionID,
		"user_id":    userID,
		"user_input": req.UserInput,
	})
	if err != nil {
		log.Printf("ERROR: policy evaluation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "policy evaluation failed"})
	}
	if decision != "allow" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "request rejected by policy"})
	}

	resp, err := h.svc.SubmitTurn(ctx, req.SessionID, req.UserInput, userID)
	if err != nil {
		log.Printf("ERROR: chat turn failed for session %s: %v", req.SessionID, err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Reset deletes a session's history.
// POST /reset
func (h *Handler) Reset(c echo.Context) error {
	ctx := c.Request().Context()

	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	deleted, err := h.svc.Reset(ctx, req.SessionID)
	if err != nil {
		log.Printf("ERROR: reset failed for session %s: %v", req.SessionID, err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": req.SessionID,
		"reset":      deleted,
	})
}

// ListSessions returns session summaries, newest first.
// GET /sessions
func (h *Handler) ListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListSessions())
}

// GetHistory returns a session's turns in creation order.
// GET /history/:session_id
func (h *Handler) GetHistory(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	turns, err := h.svc.History(ctx, sessionID)
	if err != nil {
		log.Printf("ERROR: failed to get history for session %s: %v", sessionID, err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, turns)
}

// GetSummary returns the user's answers so far.
// GET /summary/:session_id
func (h *Handler) GetSummary(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	answers, err := h.svc.Summary(ctx, sessionID)
	if err != nil {
		log.Printf("ERROR: failed to get summary for session %s: %v", sessionID, err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":   sessionID,
		"user_answers": answers,
	})
}
