package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const userIDContextKey = "user_id"

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	UserID string `json:"user_id"`
}

// IssueToken issues a bearer token for a user id.
// POST /auth/token
func (h *Handler) IssueToken(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	token, _, err := h.auth.IssueToken(req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to issue token"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// RequireAuth validates the bearer token and stores the user id on the
// request context.
func (h *Handler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		}

		userID, err := h.auth.ValidateToken(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "could not validate credentials"})
		}

		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	if id, ok := c.Get(userIDContextKey).(string); ok {
		return id
	}
	return ""
}
