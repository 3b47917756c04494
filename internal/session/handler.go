package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user"
)

// Authenticator checks credentials and returns the session subject.
type Authenticator interface {
	AuthenticatePassword(ctx context.Context, email, password string) (string, error)
}

// Handler exposes login/logout endpoints.
type Handler struct {
	manager *Manager
	auth    Authenticator
	logger  *zap.SugaredLogger
}

func NewHandler(m *Manager, auth Authenticator, logger *zap.SugaredLogger) *Handler {
	return &Handler{manager: m, auth: auth, logger: logger}
}

// LoginRequest login payload.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginPage describes the login form; the browser UI is served elsewhere.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"page":   "login",
		"action": "/auth/login",
		"fields": []string{"identifier", "password"},
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	subject, err := h.auth.AuthenticatePassword(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.logger.Debugw("login failed", "err", err)
		switch {
		case errors.Is(err, user.ErrBadCredentials):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		case errors.Is(err, user.ErrDisabled):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "account disabled"})
		default:
			h.logger.Errorw("login lookup failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		}
		return
	}
	token, exp, err := h.manager.Issue(subject)
	if err != nil {
		h.logger.Errorw("issue session", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	h.manager.SetCookie(w, token, exp)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/"})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/login"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
