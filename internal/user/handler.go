package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/entity"
)

// Handler exposes account administration endpoints. Mount behind the ADMIN guard.
type Handler struct {
	svc      *UserService
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), logger: logger}
}

// CreateRequest request body for account creation.
type CreateRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=120"`
	LastName  string `json:"last_name" validate:"max=120"`
	Role      string `json:"role" validate:"required"`
	Password  string `json:"password" validate:"required,min=12,max=72"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var role entity.Role
	if q := r.URL.Query().Get("role"); q != "" {
		var ok bool
		if role, ok = entity.ParseRole(q); !ok {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid role"})
			return
		}
	}
	users, err := h.svc.List(r.Context(), role)
	if err != nil {
		h.logger.Errorw("list users failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid create payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.svc.CreateUser(r.Context(), NewUser{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid role"})
		case errors.Is(err, ErrPasswordTooLong):
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "password too long"})
		case errors.Is(err, ErrEmailTaken):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
		default:
			h.logger.Warnw("create user failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		h.logger.Errorw("disable user failed", "id", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "disable failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
