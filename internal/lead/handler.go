package lead

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/access"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/revalidate"
)

const (
	msgCreateFailed = "Impossible de créer le lead"
	msgInvalidForm  = "Formulaire invalide"
)

// Views lists the paths that render the lead list.
var Views = []string{"/admin/leads", "/hos/leads"}

// Handler exposes the public intake action and the lead back-office endpoints.
type Handler struct {
	svc      *Service
	views    *revalidate.Registry
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewHandler(svc *Service, views *revalidate.Registry, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		svc:      svc,
		views:    views,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// IntakeForm is the public lead form.
type IntakeForm struct {
	FirstName string `json:"firstName" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email,max=254"`
}

// IntakeResult is returned to the form.
type IntakeResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Intake persists a lead submitted from the public form.
func (h *Handler) Intake(w http.ResponseWriter, r *http.Request) {
	form, err := decodeIntake(r)
	if err == nil {
		err = h.validate.Struct(form)
	}
	if err != nil {
		h.logger.Debugw("invalid lead form", "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, IntakeResult{Error: msgInvalidForm})
		return
	}
	l, err := h.svc.Create(r.Context(), form.FirstName, form.Email)
	if err != nil {
		h.logger.Errorw("create lead failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, IntakeResult{Error: msgCreateFailed})
		return
	}
	h.logger.Infow("lead created", "id", l.ID)
	h.touch()
	writeJSON(w, http.StatusCreated, IntakeResult{Success: true})
}

// decodeIntake accepts JSON or form encoding and either camelCase or
// snake_case field names. Values of the wrong JSON type are rejected.
func decodeIntake(r *http.Request) (IntakeForm, error) {
	var form IntakeForm
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body struct {
			FirstName      *string `json:"firstName"`
			FirstNameSnake *string `json:"first_name"`
			Email          *string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return form, err
		}
		switch {
		case body.FirstName != nil && strings.TrimSpace(*body.FirstName) != "":
			form.FirstName = *body.FirstName
		case body.FirstNameSnake != nil:
			form.FirstName = *body.FirstNameSnake
		}
		if body.Email != nil {
			form.Email = *body.Email
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return form, err
		}
		form.FirstName = r.PostForm.Get("firstName")
		if form.FirstName == "" {
			form.FirstName = r.PostForm.Get("first_name")
		}
		form.Email = r.PostForm.Get("email")
	}
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.Email = strings.TrimSpace(form.Email)
	return form, nil
}

// List renders the lead list for the guarded section it is mounted on.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.svc.GetAllLeads(r.Context())
	if err != nil {
		h.logger.Errorw("list leads failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list failed"})
		return
	}
	sidebar, _ := access.SidebarFromContext(r.Context())
	if err := h.views.WriteJSON(w, r, r.URL.Path, map[string]any{"sidebar": sidebar, "leads": leads}); err != nil {
		h.logger.Warnw("write lead list failed", "err", err)
	}
}

// StatusRequest body of the status update endpoint.
type StatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	l, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), entity.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		case errors.Is(err, ErrInvalidStatus):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid status"})
		default:
			h.logger.Errorw("update lead status failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "update failed"})
		}
		return
	}
	h.touch()
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) touch() {
	for _, v := range Views {
		h.views.Revalidate(v)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
