package company

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/access"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company/entity"
)

// Handler contains dependencies for the client and expert company endpoints.
type Handler struct {
	svc      *Service
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

// NewHandler constructs a new Handler.
func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), logger: logger}
}

// SaveRequest is the client's company information form.
type SaveRequest struct {
	CompanyType string `json:"company_type" validate:"required,max=8"`
	CompanyName string `json:"company_name" validate:"required,max=200"`
}

// ReviewRequest carries an expert decision.
type ReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Note     string `json:"note" validate:"max=2000"`
}

// Mine returns the caller's own file.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	p, _ := access.ProfileFromContext(r.Context())
	c, err := h.svc.Get(r.Context(), p.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	sidebar, _ := access.SidebarFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"sidebar": sidebar, "company": c})
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	p, _ := access.ProfileFromContext(r.Context())
	c, err := h.svc.SaveInformation(r.Context(), p.ID, req.CompanyType, req.CompanyName)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	p, _ := access.ProfileFromContext(r.Context())
	c, err := h.svc.Submit(r.Context(), p.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// List serves the expert queue, filtered by ?step= when given.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), entity.Step(r.URL.Query().Get("step")))
	if err != nil {
		h.fail(w, err)
		return
	}
	sidebar, _ := access.SidebarFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"sidebar": sidebar, "companies": list})
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	expert, _ := access.ProfileFromContext(r.Context())
	userID := r.PathValue("userID")
	c, err := h.svc.Review(r.Context(), userID, Decision(req.Decision), req.Note)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Infow("company reviewed", "user_id", userID, "expert", expert.ID, "decision", req.Decision)
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Complete(r.Context(), r.PathValue("userID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "company data not found"})
	case errors.Is(err, ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidDecision), errors.Is(err, ErrInvalidCompanyType), errors.Is(err, ErrInvalidStep):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		h.logger.Errorw("company request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
