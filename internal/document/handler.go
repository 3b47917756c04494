package document

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/access"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company"
	companyentity "github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company/entity"
)

const (
	msgNoCompany       = "Aucun dossier de création trouvé"
	msgStatutesFailed  = "Erreur lors de la génération des statuts"
	msgSignatureFailed = "Erreur lors de l'envoi pour signature"
	msgNotSignable     = "Le dossier n'est pas prêt pour la signature"
)

// Exporter is the external document service.
type Exporter interface {
	GenerateStatutes(ctx context.Context, companyID string) (*Artifact, error)
	RequestSignature(ctx context.Context, req SignatureRequest) (*Artifact, error)
}

// Companies reads the caller's incorporation file.
type Companies interface {
	Get(ctx context.Context, userID string) (*companyentity.CompanyCreationData, error)
}

// Handler serves the client download actions. Routes must sit behind the guard.
type Handler struct {
	exporter  Exporter
	companies Companies
	logger    *zap.SugaredLogger
}

func NewHandler(exporter Exporter, companies Companies, logger *zap.SugaredLogger) *Handler {
	return &Handler{exporter: exporter, companies: companies, logger: logger}
}

// Statutes returns the download link of the caller's statutes.
func (h *Handler) Statutes(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}
	a, err := h.exporter.GenerateStatutes(r.Context(), c.UserID)
	if err != nil {
		h.logger.Warnw("statutes generation failed", "user_id", c.UserID, "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": msgStatutesFailed})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Signature starts the e-signature of the caller's file.
func (h *Handler) Signature(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}
	if c.Step != companyentity.StepSignature {
		writeJSON(w, http.StatusConflict, map[string]string{"error": msgNotSignable})
		return
	}
	p, _ := access.ProfileFromContext(r.Context())
	a, err := h.exporter.RequestSignature(r.Context(), SignatureRequest{
		CompanyID:   c.UserID,
		SignerEmail: p.Email,
		SignerName:  p.DisplayName(),
	})
	if err != nil {
		h.logger.Warnw("signature request failed", "user_id", c.UserID, "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": msgSignatureFailed})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) company(w http.ResponseWriter, r *http.Request) (*companyentity.CompanyCreationData, bool) {
	p, ok := access.ProfileFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
		return nil, false
	}
	c, err := h.companies.Get(r.Context(), p.ID)
	if err != nil {
		if errors.Is(err, company.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": msgNoCompany})
			return nil, false
		}
		h.logger.Errorw("load company failed", "user_id", p.ID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgNoCompany})
		return nil, false
	}
	return c, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
