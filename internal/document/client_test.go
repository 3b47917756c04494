package document_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/access"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company"
	companyentity "github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/document"
	userentity "github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/entity"
)

func TestGenerateStatutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/statutes", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "u1", body["company_id"])
		_, _ = w.Write([]byte(`{"url":"https://files.example.com/u1.pdf","filename":"statuts.pdf"}`))
	}))
	defer srv.Close()

	a, err := document.NewClient(srv.URL+"/", "secret").GenerateStatutes(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "https://files.example.com/u1.pdf", a.URL)
	require.Equal(t, "statuts.pdf", a.Filename)
}

func TestClientRejectsUnusableArtifacts(t *testing.T) {
	cases := map[string]string{
		"missing url":    `{"filename":"statuts.pdf"}`,
		"relative url":   `{"url":"/u1.pdf","filename":"statuts.pdf"}`,
		"script url":     `{"url":"javascript:alert(1)","filename":"statuts.pdf"}`,
		"path filename":  `{"url":"https://files.example.com/a","filename":"../etc/passwd"}`,
		"empty filename": `{"url":"https://files.example.com/a"}`,
		"not json":       `<html>ok</html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()
			_, err := document.NewClient(srv.URL, "").GenerateStatutes(context.Background(), "u1")
			require.ErrorIs(t, err, document.ErrInvalidResponse)
		})
	}
}

func TestClientParsesServiceErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{"nested", http.StatusUnprocessableEntity, `{"error":{"code":"bad_signer","message":"signer email rejected"}}`, "bad_signer", "signer email rejected"},
		{"flat", http.StatusInternalServerError, `{"message":"template missing"}`, "", "template missing"},
		{"string", http.StatusBadRequest, `{"error":"nope"}`, "", "nope"},
		{"opaque", http.StatusBadGateway, `upstream down`, "", http.StatusText(http.StatusBadGateway)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()
			_, err := document.NewClient(srv.URL, "").RequestSignature(context.Background(), document.SignatureRequest{
				CompanyID:   "u1",
				SignerEmail: "a@example.com",
			})
			var apiErr *document.Error
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tc.status, apiErr.StatusCode)
			require.Equal(t, tc.code, apiErr.Code)
			require.Equal(t, tc.message, apiErr.Message)
		})
	}
}

func TestClientRequiresIdentifiers(t *testing.T) {
	c := document.NewClient("http://127.0.0.1:0", "")
	_, err := c.GenerateStatutes(context.Background(), "")
	require.Error(t, err)
	_, err = c.RequestSignature(context.Background(), document.SignatureRequest{CompanyID: "u1"})
	require.Error(t, err)
}

type stubExporter struct {
	artifact *document.Artifact
	err      error
	signer   document.SignatureRequest
}

func (s *stubExporter) GenerateStatutes(ctx context.Context, companyID string) (*document.Artifact, error) {
	return s.artifact, s.err
}

func (s *stubExporter) RequestSignature(ctx context.Context, req document.SignatureRequest) (*document.Artifact, error) {
	s.signer = req
	return s.artifact, s.err
}

type stubCompanies map[string]companyentity.CompanyCreationData

func (s stubCompanies) Get(ctx context.Context, userID string) (*companyentity.CompanyCreationData, error) {
	c, ok := s[userID]
	if !ok {
		return nil, company.ErrNotFound
	}
	return &c, nil
}

func clientRequest(method, target, id string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	p := &userentity.Profile{ID: id, Role: userentity.RoleClient, FirstName: "Alice", LastName: "Martin", Email: "alice@example.com"}
	return r.WithContext(access.WithProfile(r.Context(), p))
}

func TestHandlerStatutes(t *testing.T) {
	companies := stubCompanies{"u1": {UserID: "u1", Step: companyentity.StepDocuments}}
	ok := &stubExporter{artifact: &document.Artifact{URL: "https://files.example.com/a.pdf", Filename: "a.pdf"}}

	rr := httptest.NewRecorder()
	document.NewHandler(ok, companies, zap.NewNop().Sugar()).Statutes(rr, clientRequest(http.MethodPost, "/client/company/statutes", "u1"))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "a.pdf")

	rr = httptest.NewRecorder()
	document.NewHandler(ok, companies, zap.NewNop().Sugar()).Statutes(rr, clientRequest(http.MethodPost, "/client/company/statutes", "u2"))
	require.Equal(t, http.StatusNotFound, rr.Code)

	failing := &stubExporter{err: &document.Error{StatusCode: 500, Message: "boom"}}
	rr = httptest.NewRecorder()
	document.NewHandler(failing, companies, zap.NewNop().Sugar()).Statutes(rr, clientRequest(http.MethodPost, "/client/company/statutes", "u1"))
	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.Contains(t, rr.Body.String(), "génération des statuts")
}

func TestHandlerSignature(t *testing.T) {
	companies := stubCompanies{
		"u1": {UserID: "u1", Step: companyentity.StepSignature},
		"u2": {UserID: "u2", Step: companyentity.StepReview},
	}
	exp := &stubExporter{artifact: &document.Artifact{URL: "https://sign.example.com/p/1", Filename: "procedure.pdf"}}
	h := document.NewHandler(exp, companies, zap.NewNop().Sugar())

	rr := httptest.NewRecorder()
	h.Signature(rr, clientRequest(http.MethodPost, "/client/company/signature", "u1"))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "alice@example.com", exp.signer.SignerEmail)
	require.Equal(t, "u1", exp.signer.CompanyID)

	rr = httptest.NewRecorder()
	h.Signature(rr, clientRequest(http.MethodPost, "/client/company/signature", "u2"))
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	h.Signature(rr, httptest.NewRequest(http.MethodPost, "/client/company/signature", nil))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, access.LoginPath, rr.Header().Get("Location"))
}
