package lead_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/revalidate"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
)

type memoryLeadRepo struct {
	leads   []entity.Lead
	created []database.Fields
	fail    error
}

func (m *memoryLeadRepo) Create(ctx context.Context, f database.Fields) (*entity.Lead, error) {
	m.created = append(m.created, f)
	if m.fail != nil {
		return nil, m.fail
	}
	l := entity.Lead{
		ID:        f["id"].(string),
		FirstName: f["first_name"].(string),
		Email:     f["email"].(string),
		Status:    entity.StatusNew,
		CreatedAt: time.Now(),
	}
	m.leads = append(m.leads, l)
	return &l, nil
}

func (m *memoryLeadRepo) List(ctx context.Context) ([]entity.Lead, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]entity.Lead(nil), m.leads...), nil
}

func (m *memoryLeadRepo) UpdateStatus(ctx context.Context, id string, status entity.Status) (*entity.Lead, error) {
	for i := range m.leads {
		if m.leads[i].ID == id {
			m.leads[i].Status = status
			l := m.leads[i]
			return &l, nil
		}
	}
	return nil, sql.ErrNoRows
}

func TestCreateAddsExactlyOneLeadWithDefaultStatus(t *testing.T) {
	ctx := context.Background()
	repo := &memoryLeadRepo{}
	svc := lead.NewService(repo)

	before, err := svc.GetAllLeads(ctx)
	require.NoError(t, err)

	l, err := svc.Create(ctx, "Alice", "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, entity.StatusNew, l.Status)

	after, err := svc.GetAllLeads(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	require.NotContains(t, repo.created[0], "status")
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := &memoryLeadRepo{}
	svc := lead.NewService(repo)
	l, err := svc.Create(ctx, "Bob", "bob@example.com")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, l.ID, entity.StatusContacted)
	require.NoError(t, err)
	require.Equal(t, entity.StatusContacted, updated.Status)

	_, err = svc.UpdateStatus(ctx, "does-not-exist", entity.StatusLost)
	require.ErrorIs(t, err, lead.ErrNotFound)
	require.ErrorIs(t, err, sql.ErrNoRows)

	_, err = svc.UpdateStatus(ctx, l.ID, "archived")
	require.ErrorIs(t, err, lead.ErrInvalidStatus)
}

func newHandler(repo *memoryLeadRepo) (*lead.Handler, *revalidate.Registry) {
	views := revalidate.NewRegistry()
	return lead.NewHandler(lead.NewService(repo), views, zap.NewNop().Sugar()), views
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) lead.IntakeResult {
	t.Helper()
	var res lead.IntakeResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return res
}

func TestIntakeSuccess(t *testing.T) {
	repo := &memoryLeadRepo{}
	h, views := newHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewBufferString(`{"firstName":"Alice","email":"alice@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Intake(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, lead.IntakeResult{Success: true}, decodeResult(t, w))
	require.Len(t, repo.created, 1)
	require.Equal(t, "Alice", repo.created[0]["first_name"])
	require.Equal(t, "alice@example.com", repo.created[0]["email"])
	for _, v := range lead.Views {
		require.Equal(t, uint64(1), views.Version(v))
	}
}

func TestIntakeAcceptsFormEncoding(t *testing.T) {
	repo := &memoryLeadRepo{}
	h, _ := newHandler(repo)

	body := url.Values{"first_name": {" Chloé "}, "email": {"chloe@example.com"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Intake(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Chloé", repo.created[0]["first_name"])
}

func TestIntakeStoreFailure(t *testing.T) {
	repo := &memoryLeadRepo{fail: errors.New("connection refused")}
	h, views := newHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewBufferString(`{"firstName":"Alice","email":"alice@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Intake(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, lead.IntakeResult{Success: false, Error: "Impossible de créer le lead"}, decodeResult(t, w))
	require.Equal(t, uint64(0), views.Version("/admin/leads"))
}

func TestIntakeRejectsInvalidInput(t *testing.T) {
	bodies := []string{
		`{"firstName":"","email":"alice@example.com"}`,
		`{"firstName":"Alice","email":"not-an-email"}`,
		`{"firstName":"Alice"}`,
		`{"firstName":42,"email":"alice@example.com"}`,
		`not json`,
	}
	for _, b := range bodies {
		repo := &memoryLeadRepo{}
		h, _ := newHandler(repo)
		req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.Intake(w, req)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code, b)
		require.False(t, decodeResult(t, w).Success)
		require.Empty(t, repo.created, b)
	}
}

func TestListHonoursETag(t *testing.T) {
	repo := &memoryLeadRepo{}
	h, _ := newHandler(repo)
	_, err := lead.NewService(repo).Create(context.Background(), "Alice", "alice@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/admin/leads", nil))
	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)
	var body struct {
		Leads []entity.Lead `json:"leads"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Leads, 1)

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	req.Header.Set("If-None-Match", tag)
	w = httptest.NewRecorder()
	h.List(w, req)
	require.Equal(t, http.StatusNotModified, w.Code)
}

func TestListETagTracksWritesOutsideHandler(t *testing.T) {
	ctx := context.Background()
	repo := &memoryLeadRepo{}
	h, views := newHandler(repo)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/admin/leads", nil))
	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")

	// writes through the service, as the operator CLI does
	svc := lead.NewService(repo)
	l, err := svc.Create(ctx, "Alice", "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, uint64(0), views.Version("/admin/leads"))

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	req.Header.Set("If-None-Match", tag)
	w = httptest.NewRecorder()
	h.List(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	tag = w.Header().Get("ETag")

	_, err = svc.UpdateStatus(ctx, l.ID, entity.StatusContacted)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", tag)
	w = httptest.NewRecorder()
	h.List(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), string(entity.StatusContacted))

	// a restarted process with an empty registry does not honour a tag for other data
	restarted := lead.NewHandler(svc, revalidate.NewRegistry(), zap.NewNop().Sugar())
	req.Header.Set("If-None-Match", tag)
	w = httptest.NewRecorder()
	restarted.List(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestIntakeFallsBackToSnakeCaseFirstName(t *testing.T) {
	repo := &memoryLeadRepo{}
	h, _ := newHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"firstName":"  ","first_name":"Alice","email":"alice@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Intake(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Alice", repo.created[0]["first_name"])
}

func TestUpdateStatusEndpoint(t *testing.T) {
	repo := &memoryLeadRepo{}
	h, _ := newHandler(repo)
	l, err := lead.NewService(repo).Create(context.Background(), "Alice", "alice@example.com")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /admin/leads/{id}/status", h.UpdateStatus)

	cases := []struct {
		id, body string
		want     int
	}{
		{l.ID, `{"status":"qualified"}`, http.StatusOK},
		{"missing", `{"status":"qualified"}`, http.StatusNotFound},
		{l.ID, `{"status":"archived"}`, http.StatusUnprocessableEntity},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/admin/leads/"+c.id+"/status", strings.NewReader(c.body)))
		require.Equal(t, c.want, w.Code, c.body)
	}
	require.Equal(t, entity.StatusQualified, repo.leads[0].Status)
}
