package session_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/session"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func newManager(t *testing.T, now time.Time) *session.Manager {
	t.Helper()
	m, err := session.NewManager(session.Config{Secret: secret, Issuer: "portal", TTL: time.Hour},
		session.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return m
}

func TestIssueAndResolveFromCookie(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newManager(t, now)

	token, exp, err := m.Issue("subj-1")
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), exp)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
	s, err := m.Resolve(r)
	require.NoError(t, err)
	require.Equal(t, "subj-1", s.Subject)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	s, err = m.Resolve(r)
	require.NoError(t, err)
	require.Equal(t, "subj-1", s.Subject)
}

func TestResolveRejectsMissingExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newManager(t, now)

	_, err := m.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, session.ErrNoSession)

	token, _, err := m.Issue("subj-1")
	require.NoError(t, err)
	later := newManager(t, now.Add(2*time.Hour))
	_, err = later.Parse(token)
	require.ErrorIs(t, err, session.ErrNoSession)

	other, err := session.NewManager(session.Config{Secret: []byte(strings.Repeat("x", 32)), Issuer: "portal"})
	require.NoError(t, err)
	_, err = other.Parse(token)
	require.ErrorIs(t, err, session.ErrNoSession)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "subj-1", Issuer: "portal",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(unsigned)
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestNewManagerRequiresLongSecret(t *testing.T) {
	_, err := session.NewManager(session.Config{Secret: []byte("short")})
	require.Error(t, err)
}

type stubAuth struct {
	subject string
	err     error
}

func (s stubAuth) AuthenticatePassword(ctx context.Context, email, password string) (string, error) {
	return s.subject, s.err
}

func TestLoginSetsCookie(t *testing.T) {
	m := newManager(t, time.Now())
	h := session.NewHandler(m, stubAuth{subject: "subj-9"}, zap.NewNop().Sugar())

	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"identifier":"a@b.c","password":"pw"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	res := w.Result()
	require.Len(t, res.Cookies(), 1)
	s, err := m.Parse(res.Cookies()[0].Value)
	require.NoError(t, err)
	require.Equal(t, "subj-9", s.Subject)
}

func TestLoginFailureStatuses(t *testing.T) {
	m := newManager(t, time.Now())
	cases := map[error]int{
		user.ErrBadCredentials: http.StatusUnauthorized,
		user.ErrDisabled:       http.StatusForbidden,
		context.Canceled:       http.StatusInternalServerError,
	}
	for err, want := range cases {
		h := session.NewHandler(m, stubAuth{err: err}, zap.NewNop().Sugar())
		w := httptest.NewRecorder()
		h.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"identifier":"a@b.c","password":"pw"}`)))
		require.Equal(t, want, w.Code, err.Error())
		require.Empty(t, w.Result().Cookies())
	}
}
