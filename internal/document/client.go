// Package document wraps the external services that export statutes as PDF
// and start e-signature procedures. Each call is a single request: no retry
// and no idempotency key.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidResponse is returned when a 2xx answer lacks a usable artifact.
var ErrInvalidResponse = errors.New("invalid document service response")

// Error is a non-2xx answer of the document service.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("document service error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

// Artifact is a downloadable file produced by the service.
type Artifact struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// SignatureRequest starts an e-signature procedure for a company file.
type SignatureRequest struct {
	CompanyID   string `json:"company_id"`
	SignerEmail string `json:"signer_email"`
	SignerName  string `json:"signer_name"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GenerateStatutes renders the statutes PDF of a company.
func (c *Client) GenerateStatutes(ctx context.Context, companyID string) (*Artifact, error) {
	if companyID == "" {
		return nil, errors.New("company id is required")
	}
	return c.post(ctx, "/statutes", map[string]string{"company_id": companyID})
}

// RequestSignature sends the company documents for e-signature.
func (c *Client) RequestSignature(ctx context.Context, req SignatureRequest) (*Artifact, error) {
	if req.CompanyID == "" || req.SignerEmail == "" {
		return nil, errors.New("company id and signer email are required")
	}
	return c.post(ctx, "/signatures", req)
}

func (c *Client) post(ctx context.Context, p string, body any) (*Artifact, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+p, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, respBody)
	}
	return decodeArtifact(respBody)
}

func decodeArtifact(body []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	u, err := url.Parse(a.URL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: bad url %q", ErrInvalidResponse, a.URL)
	}
	if a.Filename == "" || path.Base(a.Filename) != a.Filename || strings.ContainsAny(a.Filename, `\/`) {
		return nil, fmt.Errorf("%w: bad filename %q", ErrInvalidResponse, a.Filename)
	}
	return &a, nil
}

func parseError(status int, body []byte) error {
	e := &Error{StatusCode: status, Message: http.StatusText(status)}
	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &env) != nil {
		return e
	}
	if env.Message != "" {
		e.Message = env.Message
	}
	var nested struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if len(env.Error) > 0 && json.Unmarshal(env.Error, &nested) == nil {
		e.Code = nested.Code
		if nested.Message != "" {
			e.Message = nested.Message
		}
	} else if len(env.Error) > 0 {
		var s string
		if json.Unmarshal(env.Error, &s) == nil && s != "" {
			e.Message = s
		}
	}
	return e
}
