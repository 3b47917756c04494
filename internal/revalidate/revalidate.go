// Package revalidate tracks when the data behind a view path changed so list
// endpoints can hand out ETags and clients know to refetch.
package revalidate

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// Registry keeps a version counter per path.
type Registry struct {
	mu       sync.Mutex
	versions map[string]uint64
}

func NewRegistry() *Registry {
	return &Registry{versions: make(map[string]uint64)}
}

// Revalidate marks the views under path as changed.
func (r *Registry) Revalidate(path string) {
	r.mu.Lock()
	r.versions[path]++
	r.mu.Unlock()
}

func (r *Registry) Version(path string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.versions[path]
}

// ETag is a weak validator for body served under path. The digest of body
// keeps the tag tied to the data, so writes this process never saw still
// change it.
func (r *Registry) ETag(path string, body []byte) string {
	sum := sha256.Sum256(body)
	return `W/"` + strings.Trim(path, "/") + "-" + strconv.FormatUint(r.Version(path), 10) +
		"-" + hex.EncodeToString(sum[:8]) + `"`
}

// WriteJSON encodes v, tags it and answers 304 when the request already holds
// the tag. Otherwise v is written with a 200.
func (r *Registry) WriteJSON(w http.ResponseWriter, req *http.Request, path string, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	tag := r.ETag(path, buf.Bytes())
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "private, no-cache")
	if req.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}
