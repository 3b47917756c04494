package access

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user"
)

// Dispatcher routes a caller landing on the portal root to their area.
type Dispatcher struct {
	sessions SessionResolver
	profiles Profiles
	logger   *zap.SugaredLogger
}

func NewDispatcher(sessions SessionResolver, profiles Profiles, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{sessions: sessions, profiles: profiles, logger: logger}
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := d.sessions.Resolve(r)
	if err != nil || sess == nil {
		redirect(w, r, LoginPath)
		return
	}
	role, err := d.profiles.GetRole(r.Context(), sess.Subject)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			redirect(w, r, LoginPath)
			return
		}
		// no role means no destination: 503, the client may retry
		d.logger.Errorw("role lookup failed", "subject", sess.Subject, "err", err)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "role lookup failed"})
		return
	}
	d.logger.Debugw("dispatch", "subject", sess.Subject, "role", role)
	redirect(w, r, Destination(role))
}
