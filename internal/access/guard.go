package access

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/entity"
)

// Guard protects a section before anything in it is rendered.
type Guard struct {
	sessions SessionResolver
	profiles Profiles
	logger   *zap.SugaredLogger
}

func NewGuard(sessions SessionResolver, profiles Profiles, logger *zap.SugaredLogger) *Guard {
	return &Guard{sessions: sessions, profiles: profiles, logger: logger}
}

// Require wraps next so it only runs for a session whose profile passes
// Authorize(profile, expected). Any failed check redirects to the login page.
func (g *Guard) Require(expected entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := g.sessions.Resolve(r)
			if err != nil || sess == nil {
				redirect(w, r, LoginPath)
				return
			}
			p, err := g.profiles.GetProfile(r.Context(), sess.Subject)
			if err != nil {
				g.logger.Debugw("guard profile lookup", "subject", sess.Subject, "err", err)
				redirect(w, r, LoginPath)
				return
			}
			if err := Authorize(p, expected); err != nil {
				g.logger.Debugw("guard denied", "subject", sess.Subject, "role", p.Role, "expected", expected)
				redirect(w, r, LoginPath)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), p)))
		})
	}
}

// RequireFunc is Require for a plain handler function.
func (g *Guard) RequireFunc(expected entity.Role, fn http.HandlerFunc) http.Handler {
	return g.Require(expected)(fn)
}
