// Package access decides where a caller may go: the dispatcher sends a
// signed-in user to their area and the guard protects each area. Both use
// Authorize, the only role check in the service.
package access

import (
	"context"
	"errors"
	"net/http"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/session"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/entity"
)

const (
	LoginPath   = "/login"
	AdminPath   = "/admin"
	DefaultPath = "/dashboard"
)

// AnyRole makes Authorize accept every member of the closed role set.
const AnyRole entity.Role = "*"

var (
	ErrNoProfile = errors.New("no profile")
	ErrForbidden = errors.New("role not allowed")
)

// SessionResolver resolves the caller's session from a request.
type SessionResolver interface {
	Resolve(r *http.Request) (*session.Session, error)
}

// Profiles looks up profile data by session subject.
type Profiles interface {
	GetRole(ctx context.Context, subject string) (entity.Role, error)
	GetProfile(ctx context.Context, subject string) (*entity.Profile, error)
}

// Authorize reports whether p may enter a section reserved to expected.
func Authorize(p *entity.Profile, expected entity.Role) error {
	if p == nil {
		return ErrNoProfile
	}
	if !p.Role.Valid() || p.Disabled() {
		return ErrForbidden
	}
	if expected != AnyRole && p.Role != expected {
		return ErrForbidden
	}
	return nil
}

// Destination is where the dispatcher sends a role: admins to the admin
// area, every other value (unknown ones included) to the default area.
func Destination(r entity.Role) string {
	if r == entity.RoleAdmin {
		return AdminPath
	}
	return DefaultPath
}

// Sidebar carries the display fields rendered next to a guarded section.
type Sidebar struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
}

type ctxKey int

const profileKey ctxKey = iota

// WithProfile attaches an admitted profile to ctx.
func WithProfile(ctx context.Context, p *entity.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

// ProfileFromContext returns the profile admitted by the guard.
func ProfileFromContext(ctx context.Context) (*entity.Profile, bool) {
	p, ok := ctx.Value(profileKey).(*entity.Profile)
	return p, ok && p != nil
}

// SidebarFromContext derives the sidebar of the admitted profile.
func SidebarFromContext(ctx context.Context) (Sidebar, bool) {
	p, ok := ProfileFromContext(ctx)
	if !ok {
		return Sidebar{}, false
	}
	return Sidebar{Name: p.DisplayName(), Email: p.Email, Role: p.Role}, true
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, to, http.StatusSeeOther)
}
