package router

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/access"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/document"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/session"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/entity"
)

// Deps are the handlers mounted by RegisterRoutes.
type Deps struct {
	Logger       *zap.SugaredLogger
	Dispatcher   http.Handler
	Guard        *access.Guard
	Sessions     *session.Handler
	Users        *user.Handler
	Leads        *lead.Handler
	Companies    *company.Handler
	Documents    *document.Handler
	LeadLimiter  *RateLimiter
	BookingURL   string
	SecureCookie bool
}

// RegisterRoutes mounts the portal on a standard library ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()
	g := d.Guard

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// public
	mux.Handle("GET /{$}", d.Dispatcher)
	mux.HandleFunc("GET /login", d.Sessions.LoginPage)
	mux.HandleFunc("POST /auth/login", d.Sessions.Login)
	mux.HandleFunc("POST /auth/logout", d.Sessions.Logout)
	mux.Handle("POST /leads", d.LeadLimiter.Middleware(http.HandlerFunc(d.Leads.Intake)))
	mux.HandleFunc("GET /booking", booking(d.BookingURL))

	// admin
	mux.Handle("GET /admin", g.RequireFunc(entity.RoleAdmin, section("admin")))
	mux.Handle("GET /admin/leads", g.RequireFunc(entity.RoleAdmin, d.Leads.List))
	mux.Handle("PATCH /admin/leads/{id}/status", g.RequireFunc(entity.RoleAdmin, d.Leads.UpdateStatus))
	mux.Handle("GET /admin/users", g.RequireFunc(entity.RoleAdmin, d.Users.List))
	mux.Handle("POST /admin/users", g.RequireFunc(entity.RoleAdmin, d.Users.Create))
	mux.Handle("POST /admin/users/{id}/disable", g.RequireFunc(entity.RoleAdmin, d.Users.Disable))

	// head of sales
	mux.Handle("GET /hos", g.RequireFunc(entity.RoleHOS, section("hos")))
	mux.Handle("GET /hos/leads", g.RequireFunc(entity.RoleHOS, d.Leads.List))

	// client
	mux.Handle("GET /client", g.RequireFunc(entity.RoleClient, section("client")))
	mux.Handle("GET /client/company", g.RequireFunc(entity.RoleClient, d.Companies.Mine))
	mux.Handle("PUT /client/company", g.RequireFunc(entity.RoleClient, d.Companies.Save))
	mux.Handle("POST /client/company/submit", g.RequireFunc(entity.RoleClient, d.Companies.Submit))
	mux.Handle("POST /client/company/statutes", g.RequireFunc(entity.RoleClient, d.Documents.Statutes))
	mux.Handle("POST /client/company/signature", g.RequireFunc(entity.RoleClient, d.Documents.Signature))

	// expert
	mux.Handle("GET /expert", g.RequireFunc(entity.RoleExpert, section("expert")))
	mux.Handle("GET /expert/companies", g.RequireFunc(entity.RoleExpert, d.Companies.List))
	mux.Handle("POST /expert/companies/{userID}/review", g.RequireFunc(entity.RoleExpert, d.Companies.Review))
	mux.Handle("POST /expert/companies/{userID}/complete", g.RequireFunc(entity.RoleExpert, d.Companies.Complete))

	mux.Handle("GET /dashboard", g.RequireFunc(access.AnyRole, section("dashboard")))

	return LoggingMiddleware(d.Logger)(SecurityHeadersMiddleware(d.SecureCookie)(mux))
}

// section renders the landing payload of a guarded area.
func section(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sidebar, _ := access.SidebarFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{"section": name, "sidebar": sidebar})
	}
}

func booking(url string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if url == "" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "booking unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
