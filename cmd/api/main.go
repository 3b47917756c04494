package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/access"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company"
	companyrepo "github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company/repo"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/config"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/document"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead"
	leadrepo "github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead/repo"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/revalidate"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/router"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/schema"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/session"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user"
	userrepo "github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/repo"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/utilities"
)

func main() {
	// best-effort: real env wins when no .env exists
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	cfg, err := config.FromEnv()
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}

	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("db config: %v", err)
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	gw := database.NewGateway(db)
	defer gw.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBAutoMigrate {
		if err := schema.Ensure(ctx, gw); err != nil {
			sugar.Fatalf("ensure schema: %v", err)
		}
		sugar.Info("schema ensured")
	}

	sessions, err := session.NewManager(session.Config{
		Secret: []byte(cfg.SessionSecret),
		Issuer: cfg.SessionIssuer,
		TTL:    cfg.SessionTTL,
		Secure: cfg.CookieSecure,
	})
	if err != nil {
		sugar.Fatalf("session manager: %v", err)
	}

	users := user.NewUserService(userrepo.NewUserRepo(gw), nil)
	leads := lead.NewService(leadrepo.NewLeadRepo(gw))
	companies := company.NewService(companyrepo.NewRepo(gw))
	if cfg.DocumentServiceURL == "" {
		sugar.Warn("DOCUMENT_SERVICE_URL is not set; statutes and signature requests will fail")
	}
	docs := document.NewClient(cfg.DocumentServiceURL, cfg.DocumentServiceToken, document.WithTimeout(cfg.DocumentTimeout))

	handler := router.RegisterRoutes(router.Deps{
		Logger:       sugar,
		Dispatcher:   access.NewDispatcher(sessions, users, sugar),
		Guard:        access.NewGuard(sessions, users, sugar),
		Sessions:     session.NewHandler(sessions, users, sugar),
		Users:        user.NewHandler(users, sugar),
		Leads:        lead.NewHandler(leads, revalidate.NewRegistry(), sugar),
		Companies:    company.NewHandler(companies, sugar),
		Documents:    document.NewHandler(docs, companies, sugar),
		LeadLimiter:  router.NewRateLimiter(cfg.LeadRatePerMinute),
		BookingURL:   cfg.BookingURL,
		SecureCookie: cfg.CookieSecure,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	sugar.Info("goodbye")
}
