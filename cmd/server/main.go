package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "parlevrai/internal/adapters/email"
	"parlevrai/internal/adapters/geo"
	web "parlevrai/internal/adapters/http"
	"parlevrai/internal/adapters/http/middleware"
	"parlevrai/internal/adapters/storage"
	accountStore "parlevrai/internal/adapters/storage/account"
	lessonStore "parlevrai/internal/adapters/storage/lesson"
	progressStore "parlevrai/internal/adapters/storage/progress"
	visitStore "parlevrai/internal/adapters/storage/visit"
	"parlevrai/internal/application/orchestrators"
	"parlevrai/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	config.InitLogger(cfg.Level())

	// WAL mode, foreign keys and busy timeout on every pooled connection
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	timedDB := storage.NewTimedDB(db, cfg.SlowQuery())

	acctStore := accountStore.NewSQLiteStore(timedDB)
	lessStore := lessonStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:  acctStore,
		LessonStore:   lessStore,
		ProgressStore: progressStore.NewSQLiteStore(timedDB),
		VisitStore:    visitStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if err := orchestrators.ExecuteSeedLessons(ctx, lessStore); err != nil {
		log.Fatalf("failed to seed lessons: %v", err)
	}

	if cfg.Email.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From))
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender())
		if cfg.IsProduction() && cfg.Email.RequireConfirmation {
			slog.Warn("email_sender_configured", "provider", "noop", "hint", "confirmation emails are not delivered; set PARLEVRAI_RESEND_KEY")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	var sessions middleware.SessionStore = middleware.NewMemorySessionStore()
	if cfg.Redis.Addr != "" {
		client, err := middleware.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer client.Close()
		sessions = middleware.NewRedisSessionStore(client, middleware.SessionTTL)
		slog.Info("session_store_configured", "backend", "redis", "addr", cfg.Redis.Addr)
	}

	var geoLocator orchestrators.GeoLocator
	if cfg.Geo.LookupURL != "" {
		geoLocator = geo.NewIPAPIClient(cfg.Geo.LookupURL, cfg.Geo.Timeout())
		slog.Info("geo_lookup_configured", "url", cfg.Geo.LookupURL)
	}

	var csrfKey []byte
	if cfg.CSRFKey != "" {
		csrfKey = []byte(cfg.CSRFKey)
	}

	handler, err := web.NewMux(cfg.StaticDir, stores, web.Options{
		Sessions:                 sessions,
		CSRFKey:                  csrfKey,
		Secure:                   cfg.IsProduction(),
		TemplatesDir:             cfg.TemplatesDir,
		RateLimitPerSecond:       cfg.RateLimitPerSecond,
		SlowRequest:              cfg.SlowRequest(),
		RequireEmailConfirmation: cfg.Email.RequireConfirmation,
		BaseURL:                  cfg.Email.BaseURL,
		DBStats:                  timedDB.Stats,
		Ping:                     timedDB.Ping,
		Geo:                      geoLocator,
	})
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
	web.WaitForVisits()
	web.Close()
	slog.Info("server_stopped")
}
