package web

import (
	"context"
	"crypto/rand"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"parlevrai/internal/adapters/email"
	"parlevrai/internal/adapters/http/middleware"
	"parlevrai/internal/adapters/storage"
	accountStore "parlevrai/internal/adapters/storage/account"
	lessonStore "parlevrai/internal/adapters/storage/lesson"
	progressStore "parlevrai/internal/adapters/storage/progress"
	visitStore "parlevrai/internal/adapters/storage/visit"
	"parlevrai/internal/application/navigator"
	"parlevrai/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore  accountStore.Store
	LessonStore   lessonStore.Store
	ProgressStore progressStore.Store
	VisitStore    visitStore.Store
}

// Options configures NewMux. Zero values are usable in development.
type Options struct {
	// Sessions defaults to an in-memory store.
	Sessions middleware.SessionStore
	// CSRFKey is generated per startup when empty.
	CSRFKey []byte
	// Secure marks cookies Secure and enforces TLS origin checks.
	Secure bool
	// TemplatesDir overrides the compiled-in templates when set.
	TemplatesDir       string
	RateLimitPerSecond int
	SlowRequest        time.Duration
	// RequireEmailConfirmation leaves new accounts pending until the link
	// sent to BaseURL + /auth/callback is followed.
	RequireEmailConfirmation bool
	BaseURL                  string
	// DBStats reports query counters on the admin page when set.
	DBStats func() storage.QueryStats
	// Ping backs the health check when set.
	Ping func(ctx context.Context) error
	// Geo locates tracked visits when set.
	Geo orchestrators.GeoLocator
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions middleware.SessionStore

// Global page table (set by NewMux)
var pages *navigator.Table

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender = email.NewNoopSender()

var signupConfig struct {
	RequireConfirmation bool
	BaseURL             string
}

var dbStats func() storage.QueryStats

var dbPing func(ctx context.Context) error

var geoLocator orchestrators.GeoLocator

// Rate limiter of the current mux (set by NewMux, stopped by Close)
var limiter *middleware.RateLimiter

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// newCSRFKey generates a per-startup key. Sessions survive a restart but
// pending forms do not.
func newCSRFKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate CSRF key: " + err.Error())
	}
	slog.Warn("csrf_key_generated", "hint", "set PARLEVRAI_CSRF_KEY to keep forms valid across restarts")
	return key
}

// configure installs the package state shared by NewMux and the tests.
func configure(s *Stores, opts Options) error {
	stores = s
	sessions = opts.Sessions
	if sessions == nil {
		sessions = middleware.NewMemorySessionStore()
	}
	signupConfig.RequireConfirmation = opts.RequireEmailConfirmation
	signupConfig.BaseURL = opts.BaseURL
	dbStats = opts.DBStats
	dbPing = opts.Ping
	geoLocator = opts.Geo
	middleware.SecureCookies = opts.Secure

	if opts.TemplatesDir != "" {
		templateFiles = os.DirFS(opts.TemplatesDir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return err
		}
		templateFiles = sub
	}
	pages = newPageTable()
	return nil
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, opts Options) (http.Handler, error) {
	if err := configure(s, opts); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	csrfKey := opts.CSRFKey
	if len(csrfKey) == 0 {
		csrfKey = newCSRFKey()
	}

	rate := opts.RateLimitPerSecond
	if rate <= 0 {
		rate = 10
	}
	if limiter != nil {
		limiter.Close()
	}
	limiter = middleware.NewRateLimiter(rate, time.Second)

	// Outermost first: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, opts.Secure, nil),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.SlowRequest),
	), nil
}

// Close stops the background work started by NewMux.
func Close() {
	if limiter != nil {
		limiter.Close()
	}
}

// registerRoutes binds every page, action and API endpoint. All page GETs go
// through the navigator; actions carry their own guards.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", handlePage)

	mux.HandleFunc("POST /login", handleLoginSubmit)
	mux.HandleFunc("POST /signup", handleSignupSubmit)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.HandleFunc("POST /theme", handleThemeToggle)
	mux.Handle("POST /lesson/complete", middleware.RequireAuth(http.HandlerFunc(handleCompleteLesson)))
	mux.Handle("POST /admin/lessons", middleware.RequireAdmin(http.HandlerFunc(handleSaveLesson)))
	mux.Handle("POST /admin/lessons/delete", middleware.RequireAdmin(http.HandlerFunc(handleDeleteLesson)))
	mux.Handle("POST /admin/accounts/status", middleware.RequireAdmin(http.HandlerFunc(handleAccountStatus)))

	mux.HandleFunc("GET /api/session", handleSessionAPI)
	mux.Handle("GET /api/stats", middleware.RequireAuth(http.HandlerFunc(handleStatsAPI)))
	mux.Handle("GET /api/calendar", middleware.RequireAuth(http.HandlerFunc(handleCalendarAPI)))
	mux.Handle("GET /api/lessons", middleware.RequireAdmin(http.HandlerFunc(handleLessonsAPI)))
	mux.HandleFunc("GET /healthz", handleHealth)
}
