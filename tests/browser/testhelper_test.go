package browser_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "parlevrai/internal/adapters/http"
	"parlevrai/internal/adapters/storage"
	accountStore "parlevrai/internal/adapters/storage/account"
	lessonStore "parlevrai/internal/adapters/storage/lesson"
	progressStore "parlevrai/internal/adapters/storage/progress"
	visitStore "parlevrai/internal/adapters/storage/visit"
	"parlevrai/internal/application/orchestrators"
	"parlevrai/internal/domain/account"
)

const (
	adminEmail   = "admin@test.fr"
	learnerEmail = "learner@test.fr"
	testPassword = "TestPass123!"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	Browser playwright.Browser
	Stores  *web.Stores
}

// skipUnlessBrowser skips unless PARLEVRAI_BROWSER_TESTS=1, since the suite
// needs the Playwright driver and a Chromium install.
func skipUnlessBrowser(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv("PARLEVRAI_BROWSER_TESTS") != "1" {
		t.Skip("set PARLEVRAI_BROWSER_TESTS=1 to run browser tests")
	}
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	acctStore := accountStore.NewSQLiteStore(db)
	lessStore := lessonStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore:  acctStore,
		LessonStore:   lessStore,
		ProgressStore: progressStore.NewSQLiteStore(db),
		VisitStore:    visitStore.NewSQLiteStore(db),
	}

	ctx := context.Background()
	deps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	for _, in := range []orchestrators.CreateAccountInput{
		{Email: adminEmail, Name: "Admin", Password: testPassword, Role: account.RoleAdmin},
		{Email: learnerEmail, Name: "Léa", Password: testPassword},
	} {
		if _, err := orchestrators.ExecuteCreateAccount(ctx, in, deps); err != nil {
			t.Fatalf("failed to create %s: %v", in.Email, err)
		}
	}
	if err := orchestrators.ExecuteSeedLessons(ctx, lessStore); err != nil {
		t.Fatalf("failed to seed lessons: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	baseURL := fmt.Sprintf("http://%s", listener.Addr().String())

	handler, err := web.NewMux(filepath.Join(findProjectRoot(t), "static"), stores, web.Options{
		CSRFKey:            []byte("0123456789abcdef0123456789abcdef"),
		RateLimitPerSecond: 1000,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("test server error: %v", err)
		}
	}()

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		web.WaitForVisits()
		web.Close()
		db.Close()
	})

	return &testApp{BaseURL: baseURL, Browser: browser, Stores: stores}
}

// newPage creates a new browser page in its own context, so cookies are not shared.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bc, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	t.Cleanup(func() { bc.Close() })
	page, err := bc.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	return page
}

// login signs in through the form and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page, email string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(testPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("main button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	a.waitFor(t, page, "/dashboard")
}

func (a *testApp) waitFor(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	if err := page.WaitForURL(a.BaseURL+path, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("page did not reach %s: %v", path, err)
	}
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
