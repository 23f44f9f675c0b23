package web

import (
	"context"
	"net/http"

	"parlevrai/internal/adapters/http/middleware"
	"parlevrai/internal/application/navigator"
)

// Page paths.
const (
	pathHome      = "/"
	pathLogin     = "/login"
	pathSignup    = "/signup"
	pathCallback  = "/auth/callback"
	pathDashboard = "/dashboard"
	pathLesson    = "/lesson"
	pathCalendar  = "/calendar"
	pathStats     = "/stats"
	pathAdmin     = "/admin"
	pathNotFound  = "/404"
)

// httpHistory maps history pushes onto the HTTP exchange. Every push becomes
// a 303 See Other: the browser records the entry and re-enters resolution
// with a new request, so nothing resolves in-process.
type httpHistory struct {
	w        http.ResponseWriter
	r        *http.Request
	location string
}

// Location returns the request path, or the last pushed target.
func (h *httpHistory) Location() string {
	return h.location
}

// Push redirects the client to path.
func (h *httpHistory) Push(path string) bool {
	http.Redirect(h.w, h.r, path, http.StatusSeeOther)
	h.location = path
	return false
}

// exchange is what a page needs from the request being served.
type exchange struct {
	w      http.ResponseWriter
	r      *http.Request
	nav    *navigator.Navigator
	client *sessionClient
	status int
}

type exchangeKey struct{}

func withExchange(ctx context.Context, ex *exchange) context.Context {
	return context.WithValue(ctx, exchangeKey{}, ex)
}

func exchangeFrom(ctx context.Context) *exchange {
	ex, _ := ctx.Value(exchangeKey{}).(*exchange)
	return ex
}

// request returns the request with the session as last seen by the client,
// so templates reflect role or name changes picked up by CheckSession.
func (ex *exchange) request() *http.Request {
	if sess, ok := ex.client.current(); ok {
		return ex.r.WithContext(middleware.ContextWithSession(ex.r.Context(), sess))
	}
	return ex.r
}

func (ex *exchange) render(templateName string, data any) {
	renderTemplate(ex.w, ex.request(), ex.status, templateName, data)
}

// newNavigator builds the navigator for one request and binds it to the
// caller's session. The listener is installed before anything is restored.
func newNavigator(w http.ResponseWriter, r *http.Request) (*exchange, *navigator.Sync) {
	hist := &httpHistory{w: w, r: r, location: r.URL.Path}
	nav := navigator.New(pages, hist, navigator.DefaultTargets())
	client := newSessionClient(w, r)
	sync := navigator.Bind(nav, client)
	return &exchange{w: w, r: r, nav: nav, client: client, status: http.StatusOK}, sync
}

// handlePage serves every page GET by resolving the request path against
// the page table.
func handlePage(w http.ResponseWriter, r *http.Request) {
	ex, sync := newNavigator(w, r)
	ctx := withExchange(r.Context(), ex)

	out := sync.Start(ctx)
	if out.Err != nil {
		internalError(w, out.Err)
	}
}

// newPageTable registers the pages and their guards.
func newPageTable() *navigator.Table {
	t := navigator.NewTable(pathNotFound, navigator.PageFunc(notFoundPage))
	t.Register(pathHome, navigator.PageFunc(homePage), navigator.Public)
	t.Register(pathLogin, navigator.PageFunc(loginPage), navigator.Public)
	t.Register(pathSignup, navigator.PageFunc(signupPage), navigator.Public)
	t.Register(pathCallback, navigator.PageFunc(authCallbackPage), navigator.Public)
	t.Register(pathDashboard, navigator.PageFunc(dashboardPage), navigator.Authenticated)
	t.Register(pathLesson, navigator.PageFunc(lessonPage), navigator.Authenticated)
	t.Register(pathCalendar, navigator.PageFunc(calendarPage), navigator.Authenticated)
	t.Register(pathStats, navigator.PageFunc(statsPage), navigator.Authenticated)
	t.Register(pathAdmin, navigator.PageFunc(adminPage), navigator.AdminOnly)
	return t
}
