package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"parlevrai/internal/adapters/http/middleware"
	"parlevrai/internal/application/orchestrators"
	accountDomain "parlevrai/internal/domain/account"
	progressDomain "parlevrai/internal/domain/progress"
	themeDomain "parlevrai/internal/domain/theme"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// templateFiles is the template source (set by NewMux).
var templateFiles fs.FS

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// wantsJSON reports whether the client asked for a JSON answer instead of a redirect.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") && !isHTMLRequest(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

// IsInternalLink reports whether href stays on this site and is therefore
// resolved by the navigator: a same-origin absolute path, not a
// protocol-relative URL, not a fragment, not another scheme.
func IsInternalLink(href string) bool {
	if !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") || strings.HasPrefix(href, "/\\") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// userErrors are the failures whose message is safe and useful to show in a form.
var userErrors = []error{
	orchestrators.ErrInvalidCredentials,
	orchestrators.ErrAccountLocked,
	orchestrators.ErrPendingConfirmation,
	orchestrators.ErrAccountDisabled,
	orchestrators.ErrEmailAlreadyExists,
	accountDomain.ErrEmptyEmail,
	accountDomain.ErrInvalidEmail,
	accountDomain.ErrEmailTooLong,
	accountDomain.ErrNameTooShort,
	accountDomain.ErrNameTooLong,
	accountDomain.ErrEmptyPassword,
	accountDomain.ErrPasswordTooShort,
	accountDomain.ErrPasswordTooLong,
	accountDomain.ErrTokenExpired,
	accountDomain.ErrTokenInvalid,
	accountDomain.ErrAlreadyConfirmed,
}

// userMessage returns the message to display for err. Unexpected errors are
// logged and replaced by a generic message.
func userMessage(err error) string {
	for _, known := range userErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	slog.Error("internal_error", "error", err.Error())
	return "une erreur est survenue, réessaie plus tard"
}

func currentTheme(r *http.Request) themeDomain.Theme {
	saved := ""
	if c, err := r.Cookie(themeDomain.CookieName); err == nil {
		saved = c.Value
	}
	return themeDomain.Resolve(saved, r.Header.Get("Sec-CH-Prefers-Color-Scheme"))
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// renderTemplate renders templateName inside layout.html with the given status.
// The header links come from the session carried by r.
func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	theme := currentTheme(r)

	funcMap := template.FuncMap{
		"isLoggedIn":     func() bool { return ok },
		"isAdmin":        func() bool { return ok && sess.IsAdmin() },
		"currentName":    func() string { return sess.Name },
		"currentPath":    func() string { return r.URL.Path },
		"csrfToken":      func() string { return csrf.Token(r) },
		"theme":          func() string { return string(theme) },
		"nextTheme":      func() string { return string(theme.Toggle()) },
		"renderMarkdown": renderMarkdown,
		"monthName":      progressDomain.MonthName,
		"add":            func(a, b int) int { return a + b },
		"blanks": func(n int) []int {
			s := make([]int, n)
			for i := range s {
				s[i] = i
			}
			return s
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFiles, "layout.html", "lesson_body.html", templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
