package navigator

import (
	"context"
	"log/slog"
)

// MaxRedirects bounds the guard redirects followed within one resolution.
// A table whose guards send each other in a circle renders the fallback page
// instead of looping.
const MaxRedirects = 8

// Default guard redirect targets.
const (
	DefaultLoginPath   = "/login"
	DefaultLandingPath = "/dashboard"
	DefaultHomePath    = "/"
)

// History is the navigation history the navigator reads and pushes to.
type History interface {
	// Location returns the path the history currently points at.
	Location() string
	// Push moves the history to path. It returns false when the push was handed
	// to the client, which will re-enter resolution itself (an HTTP redirect).
	Push(path string) bool
}

// Targets are the paths guards redirect to.
type Targets struct {
	Login   string
	Landing string
	Home    string
}

// DefaultTargets returns the conventional targets.
func DefaultTargets() Targets {
	return Targets{
		Login:   DefaultLoginPath,
		Landing: DefaultLandingPath,
		Home:    DefaultHomePath,
	}
}

func (t Targets) withDefaults() Targets {
	d := DefaultTargets()
	if t.Login == "" {
		t.Login = d.Login
	}
	if t.Landing == "" {
		t.Landing = d.Landing
	}
	if t.Home == "" {
		t.Home = d.Home
	}
	return t
}

// Flags are the cached authentication flags.
type Flags struct {
	Authenticated bool
	Admin         bool
}

// Decision is the result of applying the guards to a route.
// Redirect is empty when the route may render.
type Decision struct {
	Route    Route
	Redirect string
}

// Decide applies the guards to route in fixed order: authentication before admin,
// so an anonymous visitor is always sent to login rather than to the landing page.
// INVARIANT: pure; no argument is mutated
func Decide(route Route, flags Flags, targets Targets) Decision {
	targets = targets.withDefaults()
	needsAuth := route.Access.RequiresAuth || route.Access.RequiresAdmin
	if needsAuth && !flags.Authenticated {
		return Decision{Route: route, Redirect: targets.Login}
	}
	if route.Access.RequiresAdmin && !flags.Admin {
		return Decision{Route: route, Redirect: targets.Landing}
	}
	return Decision{Route: route}
}

// Outcome describes what one resolution did. Failures are data, never panics.
type Outcome struct {
	// Path is the location the history points at after resolution.
	Path string
	// Rendered is the table key of the rendered route (the fallback key for
	// unknown paths). Empty when nothing rendered.
	Rendered string
	// Redirects lists the guard redirect targets pushed, in order.
	Redirects []string
	// Yielded is true when a push was handed to the client.
	Yielded bool
	// Err is the error returned by the page, if any.
	Err error
}

// Navigator owns the current path and the two auth flags, and resolves the
// history location against the table.
type Navigator struct {
	table   *Table
	history History
	targets Targets

	currentPath   string
	authenticated bool
	admin         bool
	yielded       bool
}

// New creates a navigator with both flags false.
// PRE: table and history are non-nil
// POST: Navigator is ready; nothing has been resolved
func New(table *Table, history History, targets Targets) *Navigator {
	return &Navigator{
		table:   table,
		history: history,
		targets: targets.withDefaults(),
	}
}

// SetAuth overwrites both flags. It affects the next resolution only.
// isAdmin without isAuthenticated is stored as not admin.
func (n *Navigator) SetAuth(isAuthenticated, isAdmin bool) {
	n.authenticated = isAuthenticated
	n.admin = isAuthenticated && isAdmin
}

// Flags returns the current flags.
func (n *Navigator) Flags() Flags {
	return Flags{Authenticated: n.authenticated, Admin: n.admin}
}

// CurrentPath returns the path of the last rendered resolution, or "" if none.
func (n *Navigator) CurrentPath() string {
	return n.currentPath
}

// Targets returns the redirect targets in use.
func (n *Navigator) Targets() Targets {
	return n.targets
}

// Yielded reports whether a push was handed to the client.
func (n *Navigator) Yielded() bool {
	return n.yielded
}

// Navigate pushes path onto the history then resolves it.
// POST: Outcome describes the render or the hand-off
func (n *Navigator) Navigate(ctx context.Context, path string) Outcome {
	if n.yielded {
		return Outcome{Path: n.history.Location(), Yielded: true}
	}
	if !n.history.Push(path) {
		n.yielded = true
		return Outcome{Path: path, Yielded: true}
	}
	return n.Resolve(ctx)
}

// Pop resolves after the history pointer moved on its own (back/forward).
// Nothing is pushed.
func (n *Navigator) Pop(ctx context.Context) Outcome {
	return n.Resolve(ctx)
}

// RedirectToHome navigates to the home path.
func (n *Navigator) RedirectToHome(ctx context.Context) Outcome {
	return n.Navigate(ctx, n.targets.Home)
}

// Resolve looks up the current location and either renders its page exactly once
// or redirects when a guard fails. The redirect target is pushed so the visible
// location always matches what was rendered.
// POST: on render, CurrentPath equals the history location
func (n *Navigator) Resolve(ctx context.Context) Outcome {
	var out Outcome
	if n.yielded {
		out.Path = n.history.Location()
		out.Yielded = true
		return out
	}

	for hops := 0; ; hops++ {
		path := n.history.Location()
		route := n.table.Lookup(path)
		d := Decide(route, n.Flags(), n.targets)

		if d.Redirect == "" {
			return n.render(ctx, path, route, out)
		}

		if hops >= MaxRedirects {
			slog.Warn("redirect_loop", "path", path, "redirects", out.Redirects)
			return n.render(ctx, path, n.table.Lookup(n.table.NotFoundPath()), out)
		}

		out.Redirects = append(out.Redirects, d.Redirect)
		if !n.history.Push(d.Redirect) {
			n.yielded = true
			out.Path = d.Redirect
			out.Yielded = true
			return out
		}
	}
}

func (n *Navigator) render(ctx context.Context, path string, route Route, out Outcome) Outcome {
	n.currentPath = path
	out.Path = path
	out.Rendered = route.Path
	if err := route.Page.Render(ctx); err != nil {
		slog.Error("page_render_failed", "path", path, "route", route.Path, "error", err)
		out.Err = err
	}
	return out
}
