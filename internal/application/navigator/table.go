// Package navigator resolves request paths against a route table, applies the
// authentication and admin guards, and keeps its cached auth flags in step with
// the session store.
package navigator

import (
	"context"
	"sort"
)

// Page renders a full page. It is the single capability a route handler needs.
type Page interface {
	Render(ctx context.Context) error
}

// PageFunc adapts an ordinary function to the Page interface.
type PageFunc func(ctx context.Context) error

// Render calls f(ctx).
func (f PageFunc) Render(ctx context.Context) error {
	return f(ctx)
}

// Access holds the guard requirements of a route.
type Access struct {
	RequiresAuth  bool
	RequiresAdmin bool
}

// Common access levels.
var (
	Public        = Access{}
	Authenticated = Access{RequiresAuth: true}
	AdminOnly     = Access{RequiresAuth: true, RequiresAdmin: true}
)

// Route is a (path, page, access) tuple.
type Route struct {
	Path   string
	Page   Page
	Access Access
}

// Table is a registry of navigable paths keyed by exact path.
// INVARIANT: the fallback route is always present
type Table struct {
	routes   map[string]Route
	notFound string
}

// NewTable creates a table whose fallback route is registered under notFoundPath.
// PRE: notFoundPath is non-empty, page is non-nil
// POST: Lookup of any unregistered path returns the fallback route
func NewTable(notFoundPath string, page Page) *Table {
	t := &Table{
		routes:   make(map[string]Route),
		notFound: notFoundPath,
	}
	t.Register(notFoundPath, page, Public)
	return t
}

// Register adds or overwrites the route for path. The last registration wins.
// An admin requirement always carries an authentication requirement.
// PRE: page is non-nil
// POST: Lookup(path) returns the new route
func (t *Table) Register(path string, page Page, access Access) {
	if access.RequiresAdmin {
		access.RequiresAuth = true
	}
	t.routes[path] = Route{Path: path, Page: page, Access: access}
}

// Lookup returns the route registered under path, or the fallback route.
// Matching is exact: no parameters, no trailing-slash normalisation.
// INVARIANT: Table is not mutated
func (t *Table) Lookup(path string) Route {
	if r, ok := t.routes[path]; ok {
		return r
	}
	return t.routes[t.notFound]
}

// Has reports whether path has its own entry.
func (t *Table) Has(path string) bool {
	_, ok := t.routes[path]
	return ok
}

// NotFoundPath returns the path of the fallback route.
func (t *Table) NotFoundPath() string {
	return t.notFound
}

// Paths returns the registered paths in sorted order.
func (t *Table) Paths() []string {
	paths := make([]string, 0, len(t.routes))
	for p := range t.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
