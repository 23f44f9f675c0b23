package navigator

import "context"

// AuthListener receives session-store state changes. ctx is the context of the
// store operation that caused the change.
type AuthListener func(ctx context.Context, isAuthenticated, isAdmin bool)

// SessionSource is the part of the session store the navigator depends on.
type SessionSource interface {
	// OnAuthStateChange installs the single listener. A later call replaces it.
	OnAuthStateChange(fn AuthListener)
	// CheckSession attempts to restore an existing session. ok is false when
	// there is no session or it is no longer valid.
	CheckSession(ctx context.Context) (isAdmin bool, ok bool)
}

// Sync keeps one navigator's flags consistent with one session source.
// Only one listener is supported per source; binding twice replaces the first.
type Sync struct {
	nav    *Navigator
	source SessionSource

	notified      bool
	lastAuth      bool
	homeRedirects int
	lastRedirect  Outcome
}

// Bind installs the navigator's listener on source. The listener must exist
// before Start restores the session so no change fired during restore is lost.
// POST: source holds exactly one listener, owned by the returned Sync
func Bind(nav *Navigator, source SessionSource) *Sync {
	s := &Sync{nav: nav, source: source}
	source.OnAuthStateChange(s.onChange)
	return s
}

// Start restores any existing session, sets the flags from it, then resolves
// the current location. If the restore itself triggered a redirect home, that
// outcome is returned and nothing else is resolved.
func (s *Sync) Start(ctx context.Context) Outcome {
	if s.Restore(ctx) {
		return s.lastRedirect
	}
	return s.nav.Resolve(ctx)
}

// Restore sets the flags from the session source without resolving. It
// reports whether the restore triggered a redirect home. Action handlers use
// it in place of Start.
func (s *Sync) Restore(ctx context.Context) bool {
	before := s.homeRedirects
	isAdmin, ok := s.source.CheckSession(ctx)
	if ok {
		s.nav.SetAuth(true, isAdmin)
	} else {
		s.nav.SetAuth(false, false)
	}
	// A restore that fired nothing still sets the baseline, so a later
	// sign-out that repeats it is not a transition.
	if !s.notified {
		s.notified = true
		s.lastAuth = ok
	}
	return s.homeRedirects > before
}

// HomeRedirects returns how many redirects home the listener has triggered.
func (s *Sync) HomeRedirects() int {
	return s.homeRedirects
}

func (s *Sync) onChange(ctx context.Context, isAuthenticated, isAdmin bool) {
	wasAuth := s.lastAuth || !s.notified
	s.notified = true
	s.lastAuth = isAuthenticated

	s.nav.SetAuth(isAuthenticated, isAdmin)
	if isAuthenticated || !wasAuth {
		return
	}
	s.homeRedirects++
	s.lastRedirect = s.nav.RedirectToHome(ctx)
}
