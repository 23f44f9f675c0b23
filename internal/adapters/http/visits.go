package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"parlevrai/internal/adapters/http/middleware"
	"parlevrai/internal/application/orchestrators"
)

const (
	visitorCookieName   = "parlevrai_visitor"
	visitorCookieMaxAge = 365 * 24 * time.Hour
	trackVisitTimeout   = 10 * time.Second
)

// pendingVisits counts visits still being written, so shutdown and tests can wait.
var pendingVisits sync.WaitGroup

// WaitForVisits blocks until every tracked visit has been written or given up.
func WaitForVisits() {
	pendingVisits.Wait()
}

// visitorID returns the anonymous visitor identifier, issuing the cookie on
// the first visit.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(visitorCookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// trackHomeVisit records the home page view in the background. The page
// never waits for it and a failure is only logged.
func trackHomeVisit(ex *exchange) {
	if stores == nil || stores.VisitStore == nil {
		return
	}
	r := ex.r
	input := orchestrators.TrackVisitInput{
		VisitorID: visitorID(ex.w, r),
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Referrer:  r.Referer(),
		Language:  r.Header.Get("Accept-Language"),
		UserAgent: r.UserAgent(),
		IPAddress: middleware.ClientIP(r),
	}
	if sess, ok := ex.client.current(); ok {
		input.AccountID = sess.AccountID
	}
	deps := orchestrators.TrackVisitDeps{VisitStore: stores.VisitStore, Geo: geoLocator, Now: timeNow}
	ctx := context.WithoutCancel(r.Context())

	pendingVisits.Add(1)
	go func() {
		defer pendingVisits.Done()
		ctx, cancel := context.WithTimeout(ctx, trackVisitTimeout)
		defer cancel()
		if _, err := orchestrators.ExecuteTrackVisit(ctx, input, deps); err != nil {
			slog.Error("visit_tracking_failed", "visitor_id", input.VisitorID, "error", err)
		}
	}()
}
