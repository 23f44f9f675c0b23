package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"parlevrai/internal/domain/visit"

	"github.com/google/uuid"
)

// VisitStoreForTrack defines the store interface needed by TrackVisit.
type VisitStoreForTrack interface {
	Insert(ctx context.Context, v visit.Visit) error
	HasVisitor(ctx context.Context, visitorID string) (bool, error)
}

// GeoLocator resolves an IP address to an approximate location.
type GeoLocator interface {
	Locate(ctx context.Context, ip string) (visit.Geo, error)
}

// TrackVisitInput carries the request details of a home page view.
type TrackVisitInput struct {
	VisitorID string
	AccountID string
	Path      string
	Query     url.Values
	Referrer  string
	Language  string
	UserAgent string
	IPAddress string
}

// TrackVisitDeps holds dependencies for TrackVisit.
type TrackVisitDeps struct {
	VisitStore VisitStoreForTrack
	// Geo is optional; nil records visits without a location.
	Geo GeoLocator
	Now func() time.Time
	// Sleep waits between attempts; nil waits on a timer honouring ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ExecuteTrackVisit records a home page view. A visit is unique when no
// earlier visit carries the same visitor ID; a failed uniqueness check counts
// as unique. The insert is attempted up to visit.MaxAttempts times with a
// linear backoff.
// POST: Visit stored, or the last insert error returned
func ExecuteTrackVisit(ctx context.Context, input TrackVisitInput, deps TrackVisitDeps) (visit.Visit, error) {
	v := visit.Visit{
		ID:              uuid.New().String(),
		VisitorID:       input.VisitorID,
		AccountID:       input.AccountID,
		IsAuthenticated: input.AccountID != "",
		Path:            input.Path,
		Referrer:        input.Referrer,
		Language:        input.Language,
		UserAgent:       input.UserAgent,
		IPAddress:       input.IPAddress,
		UTM:             visit.ParseUTM(input.Query),
		VisitedAt:       clock(deps.Now),
	}
	if err := v.Validate(); err != nil {
		return visit.Visit{}, err
	}
	v.Classify()
	v.Geo = locate(ctx, deps.Geo, v.IPAddress)

	seen, err := deps.VisitStore.HasVisitor(ctx, v.VisitorID)
	if err != nil {
		slog.Warn("visit_uniqueness_check_failed", "visitor_id", v.VisitorID, "error", err)
	}
	v.IsUnique = err != nil || !seen

	sleep := deps.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= visit.MaxAttempts; attempt++ {
		if lastErr = deps.VisitStore.Insert(ctx, v); lastErr == nil {
			slog.Info("visit_tracked",
				"visitor_id", v.VisitorID,
				"unique", v.IsUnique,
				"authenticated", v.IsAuthenticated,
				"device", v.DeviceType,
				"attempt", attempt,
			)
			return v, nil
		}
		slog.Warn("visit_insert_failed", "attempt", attempt, "max_attempts", visit.MaxAttempts, "error", lastErr)
		if attempt < visit.MaxAttempts {
			if err := sleep(ctx, visit.Backoff(attempt)); err != nil {
				return visit.Visit{}, err
			}
		}
	}
	return visit.Visit{}, fmt.Errorf("track visit after %d attempts: %w", visit.MaxAttempts, lastErr)
}

// locate is best effort: a failed lookup leaves the location empty and the
// visit is still recorded.
func locate(ctx context.Context, geo GeoLocator, ip string) visit.Geo {
	if geo == nil || ip == "" {
		return visit.Geo{}
	}
	g, err := geo.Locate(ctx, ip)
	if err != nil {
		slog.Warn("visit_geo_lookup_failed", "error", err)
		return visit.Geo{}
	}
	return g
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
