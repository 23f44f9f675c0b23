package visit

import (
	"context"

	domain "parlevrai/internal/domain/visit"
)

// Store persists home page visits.
type Store interface {
	Insert(ctx context.Context, v domain.Visit) error
	HasVisitor(ctx context.Context, visitorID string) (bool, error)
	Summary(ctx context.Context) (Summary, error)
}

// Summary aggregates recorded visits for the admin page.
type Summary struct {
	Total         int
	Unique        int
	Authenticated int
	ByDevice      map[string]int
	// ByCountry omits visits without a location.
	ByCountry map[string]int
}
