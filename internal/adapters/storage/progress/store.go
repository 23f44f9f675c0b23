package progress

import (
	"context"

	domain "parlevrai/internal/domain/progress"
)

// Store persists lesson completions.
type Store interface {
	Record(ctx context.Context, c domain.Completion) error
	ListByAccount(ctx context.Context, accountID string) ([]domain.Completion, error)
	Count(ctx context.Context) (int, error)
}
