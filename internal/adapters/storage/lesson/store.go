package lesson

import (
	"context"

	domain "parlevrai/internal/domain/lesson"
)

// Store persists Lesson state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Lesson, error)
	Save(ctx context.Context, value domain.Lesson) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Lesson, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// From and To are inclusive YYYY-MM-DD bounds.
type ListFilter struct {
	Level string
	From  string
	To    string
}
