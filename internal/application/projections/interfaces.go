package projections

import (
	"context"
	"time"

	lessonStore "parlevrai/internal/adapters/storage/lesson"
	"parlevrai/internal/domain/lesson"
	"parlevrai/internal/domain/progress"
)

// LessonLister lists lessons ordered by date.
type LessonLister interface {
	List(ctx context.Context, filter lessonStore.ListFilter) ([]lesson.Lesson, error)
}

// CompletionLister lists an account's completions.
type CompletionLister interface {
	ListByAccount(ctx context.Context, accountID string) ([]progress.Completion, error)
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
