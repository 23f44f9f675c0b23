package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parlevrai/internal/domain/lesson"
	"parlevrai/internal/domain/progress"
)

// LessonLookup resolves a lesson by ID.
type LessonLookup interface {
	GetByID(ctx context.Context, id string) (lesson.Lesson, error)
}

// ProgressStoreForComplete defines the store interface needed by CompleteLesson.
type ProgressStoreForComplete interface {
	Record(ctx context.Context, c progress.Completion) error
	ListByAccount(ctx context.Context, accountID string) ([]progress.Completion, error)
}

// CompleteLessonInput carries input for the orchestrator.
type CompleteLessonInput struct {
	AccountID string
	LessonID  string
}

// CompleteLessonDeps holds dependencies for CompleteLesson.
type CompleteLessonDeps struct {
	LessonStore   LessonLookup
	ProgressStore ProgressStoreForComplete
	Now           func() time.Time
}

// CompleteLessonResult reports the learner's stats after the completion.
// AlreadyCompleted is true when the lesson had been completed before.
type CompleteLessonResult struct {
	Stats            progress.Stats
	AlreadyCompleted bool
}

// ExecuteCompleteLesson records that the learner finished a lesson today.
// Completing the same lesson twice is not an error and credits nothing.
// PRE: AccountID is the authenticated learner
// POST: One completion per (account, lesson); stats recomputed
func ExecuteCompleteLesson(ctx context.Context, input CompleteLessonInput, deps CompleteLessonDeps) (CompleteLessonResult, error) {
	now := clock(deps.Now)
	if _, err := deps.LessonStore.GetByID(ctx, input.LessonID); err != nil {
		return CompleteLessonResult{}, err
	}

	c := progress.Completion{
		AccountID:   input.AccountID,
		LessonID:    input.LessonID,
		CompletedOn: now.Format(progress.DateLayout),
		CreatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return CompleteLessonResult{}, err
	}

	var result CompleteLessonResult
	if err := deps.ProgressStore.Record(ctx, c); err != nil {
		if !errors.Is(err, progress.ErrAlreadyCompleted) {
			return CompleteLessonResult{}, err
		}
		result.AlreadyCompleted = true
	}

	completions, err := deps.ProgressStore.ListByAccount(ctx, input.AccountID)
	if err != nil {
		return CompleteLessonResult{}, err
	}
	result.Stats = progress.ComputeStats(completions, now)

	slog.Info("lesson_completed",
		"account_id", input.AccountID,
		"lesson_id", input.LessonID,
		"already_completed", result.AlreadyCompleted,
		"current_streak", result.Stats.CurrentStreak,
	)
	return result, nil
}
