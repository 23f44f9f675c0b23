package projections

import (
	"context"
	"time"

	lessonStore "parlevrai/internal/adapters/storage/lesson"
	"parlevrai/internal/domain/lesson"
	"parlevrai/internal/domain/progress"
)

// GetLessonOfTheDayQuery carries input for the lesson of the day projection.
type GetLessonOfTheDayQuery struct {
	AccountID string
}

// GetLessonOfTheDayDeps holds dependencies for the lesson of the day projection.
type GetLessonOfTheDayDeps struct {
	LessonStore   LessonLister
	ProgressStore CompletionLister
	Now           func() time.Time
}

// LessonOfTheDayResult carries the lesson to practise today.
// Found is false only when no lesson exists at all. Scheduled is false when
// nothing is dated today and the first lesson is offered instead.
type LessonOfTheDayResult struct {
	Lesson    lesson.Lesson
	Found     bool
	Scheduled bool
	Completed bool
}

// QueryGetLessonOfTheDay picks the lesson dated today, falling back to the
// earliest lesson, and reports whether the account already completed it.
// PRE: AccountID identifies an authenticated learner
// POST: Completed is only true when Found is true
func QueryGetLessonOfTheDay(ctx context.Context, query GetLessonOfTheDayQuery, deps GetLessonOfTheDayDeps) (LessonOfTheDayResult, error) {
	now := clock(deps.Now)
	lessons, err := deps.LessonStore.List(ctx, lessonStore.ListFilter{})
	if err != nil {
		return LessonOfTheDayResult{}, err
	}
	l, ok := lesson.PickForDay(lessons, now)
	if !ok {
		return LessonOfTheDayResult{}, nil
	}

	completions, err := deps.ProgressStore.ListByAccount(ctx, query.AccountID)
	if err != nil {
		return LessonOfTheDayResult{}, err
	}
	return LessonOfTheDayResult{
		Lesson:    l,
		Found:     true,
		Scheduled: l.ScheduledOn(now),
		Completed: progress.IsCompleted(completions, l.ID),
	}, nil
}
