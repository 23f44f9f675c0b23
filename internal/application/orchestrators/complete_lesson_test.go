package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"parlevrai/internal/domain/lesson"
	"parlevrai/internal/domain/progress"
)

func TestExecuteCompleteLesson(t *testing.T) {
	now := time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC)
	lessons := newMemLessonStore(lesson.Lesson{ID: "l1"}, lesson.Lesson{ID: "l2"})
	prog := &memProgressStore{completions: []progress.Completion{
		{AccountID: "a1", LessonID: "l0", CompletedOn: "2026-01-30"},
	}}
	deps := CompleteLessonDeps{LessonStore: lessons, ProgressStore: prog, Now: fixedClock(now)}
	ctx := context.Background()

	res, err := ExecuteCompleteLesson(ctx, CompleteLessonInput{AccountID: "a1", LessonID: "l1"}, deps)
	if err != nil {
		t.Fatalf("ExecuteCompleteLesson: %v", err)
	}
	if res.AlreadyCompleted {
		t.Error("first completion flagged as repeat")
	}
	want := progress.Stats{CompletedCount: 2, CurrentStreak: 2, LongestStreak: 2, TotalMinutes: 30, TotalHours: 0}
	if res.Stats != want {
		t.Errorf("Stats = %+v, want %+v", res.Stats, want)
	}
	if prog.completions[1].CompletedOn != "2026-01-31" {
		t.Errorf("CompletedOn = %q", prog.completions[1].CompletedOn)
	}

	res, err = ExecuteCompleteLesson(ctx, CompleteLessonInput{AccountID: "a1", LessonID: "l1"}, deps)
	if err != nil {
		t.Fatalf("repeat ExecuteCompleteLesson: %v", err)
	}
	if !res.AlreadyCompleted || res.Stats.CompletedCount != 2 {
		t.Errorf("repeat result = %+v", res)
	}
}

func TestExecuteCompleteLesson_Errors(t *testing.T) {
	lessons := newMemLessonStore(lesson.Lesson{ID: "l1"})
	deps := CompleteLessonDeps{LessonStore: lessons, ProgressStore: &memProgressStore{}}

	if _, err := ExecuteCompleteLesson(context.Background(), CompleteLessonInput{AccountID: "a1", LessonID: "nope"}, deps); !errors.Is(err, lesson.ErrNotFound) {
		t.Errorf("unknown lesson error = %v, want ErrNotFound", err)
	}
	if _, err := ExecuteCompleteLesson(context.Background(), CompleteLessonInput{LessonID: "l1"}, deps); !errors.Is(err, progress.ErrEmptyAccountID) {
		t.Errorf("missing account error = %v, want ErrEmptyAccountID", err)
	}
}
