package projections

import (
	"context"
	"errors"
	"time"

	accountStore "parlevrai/internal/adapters/storage/account"
	lessonStore "parlevrai/internal/adapters/storage/lesson"
	visitStore "parlevrai/internal/adapters/storage/visit"
	"parlevrai/internal/domain/account"
	"parlevrai/internal/domain/lesson"
	"parlevrai/internal/domain/progress"
)

type stubLessons struct {
	lessons []lesson.Lesson
	err     error
}

func (s stubLessons) List(_ context.Context, f lessonStore.ListFilter) ([]lesson.Lesson, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []lesson.Lesson
	for _, l := range s.lessons {
		if f.Level == "" || l.Level == f.Level {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubCompletions map[string][]progress.Completion

func (s stubCompletions) ListByAccount(_ context.Context, accountID string) ([]progress.Completion, error) {
	return s[accountID], nil
}

type stubAccounts []account.Account

func (s stubAccounts) List(context.Context, accountStore.ListFilter) ([]account.Account, error) {
	return s, nil
}

type stubVisits visitStore.Summary

func (s stubVisits) Summary(context.Context) (visitStore.Summary, error) {
	return visitStore.Summary(s), nil
}

var errStore = errors.New("store unavailable")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func completionsOn(accountID string, dates ...string) []progress.Completion {
	out := make([]progress.Completion, len(dates))
	for i, d := range dates {
		out[i] = progress.Completion{AccountID: accountID, LessonID: "l-" + d, CompletedOn: d}
	}
	return out
}
