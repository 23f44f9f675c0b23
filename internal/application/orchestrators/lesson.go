package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"parlevrai/internal/domain/lesson"

	"github.com/google/uuid"
)

// LessonStoreForSave defines the store interface needed by SaveLesson and DeleteLesson.
type LessonStoreForSave interface {
	GetByID(ctx context.Context, id string) (lesson.Lesson, error)
	Save(ctx context.Context, l lesson.Lesson) error
	Delete(ctx context.Context, id string) error
}

// SaveLessonInput carries the admin form. List fields hold one entry per
// line; vocabulary lines are "word | translation".
type SaveLessonInput struct {
	ID                  string
	Level               string
	Theme               string
	Date                string
	Reading             string
	GrammarTitle        string
	GrammarExplanation  string
	GrammarExamples     string
	Vocabulary          string
	ExerciseInstruction string
	ExerciseTemplate    string
	ExerciseTips        string
	AIPrompt            string
}

// SaveLessonDeps holds dependencies for SaveLesson.
type SaveLessonDeps struct {
	LessonStore LessonStoreForSave
	Now         func() time.Time
}

// ExecuteSaveLesson creates a lesson, or updates it when input.ID is set.
// PRE: caller is an admin
// POST: Lesson validated and persisted; returns the stored lesson
func ExecuteSaveLesson(ctx context.Context, input SaveLessonInput, deps SaveLessonDeps) (lesson.Lesson, error) {
	l := lesson.Lesson{
		ID:      strings.TrimSpace(input.ID),
		Level:   input.Level,
		Theme:   strings.TrimSpace(input.Theme),
		Date:    strings.TrimSpace(input.Date),
		Reading: strings.TrimSpace(input.Reading),
		Grammar: lesson.Grammar{
			Title:       strings.TrimSpace(input.GrammarTitle),
			Explanation: strings.TrimSpace(input.GrammarExplanation),
			Examples:    lesson.ParseLines(input.GrammarExamples),
		},
		Vocabulary: lesson.ParseVocabulary(input.Vocabulary),
		Exercise: lesson.Exercise{
			Instruction: strings.TrimSpace(input.ExerciseInstruction),
			Template:    strings.TrimSpace(input.ExerciseTemplate),
			Tips:        lesson.ParseLines(input.ExerciseTips),
		},
		AIPrompt: strings.TrimSpace(input.AIPrompt),
	}

	if l.ID == "" {
		l.ID = uuid.New().String()
		l.CreatedAt = clock(deps.Now)
	} else {
		existing, err := deps.LessonStore.GetByID(ctx, l.ID)
		if err != nil {
			return lesson.Lesson{}, err
		}
		l.CreatedAt = existing.CreatedAt
	}

	if err := l.Validate(); err != nil {
		return lesson.Lesson{}, err
	}
	if err := deps.LessonStore.Save(ctx, l); err != nil {
		return lesson.Lesson{}, err
	}
	slog.Info("lesson_saved", "lesson_id", l.ID, "date", l.Date)
	return l, nil
}

// ExecuteDeleteLesson removes a lesson. Completions already recorded are kept.
// PRE: caller is an admin
// POST: Lesson no longer exists
func ExecuteDeleteLesson(ctx context.Context, id string, deps SaveLessonDeps) error {
	if id == "" {
		return lesson.ErrNotFound
	}
	if _, err := deps.LessonStore.GetByID(ctx, id); err != nil {
		if errors.Is(err, lesson.ErrNotFound) {
			return lesson.ErrNotFound
		}
		return err
	}
	if err := deps.LessonStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("lesson_deleted", "lesson_id", id)
	return nil
}
