package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"parlevrai/internal/domain/lesson"
)

func validLessonInput() SaveLessonInput {
	return SaveLessonInput{
		Level:               lesson.LevelBeginner,
		Theme:               "  Au café ",
		Date:                "2026-02-01",
		Reading:             "Je prends un café crème.",
		GrammarTitle:        "Le partitif",
		GrammarExplanation:  "du, de la, des",
		GrammarExamples:     "Je bois du café\r\n\n Je mange de la tarte ",
		Vocabulary:          "le café | coffee\nl'addition|the bill",
		ExerciseInstruction: "Commandez une boisson",
		ExerciseTips:        "Souriez\nParlez lentement",
	}
}

func TestExecuteSaveLesson_Create(t *testing.T) {
	now := time.Date(2026, 1, 30, 9, 0, 0, 0, time.UTC)
	store := newMemLessonStore()

	l, err := ExecuteSaveLesson(context.Background(), validLessonInput(), SaveLessonDeps{LessonStore: store, Now: fixedClock(now)})
	if err != nil {
		t.Fatalf("ExecuteSaveLesson: %v", err)
	}
	if l.ID == "" || !l.CreatedAt.Equal(now) {
		t.Errorf("ID/CreatedAt not set: %+v", l)
	}
	if l.Theme != "Au café" {
		t.Errorf("Theme = %q", l.Theme)
	}
	if len(l.Grammar.Examples) != 2 || l.Grammar.Examples[1] != "Je mange de la tarte" {
		t.Errorf("Examples = %q", l.Grammar.Examples)
	}
	if len(l.Vocabulary) != 2 || l.Vocabulary[1] != (lesson.VocabularyItem{Word: "l'addition", Translation: "the bill"}) {
		t.Errorf("Vocabulary = %+v", l.Vocabulary)
	}
	if _, ok := store.lessons[l.ID]; !ok {
		t.Error("lesson not stored")
	}
}

func TestExecuteSaveLesson_UpdateKeepsCreatedAt(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMemLessonStore(lesson.Lesson{ID: "l1", Level: lesson.LevelBeginner, Theme: "Ancien", Date: "2026-01-01", Reading: "x", CreatedAt: created})

	input := validLessonInput()
	input.ID = "l1"
	l, err := ExecuteSaveLesson(context.Background(), input, SaveLessonDeps{LessonStore: store, Now: fixedClock(created.AddDate(0, 1, 0))})
	if err != nil {
		t.Fatalf("ExecuteSaveLesson: %v", err)
	}
	if !l.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", l.CreatedAt, created)
	}
	if store.lessons["l1"].Theme != "Au café" {
		t.Errorf("lesson not updated: %+v", store.lessons["l1"])
	}
}

func TestExecuteSaveLesson_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SaveLessonInput)
		wantErr error
	}{
		{"bad level", func(in *SaveLessonInput) { in.Level = "Expert" }, lesson.ErrInvalidLevel},
		{"blank theme", func(in *SaveLessonInput) { in.Theme = "   " }, lesson.ErrEmptyTheme},
		{"bad date", func(in *SaveLessonInput) { in.Date = "01/02/2026" }, lesson.ErrInvalidDate},
		{"no reading", func(in *SaveLessonInput) { in.Reading = "" }, lesson.ErrEmptyReading},
		{"vocabulary without word", func(in *SaveLessonInput) { in.Vocabulary = "| coffee" }, lesson.ErrEmptyWord},
		{"unknown id", func(in *SaveLessonInput) { in.ID = "missing" }, lesson.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemLessonStore()
			input := validLessonInput()
			tt.mutate(&input)
			_, err := ExecuteSaveLesson(context.Background(), input, SaveLessonDeps{LessonStore: store})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if len(store.lessons) != 0 {
				t.Error("invalid lesson was stored")
			}
		})
	}
}

func TestExecuteDeleteLesson(t *testing.T) {
	store := newMemLessonStore(lesson.Lesson{ID: "l1"})
	deps := SaveLessonDeps{LessonStore: store}

	if err := ExecuteDeleteLesson(context.Background(), "l1", deps); err != nil {
		t.Fatalf("ExecuteDeleteLesson: %v", err)
	}
	if len(store.lessons) != 0 {
		t.Error("lesson still present")
	}
	if err := ExecuteDeleteLesson(context.Background(), "l1", deps); !errors.Is(err, lesson.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
	if err := ExecuteDeleteLesson(context.Background(), "", deps); !errors.Is(err, lesson.ErrNotFound) {
		t.Errorf("empty id error = %v, want ErrNotFound", err)
	}
}

func TestExecuteSeedLessons(t *testing.T) {
	store := newMemLessonStore()
	if err := ExecuteSeedLessons(context.Background(), store); err != nil {
		t.Fatalf("ExecuteSeedLessons: %v", err)
	}
	if len(store.lessons) != 2 {
		t.Fatalf("lessons = %d, want 2", len(store.lessons))
	}
	for _, l := range store.lessons {
		if err := l.Validate(); err != nil {
			t.Errorf("demo lesson %s invalid: %v", l.ID, err)
		}
	}

	store.lessons["extra"] = lesson.Lesson{ID: "extra"}
	delete(store.lessons, "demo-les-courses")
	if err := ExecuteSeedLessons(context.Background(), store); err != nil {
		t.Fatalf("second ExecuteSeedLessons: %v", err)
	}
	if _, ok := store.lessons["demo-les-courses"]; ok {
		t.Error("seed ran again on a non-empty store")
	}
}
