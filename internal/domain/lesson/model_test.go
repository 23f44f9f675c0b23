package lesson_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"parlevrai/internal/domain/lesson"
)

func validLesson() lesson.Lesson {
	return lesson.Lesson{
		ID:      "l1",
		Level:   lesson.LevelBeginner,
		Theme:   "Se présenter",
		Date:    "2026-01-30",
		Reading: "Bonjour ! Je m'appelle Marie.",
		Vocabulary: []lesson.VocabularyItem{
			{Word: "habiter", Translation: "to live"},
		},
	}
}

// TestLesson_Validate tests validation of Lesson.
func TestLesson_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(l *lesson.Lesson)
		wantErr error
	}{
		{"valid", func(l *lesson.Lesson) {}, nil},
		{"advanced level", func(l *lesson.Lesson) { l.Level = lesson.LevelAdvanced }, nil},
		{"unknown level", func(l *lesson.Lesson) { l.Level = "Expert" }, lesson.ErrInvalidLevel},
		{"blank theme", func(l *lesson.Lesson) { l.Theme = "   " }, lesson.ErrEmptyTheme},
		{"long theme", func(l *lesson.Lesson) { l.Theme = strings.Repeat("é", lesson.MaxThemeLength+1) }, lesson.ErrThemeTooLong},
		{"bad date", func(l *lesson.Lesson) { l.Date = "30/01/2026" }, lesson.ErrInvalidDate},
		{"empty date", func(l *lesson.Lesson) { l.Date = "" }, lesson.ErrInvalidDate},
		{"empty reading", func(l *lesson.Lesson) { l.Reading = "" }, lesson.ErrEmptyReading},
		{"long prompt", func(l *lesson.Lesson) { l.AIPrompt = strings.Repeat("x", lesson.MaxPromptLength+1) }, lesson.ErrPromptTooLong},
		{"empty word", func(l *lesson.Lesson) { l.Vocabulary = append(l.Vocabulary, lesson.VocabularyItem{Translation: "x"}) }, lesson.ErrEmptyWord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLesson()
			tt.mutate(&l)
			if err := l.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPickForDay(t *testing.T) {
	lessons := []lesson.Lesson{
		{ID: "a", Date: "2026-01-30"},
		{ID: "b", Date: "2026-01-31"},
	}

	tests := []struct {
		name string
		day  time.Time
		want string
	}{
		{"scheduled day", time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC), "b"},
		{"no lesson that day falls back to first", time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC), "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lesson.PickForDay(lessons, tt.day)
			if !ok || got.ID != tt.want {
				t.Errorf("PickForDay = %q, %v; want %q", got.ID, ok, tt.want)
			}
		})
	}

	if _, ok := lesson.PickForDay(nil, time.Now()); ok {
		t.Error("PickForDay(nil) should report no lesson")
	}
}

func TestParseLines(t *testing.T) {
	got := lesson.ParseLines("  Je suis étudiant \r\n\n  \nJ'ai 25 ans\n")
	want := []string{"Je suis étudiant", "J'ai 25 ans"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLines = %q, want %q", got, want)
	}
	if got := lesson.ParseLines("\n \n"); got != nil {
		t.Errorf("ParseLines(blank) = %q, want nil", got)
	}
}

func TestParseVocabulary(t *testing.T) {
	got := lesson.ParseVocabulary("le marché | the market\nacheter|to buy\nsympa\n")
	want := []lesson.VocabularyItem{
		{Word: "le marché", Translation: "the market"},
		{Word: "acheter", Translation: "to buy"},
		{Word: "sympa", Translation: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseVocabulary = %+v, want %+v", got, want)
	}

	round := lesson.ParseVocabulary(lesson.FormatVocabulary(want))
	if !reflect.DeepEqual(round, want) {
		t.Errorf("FormatVocabulary round trip = %+v", round)
	}
}
