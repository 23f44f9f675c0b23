package lesson

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format lessons are scheduled with.
const DateLayout = "2006-01-02"

// Duration is the length of every lesson.
const Duration = 15 * time.Minute

// Level constants
const (
	LevelBeginner     = "Débutant"
	LevelIntermediate = "Intermédiaire"
	LevelAdvanced     = "Avancé"
)

// ValidLevels contains all valid level values.
var ValidLevels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Max length constants for author-editable fields.
const (
	MaxThemeLength   = 120
	MaxReadingLength = 10000
	MaxPromptLength  = 4000
)

// Domain errors
var (
	ErrInvalidLevel   = errors.New("level must be one of: Débutant, Intermédiaire, Avancé")
	ErrEmptyTheme     = errors.New("theme cannot be empty")
	ErrThemeTooLong   = fmt.Errorf("theme cannot exceed %d characters", MaxThemeLength)
	ErrInvalidDate    = errors.New("date must be formatted YYYY-MM-DD")
	ErrEmptyReading   = errors.New("reading cannot be empty")
	ErrReadingTooLong = fmt.Errorf("reading cannot exceed %d characters", MaxReadingLength)
	ErrPromptTooLong  = fmt.Errorf("AI prompt cannot exceed %d characters", MaxPromptLength)
	ErrEmptyWord      = errors.New("vocabulary entries need a word")
	ErrNotFound       = errors.New("lesson not found")
)

// Grammar is the grammar point of a lesson.
type Grammar struct {
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
}

// VocabularyItem pairs a French word with its translation.
type VocabularyItem struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

// Exercise is the speaking exercise of a lesson.
type Exercise struct {
	Instruction string   `json:"instruction"`
	Template    string   `json:"template"`
	Tips        []string `json:"tips"`
}

// Lesson is one 15-minute daily lesson.
type Lesson struct {
	ID         string           `json:"id"`
	Level      string           `json:"level"`
	Theme      string           `json:"theme"`
	Date       string           `json:"date"`
	Reading    string           `json:"reading"`
	Grammar    Grammar          `json:"grammar"`
	Vocabulary []VocabularyItem `json:"vocabulary"`
	Exercise   Exercise         `json:"exercise"`
	AIPrompt   string           `json:"aiPrompt"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Validate checks if the Lesson has valid data.
// PRE: Lesson struct is populated
// POST: Returns nil if valid, error otherwise
func (l *Lesson) Validate() error {
	if !isValidLevel(l.Level) {
		return ErrInvalidLevel
	}
	theme := strings.TrimSpace(l.Theme)
	if theme == "" {
		return ErrEmptyTheme
	}
	if len([]rune(theme)) > MaxThemeLength {
		return ErrThemeTooLong
	}
	if _, err := time.Parse(DateLayout, l.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(l.Reading) == "" {
		return ErrEmptyReading
	}
	if len(l.Reading) > MaxReadingLength {
		return ErrReadingTooLong
	}
	if len(l.AIPrompt) > MaxPromptLength {
		return ErrPromptTooLong
	}
	for _, v := range l.Vocabulary {
		if strings.TrimSpace(v.Word) == "" {
			return ErrEmptyWord
		}
	}
	return nil
}

// ScheduledOn reports whether the lesson is scheduled for day.
func (l *Lesson) ScheduledOn(day time.Time) bool {
	return l.Date == day.Format(DateLayout)
}

// PickForDay returns the lesson scheduled on day, falling back to the first
// lesson. ok is false only when lessons is empty.
// PRE: lessons is ordered by date
func PickForDay(lessons []Lesson, day time.Time) (Lesson, bool) {
	if len(lessons) == 0 {
		return Lesson{}, false
	}
	for _, l := range lessons {
		if l.ScheduledOn(day) {
			return l, true
		}
	}
	return lessons[0], true
}

// ParseLines splits a textarea value into trimmed, non-empty lines.
func ParseLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseVocabulary parses "word | translation" lines. A line without a
// separator yields an entry with an empty translation.
func ParseVocabulary(s string) []VocabularyItem {
	var out []VocabularyItem
	for _, line := range ParseLines(s) {
		word, translation, _ := strings.Cut(line, "|")
		out = append(out, VocabularyItem{
			Word:        strings.TrimSpace(word),
			Translation: strings.TrimSpace(translation),
		})
	}
	return out
}

// FormatVocabulary is the inverse of ParseVocabulary, used to prefill the edit form.
func FormatVocabulary(items []VocabularyItem) string {
	lines := make([]string, 0, len(items))
	for _, v := range items {
		lines = append(lines, v.Word+" | "+v.Translation)
	}
	return strings.Join(lines, "\n")
}

func isValidLevel(level string) bool {
	for _, l := range ValidLevels {
		if l == level {
			return true
		}
	}
	return false
}
