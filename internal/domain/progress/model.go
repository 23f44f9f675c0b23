package progress

import (
	"errors"
	"sort"
	"time"
)

// DateLayout is the calendar-date format completions are recorded with.
const DateLayout = "2006-01-02"

// MinutesPerLesson is the practice time credited per completed lesson.
const MinutesPerLesson = 15

// Domain errors
var (
	ErrEmptyAccountID   = errors.New("account ID cannot be empty")
	ErrEmptyLessonID    = errors.New("lesson ID cannot be empty")
	ErrInvalidDate      = errors.New("completion date must be formatted YYYY-MM-DD")
	ErrAlreadyCompleted = errors.New("lesson already completed")
	ErrInvalidMonth     = errors.New("month must be between 1 and 12")
)

var frenchMonths = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// FrenchWeekdays are the calendar column headings, Monday first.
var FrenchWeekdays = []string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}

// Completion records that an account finished a lesson on a given day.
type Completion struct {
	AccountID   string
	LessonID    string
	CompletedOn string
	CreatedAt   time.Time
}

// Validate checks if the Completion has valid data.
// PRE: Completion struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Completion) Validate() error {
	if c.AccountID == "" {
		return ErrEmptyAccountID
	}
	if c.LessonID == "" {
		return ErrEmptyLessonID
	}
	if _, err := time.Parse(DateLayout, c.CompletedOn); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Stats summarises an account's progress.
type Stats struct {
	CompletedCount int `json:"completedCount"`
	CurrentStreak  int `json:"currentStreak"`
	LongestStreak  int `json:"longestStreak"`
	TotalMinutes   int `json:"totalMinutes"`
	TotalHours     int `json:"totalHours"`
}

// ComputeStats derives the statistics from the full list of completions.
// Completions are replayed in date order: a completion the day after the
// previous one extends the streak, one on the same day leaves it unchanged,
// anything later starts a new streak of one. The current streak drops to zero
// once a whole day has passed without a completion.
// INVARIANT: completions is not mutated
func ComputeStats(completions []Completion, today time.Time) Stats {
	days := completedDays(completions)

	var current, longest int
	var last time.Time
	for i, d := range days {
		switch {
		case i == 0:
			current = 1
		case d.Equal(last.AddDate(0, 0, 1)):
			current++
		case !d.Equal(last):
			current = 1
		}
		last = d
		if current > longest {
			longest = current
		}
	}

	if len(days) > 0 {
		t := truncateDay(today)
		if last.Before(t.AddDate(0, 0, -1)) {
			current = 0
		}
	}

	minutes := len(completions) * MinutesPerLesson
	return Stats{
		CompletedCount: len(completions),
		CurrentStreak:  current,
		LongestStreak:  longest,
		TotalMinutes:   minutes,
		TotalHours:     minutes / 60,
	}
}

// Day is one cell of a month calendar.
type Day struct {
	Day       int    `json:"day"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Today     bool   `json:"today"`
}

// Month is the calendar of one month.
type Month struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Label     string `json:"label"`
	Days      []Day  `json:"days"`
	Completed int    `json:"completed"`
	// Offset is the number of blank cells before the first day, Monday first.
	Offset int `json:"offset"`
}

// BuildMonth lays out month of year with each day flagged when a lesson was
// completed on it.
// PRE: 1 <= month <= 12
func BuildMonth(year, month int, completions []Completion, today time.Time) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, ErrInvalidMonth
	}
	done := make(map[string]bool, len(completions))
	for _, c := range completions {
		done[c.CompletedOn] = true
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	n := first.AddDate(0, 1, -1).Day()
	todayStr := today.Format(DateLayout)

	m := Month{
		Year:   year,
		Month:  month,
		Label:  MonthName(month) + " " + first.Format("2006"),
		Days:   make([]Day, 0, n),
		Offset: (int(first.Weekday()) + 6) % 7,
	}
	for d := 1; d <= n; d++ {
		date := first.AddDate(0, 0, d-1).Format(DateLayout)
		day := Day{Day: d, Date: date, Completed: done[date], Today: date == todayStr}
		if day.Completed {
			m.Completed++
		}
		m.Days = append(m.Days, day)
	}
	return m, nil
}

// MonthName returns the French name of month (1-12), or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return frenchMonths[month-1]
}

// Shift moves (year, month) by delta months.
func Shift(year, month, delta int) (int, int) {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), int(t.Month())
}

// IsCompleted reports whether lessonID appears in completions.
func IsCompleted(completions []Completion, lessonID string) bool {
	for _, c := range completions {
		if c.LessonID == lessonID {
			return true
		}
	}
	return false
}

func completedDays(completions []Completion) []time.Time {
	days := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		d, err := time.Parse(DateLayout, c.CompletedOn)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func truncateDay(t time.Time) time.Time {
	d, _ := time.Parse(DateLayout, t.Format(DateLayout))
	return d
}
