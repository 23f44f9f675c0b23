package projections

import (
	"context"
	"time"

	"parlevrai/internal/domain/progress"
)

// GetCalendarQuery carries input for the calendar projection.
// A zero Year or Month selects the current month.
type GetCalendarQuery struct {
	AccountID string
	Year      int
	Month     int
}

// GetCalendarDeps holds dependencies for the calendar projection.
type GetCalendarDeps struct {
	ProgressStore CompletionLister
	Now           func() time.Time
}

// CalendarResult is one month of practice with navigation to its neighbours.
type CalendarResult struct {
	Month     progress.Month `json:"month"`
	Weekdays  []string       `json:"weekdays"`
	PrevYear  int            `json:"prevYear"`
	PrevMonth int            `json:"prevMonth"`
	NextYear  int            `json:"nextYear"`
	NextMonth int            `json:"nextMonth"`
	Stats     progress.Stats `json:"stats"`
}

// QueryGetCalendar lays out the requested month with completed days flagged.
// PRE: Month is 0 or between 1 and 12
// POST: Month.Days holds one entry per day of the month
func QueryGetCalendar(ctx context.Context, query GetCalendarQuery, deps GetCalendarDeps) (CalendarResult, error) {
	now := clock(deps.Now)
	year, month := query.Year, query.Month
	if year == 0 || month == 0 {
		year, month = now.Year(), int(now.Month())
	}

	completions, err := deps.ProgressStore.ListByAccount(ctx, query.AccountID)
	if err != nil {
		return CalendarResult{}, err
	}
	m, err := progress.BuildMonth(year, month, completions, now)
	if err != nil {
		return CalendarResult{}, err
	}

	res := CalendarResult{
		Month:    m,
		Weekdays: progress.FrenchWeekdays,
		Stats:    progress.ComputeStats(completions, now),
	}
	res.PrevYear, res.PrevMonth = progress.Shift(year, month, -1)
	res.NextYear, res.NextMonth = progress.Shift(year, month, 1)
	return res, nil
}
