package projections

import (
	"context"
	"time"

	lessonStore "parlevrai/internal/adapters/storage/lesson"
	"parlevrai/internal/domain/lesson"
	"parlevrai/internal/domain/progress"
)

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	AccountID string
	Name      string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	LessonStore   LessonLister
	ProgressStore CompletionLister
	Now           func() time.Time
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Name  string
	Today LessonOfTheDayResult
	StatsResult
	// Week is the last seven days, oldest first.
	Week []progress.Day
	// Upcoming lists lessons dated after today, at most three.
	Upcoming []lesson.Lesson
}

const upcomingLimit = 3

// QueryGetDashboard assembles the learner's home screen.
// PRE: AccountID identifies an authenticated learner
// POST: Week has exactly seven days ending today
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	now := clock(deps.Now)
	lessons, err := deps.LessonStore.List(ctx, lessonStore.ListFilter{})
	if err != nil {
		return DashboardResult{}, err
	}
	completions, err := deps.ProgressStore.ListByAccount(ctx, query.AccountID)
	if err != nil {
		return DashboardResult{}, err
	}

	res := DashboardResult{
		Name:        query.Name,
		StatsResult: buildStats(progress.ComputeStats(completions, now)),
		Week:        lastSevenDays(completions, now),
	}
	if l, ok := lesson.PickForDay(lessons, now); ok {
		res.Today = LessonOfTheDayResult{
			Lesson:    l,
			Found:     true,
			Scheduled: l.ScheduledOn(now),
			Completed: progress.IsCompleted(completions, l.ID),
		}
	}

	today := now.Format(lesson.DateLayout)
	for _, l := range lessons {
		if l.Date > today && len(res.Upcoming) < upcomingLimit {
			res.Upcoming = append(res.Upcoming, l)
		}
	}
	return res, nil
}

func lastSevenDays(completions []progress.Completion, now time.Time) []progress.Day {
	done := make(map[string]bool, len(completions))
	for _, c := range completions {
		done[c.CompletedOn] = true
	}
	days := make([]progress.Day, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		date := d.Format(progress.DateLayout)
		days = append(days, progress.Day{Day: d.Day(), Date: date, Completed: done[date], Today: i == 0})
	}
	return days
}
