package projections

import (
	"context"
	"time"

	"parlevrai/internal/domain/achievement"
	"parlevrai/internal/domain/progress"
)

// GetStatsQuery carries input for the stats projection.
type GetStatsQuery struct {
	AccountID string
}

// GetStatsDeps holds dependencies for the stats projection.
type GetStatsDeps struct {
	ProgressStore CompletionLister
	Now           func() time.Time
}

// StatsResult is the learner's progress with achievements.
type StatsResult struct {
	Stats         progress.Stats      `json:"stats"`
	Badges        []achievement.Badge `json:"badges"`
	UnlockedCount int                 `json:"unlockedCount"`
	Motivation    string              `json:"motivation"`
	LessonPercent int                 `json:"lessonPercent"`
	HourPercent   int                 `json:"hourPercent"`
}

// QueryGetStats computes statistics, badges and goal progress for an account.
// PRE: AccountID identifies an authenticated learner
// POST: Badges lists every achievement in display order
func QueryGetStats(ctx context.Context, query GetStatsQuery, deps GetStatsDeps) (StatsResult, error) {
	completions, err := deps.ProgressStore.ListByAccount(ctx, query.AccountID)
	if err != nil {
		return StatsResult{}, err
	}
	return buildStats(progress.ComputeStats(completions, clock(deps.Now))), nil
}

func buildStats(stats progress.Stats) StatsResult {
	badges := achievement.Evaluate(stats)
	return StatsResult{
		Stats:         stats,
		Badges:        badges,
		UnlockedCount: achievement.UnlockedCount(badges),
		Motivation:    achievement.Motivation(stats.CurrentStreak),
		LessonPercent: achievement.Percent(stats.CompletedCount, achievement.LessonGoal),
		HourPercent:   achievement.Percent(stats.TotalHours, achievement.HourGoal),
	}
}
