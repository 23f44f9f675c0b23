package achievement_test

import (
	"strings"
	"testing"

	"parlevrai/internal/domain/achievement"
	"parlevrai/internal/domain/progress"
)

func unlocked(badges []achievement.Badge) map[string]bool {
	m := make(map[string]bool, len(badges))
	for _, b := range badges {
		m[b.ID] = b.Unlocked
	}
	return m
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		stats progress.Stats
		want  []string
	}{
		{"nothing yet", progress.Stats{}, nil},
		{"first lesson", progress.Stats{CompletedCount: 1, CurrentStreak: 1}, []string{achievement.FirstLesson}},
		{"week streak", progress.Stats{CompletedCount: 7, CurrentStreak: 7}, []string{achievement.FirstLesson, achievement.WeekStreak}},
		{"ten lessons broken streak", progress.Stats{CompletedCount: 10, CurrentStreak: 0, LongestStreak: 9}, []string{achievement.FirstLesson, achievement.TenLessons}},
		{"month streak", progress.Stats{CompletedCount: 30, CurrentStreak: 30}, []string{achievement.FirstLesson, achievement.WeekStreak, achievement.TenLessons, achievement.MonthStreak}},
		{"hundred", progress.Stats{CompletedCount: 100}, []string{achievement.FirstLesson, achievement.TenLessons, achievement.FiftyLessons, achievement.HundredLessons}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			badges := achievement.Evaluate(tt.stats)
			if len(badges) != 6 {
				t.Fatalf("badges = %d, want 6", len(badges))
			}
			got := unlocked(badges)
			if achievement.UnlockedCount(badges) != len(tt.want) {
				t.Errorf("unlocked = %v, want %v", got, tt.want)
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("%s should be unlocked", id)
				}
			}
		})
	}
}

func TestEvaluate_DisplayOrder(t *testing.T) {
	badges := achievement.Evaluate(progress.Stats{})
	if badges[0].ID != achievement.FirstLesson || badges[5].ID != achievement.HundredLessons {
		t.Errorf("order = %s ... %s", badges[0].ID, badges[5].ID)
	}
}

func TestMotivation(t *testing.T) {
	tests := []struct {
		streak int
		want   string
	}{
		{0, "Commence ta série"},
		{1, "1 jour consécutif !"},
		{3, "3 jours consécutifs ! Continue"},
		{7, "Incroyable ! 7 jours"},
		{29, "Incroyable ! 29 jours"},
		{30, "Extraordinaire ! 30 jours"},
	}
	for _, tt := range tests {
		if got := achievement.Motivation(tt.streak); !strings.Contains(got, tt.want) {
			t.Errorf("Motivation(%d) = %q, want it to contain %q", tt.streak, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct{ value, goal, want int }{
		{0, 100, 0},
		{42, 100, 42},
		{250, 100, 100},
		{5, 25, 20},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := achievement.Percent(tt.value, tt.goal); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.value, tt.goal, got, tt.want)
		}
	}
}
