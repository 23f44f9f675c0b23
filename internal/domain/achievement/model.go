package achievement

import (
	"fmt"

	"parlevrai/internal/domain/progress"
)

// Badge IDs
const (
	FirstLesson    = "first-lesson"
	WeekStreak     = "week-streak"
	TenLessons     = "ten-lessons"
	MonthStreak    = "month-streak"
	FiftyLessons   = "fifty-lessons"
	HundredLessons = "hundred-lessons"
)

// Goals shown on the stats page progress bars.
const (
	LessonGoal = 100
	HourGoal   = 25
)

// metric selects which statistic a badge threshold applies to.
type metric int

const (
	byCompleted metric = iota
	byStreak
)

// Badge is an achievement and whether it has been unlocked.
type Badge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`

	threshold int
	metric    metric
}

var catalogue = []Badge{
	{ID: FirstLesson, Title: "Premier pas", Description: "Complète ta première leçon", Icon: "🎯", threshold: 1, metric: byCompleted},
	{ID: WeekStreak, Title: "7 jours d'affilée", Description: "Maintiens une série de 7 jours", Icon: "🔥", threshold: 7, metric: byStreak},
	{ID: TenLessons, Title: "Déterminé(e)", Description: "Complète 10 leçons", Icon: "⭐", threshold: 10, metric: byCompleted},
	{ID: MonthStreak, Title: "Un mois complet", Description: "Maintiens une série de 30 jours", Icon: "🏆", threshold: 30, metric: byStreak},
	{ID: FiftyLessons, Title: "Expert", Description: "Complète 50 leçons", Icon: "🎓", threshold: 50, metric: byCompleted},
	{ID: HundredLessons, Title: "Maître du français", Description: "Complète 100 leçons", Icon: "👑", threshold: 100, metric: byCompleted},
}

// Evaluate returns every badge in display order with Unlocked set from stats.
// Streak badges use the current streak.
func Evaluate(stats progress.Stats) []Badge {
	out := make([]Badge, len(catalogue))
	for i, b := range catalogue {
		value := stats.CompletedCount
		if b.metric == byStreak {
			value = stats.CurrentStreak
		}
		b.Unlocked = value >= b.threshold
		out[i] = b
	}
	return out
}

// UnlockedCount returns how many badges are unlocked.
func UnlockedCount(badges []Badge) int {
	n := 0
	for _, b := range badges {
		if b.Unlocked {
			n++
		}
	}
	return n
}

// Motivation returns the encouragement line for a current streak.
func Motivation(streak int) string {
	switch {
	case streak <= 0:
		return "Commence ta série aujourd'hui ! Chaque grand voyage commence par un premier pas."
	case streak == 1:
		return "Tu es sur une bonne lancée avec 1 jour consécutif ! Continue !"
	case streak < 7:
		return fmt.Sprintf("Tu es sur une bonne lancée avec %d jours consécutifs ! Continue !", streak)
	case streak < 30:
		return fmt.Sprintf("Incroyable ! %d jours consécutifs ! Tu es en train de créer une habitude solide.", streak)
	default:
		return fmt.Sprintf("Extraordinaire ! %d jours de suite ! Tu es un vrai champion de la persévérance ! 🏆", streak)
	}
}

// Percent returns value as a percentage of goal, capped at 100.
func Percent(value, goal int) int {
	if goal <= 0 {
		return 0
	}
	p := value * 100 / goal
	if p > 100 {
		return 100
	}
	return p
}
