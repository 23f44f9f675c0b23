package projections

import (
	"context"
	"sort"

	accountStore "parlevrai/internal/adapters/storage/account"
	lessonStore "parlevrai/internal/adapters/storage/lesson"
	visitStore "parlevrai/internal/adapters/storage/visit"
	"parlevrai/internal/domain/account"
	"parlevrai/internal/domain/lesson"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders for the admin lesson list.
const (
	SortByTheme = "theme"
	SortByDate  = "date"
)

// AdminAccountLister lists accounts for the admin page.
type AdminAccountLister interface {
	List(ctx context.Context, filter accountStore.ListFilter) ([]account.Account, error)
}

// VisitSummarizer aggregates recorded visits.
type VisitSummarizer interface {
	Summary(ctx context.Context) (visitStore.Summary, error)
}

// GetAdminLessonsQuery carries input for the admin projection.
type GetAdminLessonsQuery struct {
	Level string
	Sort  string
}

// GetAdminLessonsDeps holds dependencies for the admin projection.
// AccountStore and VisitStore are optional.
type GetAdminLessonsDeps struct {
	LessonStore  LessonLister
	AccountStore AdminAccountLister
	VisitStore   VisitSummarizer
}

// AdminLessonsResult carries everything the admin page lists.
type AdminLessonsResult struct {
	Lessons  []lesson.Lesson
	Accounts []account.Account
	Visits   visitStore.Summary
	Levels   []string
	Level    string
	Sort     string
}

// QueryGetAdminLessons lists lessons for editing, by theme in French
// alphabetical order unless sorted by date, newest first.
// PRE: caller is an admin
// POST: Lessons filtered by Level when set
func QueryGetAdminLessons(ctx context.Context, query GetAdminLessonsQuery, deps GetAdminLessonsDeps) (AdminLessonsResult, error) {
	lessons, err := deps.LessonStore.List(ctx, lessonStore.ListFilter{Level: query.Level})
	if err != nil {
		return AdminLessonsResult{}, err
	}

	res := AdminLessonsResult{Levels: lesson.ValidLevels, Level: query.Level, Sort: query.Sort}
	if res.Sort != SortByDate {
		res.Sort = SortByTheme
	}
	SortLessons(lessons, res.Sort)
	res.Lessons = lessons

	if deps.AccountStore != nil {
		if res.Accounts, err = deps.AccountStore.List(ctx, accountStore.ListFilter{}); err != nil {
			return AdminLessonsResult{}, err
		}
	}
	if deps.VisitStore != nil {
		if res.Visits, err = deps.VisitStore.Summary(ctx); err != nil {
			return AdminLessonsResult{}, err
		}
	}
	return res, nil
}

// SortLessons orders lessons in place. Themes compare with French collation
// so accented initials sort next to their base letter.
func SortLessons(lessons []lesson.Lesson, order string) {
	if order == SortByDate {
		sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].Date > lessons[j].Date })
		return
	}
	c := collate.New(language.French, collate.IgnoreCase)
	sort.SliceStable(lessons, func(i, j int) bool {
		if r := c.CompareString(lessons[i].Theme, lessons[j].Theme); r != 0 {
			return r < 0
		}
		return lessons[i].Date < lessons[j].Date
	})
}
