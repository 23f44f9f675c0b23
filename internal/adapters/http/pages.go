package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"parlevrai/internal/adapters/http/middleware"
	"parlevrai/internal/adapters/storage"
	"parlevrai/internal/application/orchestrators"
	"parlevrai/internal/application/projections"
	accountDomain "parlevrai/internal/domain/account"
	lessonDomain "parlevrai/internal/domain/lesson"
)

func homePage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	trackHomeVisit(ex)
	ex.render("home.html", map[string]any{
		"LessonMinutes": int(lessonDomain.Duration.Minutes()),
	})
	return nil
}

// loginPage shows the login form. A signed-in visitor goes to the landing page.
func loginPage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	if ex.nav.Flags().Authenticated {
		ex.nav.Navigate(ctx, ex.nav.Targets().Landing)
		return nil
	}
	ex.render("login.html", authForm{})
	return nil
}

func signupPage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	if ex.nav.Flags().Authenticated {
		ex.nav.Navigate(ctx, ex.nav.Targets().Landing)
		return nil
	}
	ex.render("signup.html", authForm{})
	return nil
}

// authCallbackPage consumes the confirmation link sent at signup and signs
// the learner in.
func authCallbackPage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	token := ex.r.URL.Query().Get("token")
	if token == "" && ex.nav.Flags().Authenticated {
		ex.nav.Navigate(ctx, ex.nav.Targets().Landing)
		return nil
	}

	res := ex.client.ConfirmEmail(ctx, token)
	if res.Error != nil {
		ex.status = http.StatusBadRequest
		ex.render("auth_callback.html", authForm{Error: userMessage(res.Error)})
		return nil
	}
	ex.nav.SetAuth(true, res.User.Admin)
	ex.nav.Navigate(ctx, ex.nav.Targets().Landing)
	return nil
}

func dashboardPage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	sess, _ := ex.client.current()
	result, err := projections.QueryGetDashboard(ctx, projections.GetDashboardQuery{
		AccountID: sess.AccountID,
		Name:      sess.Name,
	}, projections.GetDashboardDeps{
		LessonStore:   stores.LessonStore,
		ProgressStore: stores.ProgressStore,
		Now:           timeNow,
	})
	if err != nil {
		return err
	}
	ex.render("dashboard.html", result)
	return nil
}

// lessonPage shows the lesson of the day. With no lesson at all the learner
// is sent back to the dashboard.
func lessonPage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	sess, _ := ex.client.current()
	result, err := projections.QueryGetLessonOfTheDay(ctx, projections.GetLessonOfTheDayQuery{
		AccountID: sess.AccountID,
	}, projections.GetLessonOfTheDayDeps{
		LessonStore:   stores.LessonStore,
		ProgressStore: stores.ProgressStore,
		Now:           timeNow,
	})
	if err != nil {
		return err
	}
	if !result.Found {
		ex.nav.Navigate(ctx, pathDashboard)
		return nil
	}
	ex.render("lesson.html", result)
	return nil
}

func calendarPage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	sess, _ := ex.client.current()
	result, err := projections.QueryGetCalendar(ctx, calendarQuery(ex.r, sess.AccountID), projections.GetCalendarDeps{
		ProgressStore: stores.ProgressStore,
		Now:           timeNow,
	})
	if err != nil {
		return err
	}
	ex.render("calendar.html", result)
	return nil
}

// calendarQuery reads ?year=&month=. Anything unusable selects the current month.
func calendarQuery(r *http.Request, accountID string) projections.GetCalendarQuery {
	q := projections.GetCalendarQuery{AccountID: accountID}
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	if errY == nil && errM == nil && year > 0 && month >= 1 && month <= 12 {
		q.Year, q.Month = year, month
	}
	return q
}

func statsPage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	sess, _ := ex.client.current()
	result, err := projections.QueryGetStats(ctx, projections.GetStatsQuery{AccountID: sess.AccountID},
		projections.GetStatsDeps{ProgressStore: stores.ProgressStore, Now: timeNow})
	if err != nil {
		return err
	}
	ex.render("stats.html", result)
	return nil
}

// adminView is the back-office page: lessons, the lesson form, accounts and
// visit counters.
type adminView struct {
	projections.AdminLessonsResult
	Form     orchestrators.SaveLessonInput
	Editing  bool
	Error    string
	ActorID  string
	Statuses []string
	DB       *storage.QueryStats
	Preview  *lessonDomain.Lesson
}

func adminPage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	var form orchestrators.SaveLessonInput
	editing := false
	if id := ex.r.URL.Query().Get("edit"); id != "" {
		l, err := stores.LessonStore.GetByID(ctx, id)
		if err != nil {
			ex.status = http.StatusNotFound
		} else {
			form, editing = lessonForm(l), true
		}
	}

	var preview *lessonDomain.Lesson
	if id := ex.r.URL.Query().Get("preview"); id != "" {
		l, err := stores.LessonStore.GetByID(ctx, id)
		if err != nil {
			ex.status = http.StatusNotFound
		} else {
			preview = &l
		}
	}

	view, err := buildAdminView(ctx, ex.r, form)
	if err != nil {
		return err
	}
	view.Editing = editing
	view.Preview = preview
	ex.render("admin.html", view)
	return nil
}

func buildAdminView(ctx context.Context, r *http.Request, form orchestrators.SaveLessonInput) (adminView, error) {
	result, err := projections.QueryGetAdminLessons(ctx, projections.GetAdminLessonsQuery{
		Level: r.URL.Query().Get("level"),
		Sort:  r.URL.Query().Get("sort"),
	}, projections.GetAdminLessonsDeps{
		LessonStore:  stores.LessonStore,
		AccountStore: stores.AccountStore,
		VisitStore:   stores.VisitStore,
	})
	if err != nil {
		return adminView{}, err
	}

	view := adminView{
		AdminLessonsResult: result,
		Form:               form,
		Statuses:           []string{accountDomain.StatusActive, accountDomain.StatusSuspended, accountDomain.StatusInactive},
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		view.ActorID = sess.AccountID
	}
	if dbStats != nil {
		s := dbStats()
		view.DB = &s
	}
	return view, nil
}

// lessonForm turns a stored lesson back into the text fields of the form.
func lessonForm(l lessonDomain.Lesson) orchestrators.SaveLessonInput {
	return orchestrators.SaveLessonInput{
		ID:                  l.ID,
		Level:               l.Level,
		Theme:               l.Theme,
		Date:                l.Date,
		Reading:             l.Reading,
		GrammarTitle:        l.Grammar.Title,
		GrammarExplanation:  l.Grammar.Explanation,
		GrammarExamples:     strings.Join(l.Grammar.Examples, "\n"),
		Vocabulary:          lessonDomain.FormatVocabulary(l.Vocabulary),
		ExerciseInstruction: l.Exercise.Instruction,
		ExerciseTemplate:    l.Exercise.Template,
		ExerciseTips:        strings.Join(l.Exercise.Tips, "\n"),
		AIPrompt:            l.AIPrompt,
	}
}

func notFoundPage(ctx context.Context) error {
	ex := exchangeFrom(ctx)
	ex.status = http.StatusNotFound
	ex.render("not_found.html", map[string]any{"Path": ex.r.URL.Path})
	return nil
}

// authForm is the data of the login, signup and callback pages.
type authForm struct {
	Email   string
	Name    string
	Error   string
	Notice  string
	Pending bool
}
