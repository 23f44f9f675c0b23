package web

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"parlevrai/internal/adapters/http/middleware"
	"parlevrai/internal/application/orchestrators"
	accountDomain "parlevrai/internal/domain/account"
	lessonDomain "parlevrai/internal/domain/lesson"
	progressDomain "parlevrai/internal/domain/progress"
	themeDomain "parlevrai/internal/domain/theme"
)

const themeCookieMaxAge = 365 * 24 * time.Hour

// handleLoginSubmit handles POST /login
// POST: session opened and client sent to the landing page, or the form
// re-rendered with the reason
func handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	ex, sync := newNavigator(w, r)
	ctx := withExchange(r.Context(), ex)
	if sync.Restore(ctx) {
		return
	}

	email := r.FormValue("email")
	res := ex.client.Login(ctx, email, r.FormValue("password"))
	if res.Error != nil {
		renderTemplate(w, r, http.StatusUnauthorized, "login.html", authForm{
			Email: email,
			Error: userMessage(res.Error),
		})
		return
	}
	ex.nav.SetAuth(true, res.User.Admin)
	ex.nav.Navigate(ctx, ex.nav.Targets().Landing)
}

// handleSignupSubmit handles POST /signup
// POST: account created; signed in unless email confirmation is pending
func handleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	ex, sync := newNavigator(w, r)
	ctx := withExchange(r.Context(), ex)
	if sync.Restore(ctx) {
		return
	}

	form := authForm{Email: r.FormValue("email"), Name: r.FormValue("name")}
	res := ex.client.Signup(ctx, form.Email, r.FormValue("password"), form.Name)
	if res.Error != nil {
		form.Error = userMessage(res.Error)
		renderTemplate(w, r, http.StatusBadRequest, "signup.html", form)
		return
	}
	if res.NeedsEmailConfirmation {
		form.Pending = true
		form.Notice = "Un email de confirmation a été envoyé à " + res.User.Email + "."
		renderTemplate(w, r, http.StatusOK, "signup.html", form)
		return
	}
	ex.nav.SetAuth(true, res.User.Admin)
	ex.nav.Navigate(ctx, ex.nav.Targets().Landing)
}

// handleLogout handles POST /logout
// POST: session deleted, cookie cleared, client sent home exactly once
func handleLogout(w http.ResponseWriter, r *http.Request) {
	ex, sync := newNavigator(w, r)
	ctx := withExchange(r.Context(), ex)
	if sync.Restore(ctx) {
		return
	}
	ex.client.Logout(ctx)
	// The listener has already sent the client home; this only covers a
	// listener that did not.
	ex.nav.RedirectToHome(ctx)
}

// handleThemeToggle handles POST /theme
// POST: theme cookie set to the requested theme, or the opposite of the current one
func handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	next := currentTheme(r).Toggle()
	if t, ok := themeDomain.Parse(r.FormValue("theme")); ok {
		next = t
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeDomain.CookieName,
		Value:    string(next),
		Path:     "/",
		MaxAge:   int(themeCookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"theme": string(next)})
		return
	}
	http.Redirect(w, r, backTo(r, pathHome), http.StatusSeeOther)
}

// backTo returns the form's "next" field when it is an internal link.
func backTo(r *http.Request, fallback string) string {
	if next := r.FormValue("next"); IsInternalLink(next) {
		return next
	}
	return fallback
}

// handleCompleteLesson handles POST /lesson/complete
// PRE: caller is authenticated (RequireAuth)
// POST: completion recorded once; stats returned to JSON clients
func handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	ex, sync := newNavigator(w, r)
	ctx := withExchange(r.Context(), ex)
	if sync.Restore(ctx) {
		return
	}
	sess, _ := ex.client.current()

	result, err := orchestrators.ExecuteCompleteLesson(ctx, orchestrators.CompleteLessonInput{
		AccountID: sess.AccountID,
		LessonID:  r.FormValue("lesson_id"),
	}, orchestrators.CompleteLessonDeps{
		LessonStore:   stores.LessonStore,
		ProgressStore: stores.ProgressStore,
		Now:           timeNow,
	})
	if err != nil {
		if errors.Is(err, lessonDomain.ErrNotFound) || errors.Is(err, progressDomain.ErrEmptyLessonID) {
			http.Error(w, "lesson not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{
			"stats":            result.Stats,
			"alreadyCompleted": result.AlreadyCompleted,
		})
		return
	}
	ex.nav.Navigate(ctx, backTo(r, pathLesson))
}

// lessonValidationErrors are the failures reported back in the lesson form.
var lessonValidationErrors = []error{
	lessonDomain.ErrInvalidLevel,
	lessonDomain.ErrEmptyTheme,
	lessonDomain.ErrThemeTooLong,
	lessonDomain.ErrInvalidDate,
	lessonDomain.ErrEmptyReading,
	lessonDomain.ErrReadingTooLong,
	lessonDomain.ErrPromptTooLong,
	lessonDomain.ErrEmptyWord,
}

func isLessonValidation(err error) bool {
	for _, v := range lessonValidationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// handleSaveLesson handles POST /admin/lessons (create, or update when id is set)
// PRE: caller is an admin (RequireAdmin)
// POST: lesson stored and client sent back to /admin, or the form re-rendered
func handleSaveLesson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	ex, ok := adminAction(w, r)
	if !ok {
		return
	}
	ctx := withExchange(r.Context(), ex)

	input := orchestrators.SaveLessonInput{
		ID:                  r.FormValue("id"),
		Level:               r.FormValue("level"),
		Theme:               r.FormValue("theme"),
		Date:                r.FormValue("date"),
		Reading:             r.FormValue("reading"),
		GrammarTitle:        r.FormValue("grammar_title"),
		GrammarExplanation:  r.FormValue("grammar_explanation"),
		GrammarExamples:     r.FormValue("grammar_examples"),
		Vocabulary:          r.FormValue("vocabulary"),
		ExerciseInstruction: r.FormValue("exercise_instruction"),
		ExerciseTemplate:    r.FormValue("exercise_template"),
		ExerciseTips:        r.FormValue("exercise_tips"),
		AIPrompt:            r.FormValue("ai_prompt"),
	}
	l, err := orchestrators.ExecuteSaveLesson(ctx, input, orchestrators.SaveLessonDeps{
		LessonStore: stores.LessonStore,
		Now:         timeNow,
	})
	switch {
	case err == nil:
	case errors.Is(err, lessonDomain.ErrNotFound):
		http.Error(w, "lesson not found", http.StatusNotFound)
		return
	case isLessonValidation(err):
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		view, verr := buildAdminView(ctx, ex.request(), input)
		if verr != nil {
			internalError(w, verr)
			return
		}
		view.Error = err.Error()
		view.Editing = input.ID != ""
		renderTemplate(w, ex.request(), http.StatusUnprocessableEntity, "admin.html", view)
		return
	default:
		internalError(w, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, l)
		return
	}
	ex.nav.Navigate(ctx, pathAdmin)
}

// handleDeleteLesson handles POST /admin/lessons/delete
// PRE: caller is an admin (RequireAdmin)
func handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	ex, ok := adminAction(w, r)
	if !ok {
		return
	}
	ctx := withExchange(r.Context(), ex)

	err := orchestrators.ExecuteDeleteLesson(ctx, r.FormValue("id"), orchestrators.SaveLessonDeps{LessonStore: stores.LessonStore})
	if errors.Is(err, lessonDomain.ErrNotFound) {
		http.Error(w, "lesson not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ex.nav.Navigate(ctx, pathAdmin)
}

// handleAccountStatus handles POST /admin/accounts/status
// PRE: caller is an admin (RequireAdmin)
// POST: account status changed; its sessions revoked when no longer active
func handleAccountStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	ex, ok := adminAction(w, r)
	if !ok {
		return
	}
	ctx := withExchange(r.Context(), ex)
	sess, _ := ex.client.current()

	err := orchestrators.ExecuteSetAccountStatus(ctx, orchestrators.SetAccountStatusInput{
		ActorID:   sess.AccountID,
		AccountID: r.FormValue("account_id"),
		Status:    r.FormValue("status"),
	}, orchestrators.SetAccountStatusDeps{
		AccountStore: stores.AccountStore,
		Sessions:     sessions,
	})
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		http.Error(w, "account not found", http.StatusNotFound)
		return
	case errors.Is(err, orchestrators.ErrCannotChangeOwnStatus),
		errors.Is(err, accountDomain.ErrInvalidStatus),
		errors.Is(err, accountDomain.ErrCannotChangeStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	default:
		internalError(w, err)
		return
	}

	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ex.nav.Navigate(ctx, pathAdmin)
}

// adminAction restores the caller's session for an admin action. The role
// is re-read from the account, so a demoted admin is refused even while
// their session still says admin.
func adminAction(w http.ResponseWriter, r *http.Request) (*exchange, bool) {
	ex, sync := newNavigator(w, r)
	if sync.Restore(withExchange(r.Context(), ex)) {
		return nil, false
	}
	if !ex.nav.Flags().Admin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return ex, true
}
