package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"parlevrai/internal/adapters/http/middleware"
	"parlevrai/internal/application/projections"
)

const healthTimeout = 2 * time.Second

// sessionView is the answer of GET /api/session.
type sessionView struct {
	Authenticated bool  `json:"authenticated"`
	IsAdmin       bool  `json:"isAdmin"`
	User          *User `json:"user"`
}

// handleSessionAPI handles GET /api/session
// POST: the cookie session checked against the account row; a revoked
// session is cleared
func handleSessionAPI(w http.ResponseWriter, r *http.Request) {
	client := newSessionClient(w, r)
	isAdmin, ok := client.CheckSession(r.Context())

	view := sessionView{Authenticated: ok, IsAdmin: isAdmin}
	if ok {
		u := client.user()
		view.User = &u
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, view)
}

// handleStatsAPI handles GET /api/stats
// PRE: caller is authenticated (RequireAuth)
func handleStatsAPI(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	result, err := projections.QueryGetStats(r.Context(), projections.GetStatsQuery{AccountID: sess.AccountID},
		projections.GetStatsDeps{ProgressStore: stores.ProgressStore, Now: timeNow})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCalendarAPI handles GET /api/calendar?year=&month=
// PRE: caller is authenticated (RequireAuth)
func handleCalendarAPI(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	query := projections.GetCalendarQuery{AccountID: sess.AccountID}

	if v := r.URL.Query().Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be between 1 and 12"})
			return
		}
		year, err := strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil || year < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year is required with month"})
			return
		}
		query.Year, query.Month = year, month
	}

	result, err := projections.QueryGetCalendar(r.Context(), query, projections.GetCalendarDeps{
		ProgressStore: stores.ProgressStore,
		Now:           timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleLessonsAPI handles GET /api/lessons?level=&sort=
// PRE: caller is an admin (RequireAdmin)
func handleLessonsAPI(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetAdminLessons(r.Context(), projections.GetAdminLessonsQuery{
		Level: r.URL.Query().Get("level"),
		Sort:  r.URL.Query().Get("sort"),
	}, projections.GetAdminLessonsDeps{LessonStore: stores.LessonStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lessons": result.Lessons,
		"levels":  result.Levels,
		"level":   result.Level,
		"sort":    result.Sort,
	})
}

// handleHealth handles GET /healthz
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := dbPing(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
