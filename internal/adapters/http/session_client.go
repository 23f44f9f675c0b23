package web

import (
	"context"
	"log/slog"
	"net/http"

	"parlevrai/internal/adapters/http/middleware"
	"parlevrai/internal/application/navigator"
	"parlevrai/internal/application/orchestrators"
	accountDomain "parlevrai/internal/domain/account"
)

// User is the account view handed back by the session client.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

// AuthResult is the outcome of a credential operation.
// Error carries the reason when Success is false.
type AuthResult struct {
	Success                bool
	User                   User
	NeedsEmailConfirmation bool
	Error                  error
}

// sessionClient is the request-scoped session store seen by the navigator.
// Every state change it makes is reported to the single registered listener.
type sessionClient struct {
	w        http.ResponseWriter
	r        *http.Request
	listener navigator.AuthListener

	session middleware.Session
	active  bool
}

var _ navigator.SessionSource = (*sessionClient)(nil)

func newSessionClient(w http.ResponseWriter, r *http.Request) *sessionClient {
	c := &sessionClient{w: w, r: r}
	c.session, c.active = middleware.GetSessionFromContext(r.Context())
	return c
}

// OnAuthStateChange installs the listener, replacing any earlier one.
func (c *sessionClient) OnAuthStateChange(fn navigator.AuthListener) {
	c.listener = fn
}

func (c *sessionClient) emit(ctx context.Context, isAuthenticated, isAdmin bool) {
	if c.listener != nil {
		c.listener(ctx, isAuthenticated, isAdmin)
	}
}

// CheckSession restores the cookie session against the current account row.
// A session whose account is no longer active is revoked and reported as a
// transition to signed out.
func (c *sessionClient) CheckSession(ctx context.Context) (bool, bool) {
	if !c.active {
		return false, false
	}
	acct, err := stores.AccountStore.GetByID(ctx, c.session.AccountID)
	if err != nil || !acct.IsActive() {
		reason := "inactive"
		if err != nil {
			reason = "account_missing"
		}
		slog.Info("auth_event", "event", "session_revoked", "account_id", c.session.AccountID, "reason", reason)
		c.end(ctx)
		return false, false
	}

	c.session.Role = acct.Role
	c.session.Name = acct.Name
	c.session.Email = acct.Email
	return c.session.IsAdmin(), true
}

// Login checks the credentials and opens a session.
func (c *sessionClient) Login(ctx context.Context, identifier, password string) AuthResult {
	result, err := orchestrators.ExecuteLogin(ctx, orchestrators.LoginInput{
		Email:    identifier,
		Password: password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore, Now: timeNow})
	if err != nil {
		return AuthResult{Error: err}
	}
	return c.start(ctx, result)
}

// Signup creates a learner account. A session is only opened when no email
// confirmation is pending.
func (c *sessionClient) Signup(ctx context.Context, email, password, name string) AuthResult {
	result, err := orchestrators.ExecuteSignup(ctx, orchestrators.SignupInput{
		Email:    email,
		Password: password,
		Name:     name,
	}, orchestrators.SignupDeps{
		AccountStore:        stores.AccountStore,
		Mailer:              emailSender,
		RequireConfirmation: signupConfig.RequireConfirmation,
		BaseURL:             signupConfig.BaseURL,
		Now:                 timeNow,
	})
	if err != nil {
		return AuthResult{Error: err}
	}
	if result.NeedsEmailConfirmation {
		return AuthResult{
			Success:                true,
			User:                   User{ID: result.AccountID, Email: result.Email, Name: result.Name},
			NeedsEmailConfirmation: true,
		}
	}
	return c.start(ctx, orchestrators.LoginResult{
		AccountID: result.AccountID,
		Email:     result.Email,
		Name:      result.Name,
		Role:      accountDomain.RoleUser,
	})
}

// ConfirmEmail consumes a confirmation token and opens a session for its account.
func (c *sessionClient) ConfirmEmail(ctx context.Context, token string) AuthResult {
	result, err := orchestrators.ExecuteConfirmEmail(ctx, token, orchestrators.ConfirmEmailDeps{
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	})
	if err != nil {
		return AuthResult{Error: err}
	}
	return c.start(ctx, result)
}

// Logout ends the current session. Logging out without a session still
// reports the signed-out state.
func (c *sessionClient) Logout(ctx context.Context) AuthResult {
	if c.active {
		slog.Info("auth_event", "event", "logout", "email", c.session.Email)
	}
	c.end(ctx)
	return AuthResult{Success: true}
}

// IsAdmin reports whether the current session belongs to an admin.
func (c *sessionClient) IsAdmin() bool {
	return c.active && c.session.IsAdmin()
}

// current returns the session as last seen by this client.
func (c *sessionClient) current() (middleware.Session, bool) {
	return c.session, c.active
}

func (c *sessionClient) user() User {
	return User{
		ID:    c.session.AccountID,
		Email: c.session.Email,
		Name:  c.session.Name,
		Admin: c.session.IsAdmin(),
	}
}

func (c *sessionClient) start(ctx context.Context, result orchestrators.LoginResult) AuthResult {
	// A fresh token on every sign-in; the previous one is dropped.
	if token := middleware.SessionToken(c.r); token != "" {
		if err := sessions.Delete(ctx, token); err != nil {
			slog.Warn("auth_event", "event", "session_delete_failed", "error", err)
		}
	}

	sess := middleware.Session{
		AccountID: result.AccountID,
		Email:     result.Email,
		Name:      result.Name,
		Role:      result.Role,
	}
	token, err := sessions.Create(ctx, sess)
	if err != nil {
		return AuthResult{Error: err}
	}
	middleware.SetSessionCookie(c.w, token)

	c.session, c.active = sess, true
	c.emit(ctx, true, sess.IsAdmin())
	return AuthResult{Success: true, User: c.user()}
}

func (c *sessionClient) end(ctx context.Context) {
	if token := middleware.SessionToken(c.r); token != "" {
		if err := sessions.Delete(ctx, token); err != nil {
			slog.Warn("auth_event", "event", "session_delete_failed", "error", err)
		}
		middleware.ClearSessionCookie(c.w)
	}
	c.session, c.active = middleware.Session{}, false
	c.emit(ctx, false, false)
}
