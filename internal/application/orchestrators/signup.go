package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	emailAdapter "parlevrai/internal/adapters/email"
	"parlevrai/internal/domain/account"

	"github.com/google/uuid"
)

// AccountStoreForSignup defines the store interface needed by Signup.
type AccountStoreForSignup interface {
	AccountStoreForCreate
	SaveConfirmationToken(ctx context.Context, token account.ConfirmationToken) error
}

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// SignupResult describes the created account. When NeedsEmailConfirmation is
// true the account is pending and no session may be opened yet.
type SignupResult struct {
	AccountID              string
	Email                  string
	Name                   string
	NeedsEmailConfirmation bool
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	AccountStore        AccountStoreForSignup
	Mailer              emailAdapter.Sender
	RequireConfirmation bool
	// BaseURL is the public origin confirmation links point at.
	BaseURL string
	Now     func() time.Time
}

// ExecuteSignup creates a learner account. When confirmation is required the
// account is left pending and a single-use confirmation link is emailed.
// PRE: Mailer is non-nil when RequireConfirmation is set
// POST: Account persisted as active, or pending with a token and an email sent
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (SignupResult, error) {
	status := account.StatusActive
	if deps.RequireConfirmation {
		status = account.StatusPendingConfirmation
	}

	acct, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    input.Email,
		Name:     strings.TrimSpace(input.Name),
		Password: input.Password,
		Role:     account.RoleUser,
		Status:   status,
	}, CreateAccountDeps{AccountStore: deps.AccountStore, Now: deps.Now})
	if err != nil {
		return SignupResult{}, err
	}

	result := SignupResult{AccountID: acct.ID, Email: acct.Email, Name: acct.Name}
	if !deps.RequireConfirmation {
		slog.Info("auth_event", "event", "signup_success", "email", acct.Email)
		return result, nil
	}

	now := clock(deps.Now)
	token := account.ConfirmationToken{
		ID:        uuid.New().String(),
		AccountID: acct.ID,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(account.ConfirmationTTL),
		CreatedAt: now,
	}
	if err := deps.AccountStore.SaveConfirmationToken(ctx, token); err != nil {
		return SignupResult{}, fmt.Errorf("save confirmation token: %w", err)
	}

	link := strings.TrimRight(deps.BaseURL, "/") + "/auth/callback?token=" + url.QueryEscape(token.Token)
	req, err := emailAdapter.ConfirmationEmail(acct.Email, acct.Name, link)
	if err != nil {
		return SignupResult{}, err
	}
	if _, err := deps.Mailer.Send(ctx, req); err != nil {
		// The account stays pending; delivery is not retried.
		slog.Error("auth_event", "event", "confirmation_email_failed", "email", acct.Email, "error", err)
	}

	slog.Info("auth_event", "event", "signup_pending_confirmation", "email", acct.Email)
	result.NeedsEmailConfirmation = true
	return result, nil
}
