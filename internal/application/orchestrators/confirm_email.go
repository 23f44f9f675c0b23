package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"parlevrai/internal/domain/account"
)

// AccountStoreForConfirm defines the store interface needed by ConfirmEmail.
type AccountStoreForConfirm interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	GetConfirmationToken(ctx context.Context, token string) (account.ConfirmationToken, error)
	InvalidateTokensForAccount(ctx context.Context, accountID string) error
}

// ConfirmEmailDeps holds dependencies for ConfirmEmail.
type ConfirmEmailDeps struct {
	AccountStore AccountStoreForConfirm
	Now          func() time.Time
}

// ExecuteConfirmEmail consumes a confirmation token and activates its account.
// PRE: token is the value from the confirmation link
// POST: Account is active and every token of the account is used
func ExecuteConfirmEmail(ctx context.Context, token string, deps ConfirmEmailDeps) (LoginResult, error) {
	if token == "" {
		return LoginResult{}, account.ErrTokenInvalid
	}
	tok, err := deps.AccountStore.GetConfirmationToken(ctx, token)
	if err != nil || tok.Used {
		slog.Info("auth_event", "event", "confirmation_failed", "reason", "invalid_token")
		return LoginResult{}, account.ErrTokenInvalid
	}
	if tok.IsExpired(clock(deps.Now)) {
		slog.Info("auth_event", "event", "confirmation_failed", "reason", "expired", "account_id", tok.AccountID)
		return LoginResult{}, account.ErrTokenExpired
	}

	acct, err := deps.AccountStore.GetByID(ctx, tok.AccountID)
	if err != nil {
		return LoginResult{}, account.ErrTokenInvalid
	}
	if err := acct.Confirm(); err != nil {
		return LoginResult{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return LoginResult{}, err
	}
	if err := deps.AccountStore.InvalidateTokensForAccount(ctx, acct.ID); err != nil {
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "email_confirmed", "email", acct.Email)
	return LoginResult{AccountID: acct.ID, Email: acct.Email, Name: acct.Name, Role: acct.Role}, nil
}
