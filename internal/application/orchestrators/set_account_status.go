package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"parlevrai/internal/domain/account"
)

// AccountStoreForStatus defines the store interface needed by SetAccountStatus.
type AccountStoreForStatus interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// SessionRevoker ends every session of an account.
type SessionRevoker interface {
	DeleteForAccount(ctx context.Context, accountID string) error
}

// SetAccountStatusInput carries input for the orchestrator.
type SetAccountStatusInput struct {
	ActorID   string
	AccountID string
	Status    string
}

// SetAccountStatusDeps holds dependencies for SetAccountStatus.
type SetAccountStatusDeps struct {
	AccountStore AccountStoreForStatus
	Sessions     SessionRevoker
}

var ErrCannotChangeOwnStatus = errors.New("tu ne peux pas modifier le statut de ton propre compte")

// ExecuteSetAccountStatus lets an administrator suspend, deactivate or
// reactivate an account. Leaving the active state revokes the account's sessions.
// PRE: ActorID is an admin (enforced by the caller)
// POST: Account status updated; sessions revoked unless the account is active
func ExecuteSetAccountStatus(ctx context.Context, input SetAccountStatusInput, deps SetAccountStatusDeps) error {
	if input.ActorID == input.AccountID {
		return ErrCannotChangeOwnStatus
	}
	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if err := acct.SetStatus(input.Status); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}
	if !acct.IsActive() && deps.Sessions != nil {
		if err := deps.Sessions.DeleteForAccount(ctx, acct.ID); err != nil {
			slog.Error("auth_event", "event", "session_revoke_failed", "account_id", acct.ID, "error", err)
		}
	}
	slog.Info("auth_event", "event", "account_status_changed", "account_id", acct.ID, "status", acct.Status, "actor_id", input.ActorID)
	return nil
}
