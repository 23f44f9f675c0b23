package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"parlevrai/internal/domain/account"
)

func TestExecuteConfirmEmail(t *testing.T) {
	now := time.Date(2026, 1, 30, 9, 0, 0, 0, time.UTC)

	setup := func() *memAccountStore {
		store := newMemAccountStore(account.Account{
			ID: "a1", Email: "paul@parlevrai.fr", Name: "Paul",
			Role: account.RoleUser, Status: account.StatusPendingConfirmation,
		})
		store.tokens["good"] = account.ConfirmationToken{ID: "t1", AccountID: "a1", Token: "good", ExpiresAt: now.Add(time.Hour)}
		store.tokens["old"] = account.ConfirmationToken{ID: "t2", AccountID: "a1", Token: "old", ExpiresAt: now.Add(-time.Hour)}
		store.tokens["used"] = account.ConfirmationToken{ID: "t3", AccountID: "a1", Token: "used", ExpiresAt: now.Add(time.Hour), Used: true}
		return store
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", "good", nil},
		{"expired", "old", account.ErrTokenExpired},
		{"used", "used", account.ErrTokenInvalid},
		{"unknown", "nope", account.ErrTokenInvalid},
		{"empty", "", account.ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setup()
			res, err := ExecuteConfirmEmail(context.Background(), tt.token, ConfirmEmailDeps{AccountStore: store, Now: fixedClock(now)})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			a := store.byID["a1"]
			if res.AccountID != "a1" || !a.IsActive() {
				t.Errorf("account not activated: %+v", a)
			}
			for _, tok := range store.tokens {
				if !tok.Used {
					t.Errorf("token %s still usable", tok.Token)
				}
			}
		})
	}
}

func TestExecuteConfirmEmail_SecondUseRejected(t *testing.T) {
	now := time.Date(2026, 1, 30, 9, 0, 0, 0, time.UTC)
	store := newMemAccountStore(account.Account{ID: "a1", Email: "paul@parlevrai.fr", Role: account.RoleUser, Status: account.StatusPendingConfirmation})
	store.tokens["good"] = account.ConfirmationToken{AccountID: "a1", Token: "good", ExpiresAt: now.Add(time.Hour)}
	deps := ConfirmEmailDeps{AccountStore: store, Now: fixedClock(now)}

	if _, err := ExecuteConfirmEmail(context.Background(), "good", deps); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if _, err := ExecuteConfirmEmail(context.Background(), "good", deps); !errors.Is(err, account.ErrTokenInvalid) {
		t.Errorf("second confirm error = %v, want ErrTokenInvalid", err)
	}
}
