package orchestrators

import (
	"context"
	"errors"
	"testing"

	"parlevrai/internal/domain/account"
)

func TestExecuteSetAccountStatus(t *testing.T) {
	tests := []struct {
		name        string
		input       SetAccountStatusInput
		wantErr     error
		wantStatus  string
		wantRevoked bool
	}{
		{"suspend revokes sessions", SetAccountStatusInput{ActorID: "adm", AccountID: "u1", Status: account.StatusSuspended}, nil, account.StatusSuspended, true},
		{"deactivate revokes sessions", SetAccountStatusInput{ActorID: "adm", AccountID: "u1", Status: account.StatusInactive}, nil, account.StatusInactive, true},
		{"reactivate keeps sessions", SetAccountStatusInput{ActorID: "adm", AccountID: "u1", Status: account.StatusActive}, nil, account.StatusActive, false},
		{"own account", SetAccountStatusInput{ActorID: "u1", AccountID: "u1", Status: account.StatusSuspended}, ErrCannotChangeOwnStatus, account.StatusActive, false},
		{"invalid status", SetAccountStatusInput{ActorID: "adm", AccountID: "u1", Status: "banned"}, account.ErrInvalidStatus, account.StatusActive, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemAccountStore(account.Account{ID: "u1", Email: "u1@parlevrai.fr", Role: account.RoleUser, Status: account.StatusActive})
			revoker := &recordingRevoker{}

			err := ExecuteSetAccountStatus(context.Background(), tt.input, SetAccountStatusDeps{AccountStore: store, Sessions: revoker})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got := store.byID["u1"].Status; got != tt.wantStatus {
				t.Errorf("status = %q, want %q", got, tt.wantStatus)
			}
			if (len(revoker.revoked) > 0) != tt.wantRevoked {
				t.Errorf("revoked = %v, want revoked=%v", revoker.revoked, tt.wantRevoked)
			}
		})
	}
}
