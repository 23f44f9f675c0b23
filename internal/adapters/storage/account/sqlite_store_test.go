package account_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"parlevrai/internal/adapters/storage"
	store "parlevrai/internal/adapters/storage/account"
	domain "parlevrai/internal/domain/account"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return store.NewSQLiteStore(db)
}

func sampleAccount(id, email string) domain.Account {
	return domain.Account{
		ID:           id,
		Email:        email,
		Name:         "Marie",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    time.Date(2026, 1, 30, 9, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAccount("a1", "Marie@ParleVrai.fr")
	a.LockedUntil = time.Date(2026, 1, 30, 9, 15, 0, 0, time.UTC)
	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.GetByEmail(ctx, "MARIE@parlevrai.fr")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != "a1" || got.Email != "marie@parlevrai.fr" || got.Name != "Marie" {
		t.Errorf("got %+v", got)
	}
	if !got.LockedUntil.Equal(a.LockedUntil) || !got.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("times = %v / %v", got.CreatedAt, got.LockedUntil)
	}

	got.Status = domain.StatusSuspended
	got.LockedUntil = time.Time{}
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	byID, err := s.GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Status != domain.StatusSuspended || !byID.LockedUntil.IsZero() {
		t.Errorf("after update: %+v", byID)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetByID(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetByID error = %v, want sql.ErrNoRows", err)
	}
	_, err = s.GetByEmail(context.Background(), "nobody@parlevrai.fr")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetByEmail error = %v, want sql.ErrNoRows", err)
	}
}

func TestSQLiteStore_ListAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := sampleAccount("adm", "admin@parlevrai.fr")
	admin.Role = domain.RoleAdmin
	suspended := sampleAccount("sus", "sus@parlevrai.fr")
	suspended.Status = domain.StatusSuspended
	for _, a := range []domain.Account{sampleAccount("u1", "u1@parlevrai.fr"), admin, suspended} {
		if err := s.Save(ctx, a); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	tests := []struct {
		name   string
		filter store.ListFilter
		want   int
	}{
		{"all", store.ListFilter{}, 3},
		{"admins", store.ListFilter{Role: domain.RoleAdmin}, 1},
		{"suspended", store.ListFilter{Status: domain.StatusSuspended}, 1},
		{"users active", store.ListFilter{Role: domain.RoleUser, Status: domain.StatusActive}, 1},
		{"limited", store.ListFilter{Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("List = %d accounts, want %d", len(got), tt.want)
			}
		})
	}

	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Count after delete = %d", n)
	}
}

func TestSQLiteStore_ConfirmationTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAccount("a1", "marie@parlevrai.fr")
	a.Status = domain.StatusPendingConfirmation
	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tok := domain.ConfirmationToken{
		ID:        "t1",
		AccountID: "a1",
		Token:     "secret",
		ExpiresAt: time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2026, 1, 30, 9, 0, 0, 0, time.UTC),
	}
	if err := s.SaveConfirmationToken(ctx, tok); err != nil {
		t.Fatalf("SaveConfirmationToken: %v", err)
	}

	got, err := s.GetConfirmationToken(ctx, "secret")
	if err != nil {
		t.Fatalf("GetConfirmationToken: %v", err)
	}
	if got.AccountID != "a1" || got.Used || !got.ExpiresAt.Equal(tok.ExpiresAt) {
		t.Errorf("token = %+v", got)
	}

	if err := s.InvalidateTokensForAccount(ctx, "a1"); err != nil {
		t.Fatalf("InvalidateTokensForAccount: %v", err)
	}
	got, _ = s.GetConfirmationToken(ctx, "secret")
	if !got.Used {
		t.Error("token should be used after invalidation")
	}

	if _, err := s.GetConfirmationToken(ctx, "nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing token error = %v", err)
	}
}
