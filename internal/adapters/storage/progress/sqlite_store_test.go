package progress_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"parlevrai/internal/adapters/storage"
	store "parlevrai/internal/adapters/storage/progress"
	domain "parlevrai/internal/domain/progress"
)

func newTestStore(t *testing.T) (*store.SQLiteStore, *sql.DB) {
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
	for _, id := range []string{"acc-1", "acc-2"} {
		_, err := db.Exec(`INSERT INTO account (id, email, name, role, status, created_at)
			VALUES (?, ?, 'Test', 'user', 'active', '2026-01-01T00:00:00Z')`, id, id+"@parlevrai.fr")
		if err != nil {
			t.Fatalf("seed account: %v", err)
		}
	}
	return store.NewSQLiteStore(db), db
}

func completion(account, lesson, day string) domain.Completion {
	return domain.Completion{AccountID: account, LessonID: lesson, CompletedOn: day, CreatedAt: time.Now()}
}

func TestSQLiteStore_RecordOncePerLesson(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, completion("acc-1", "l1", "2026-01-30")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	err := s.Record(ctx, completion("acc-1", "l1", "2026-01-31"))
	if !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Errorf("second Record error = %v, want ErrAlreadyCompleted", err)
	}
	if err := s.Record(ctx, completion("acc-2", "l1", "2026-01-31")); err != nil {
		t.Errorf("other account Record: %v", err)
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestSQLiteStore_ListByAccount(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Record(ctx, completion("acc-1", "l2", "2026-01-31"))
	s.Record(ctx, completion("acc-1", "l1", "2026-01-30"))
	s.Record(ctx, completion("acc-2", "l1", "2026-01-30"))

	got, err := s.ListByAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(got) != 2 || got[0].LessonID != "l1" || got[1].LessonID != "l2" {
		t.Errorf("ListByAccount = %+v", got)
	}

	none, err := s.ListByAccount(ctx, "nobody")
	if err != nil || len(none) != 0 {
		t.Errorf("ListByAccount(nobody) = %v, %v", none, err)
	}
}

func TestSQLiteStore_CascadeOnAccountDelete(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	s.Record(ctx, completion("acc-1", "l1", "2026-01-30"))
	if _, err := db.Exec(`DELETE FROM account WHERE id = 'acc-1'`); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if got, _ := s.ListByAccount(ctx, "acc-1"); len(got) != 0 {
		t.Errorf("completions survived account deletion: %+v", got)
	}
}
