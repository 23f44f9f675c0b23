package progress

import (
	"context"
	"fmt"
	"time"

	"parlevrai/internal/adapters/storage"
	domain "parlevrai/internal/domain/progress"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ProgressStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Record inserts a completion. A lesson counts once per account.
// PRE: c has been validated
// POST: Returns domain.ErrAlreadyCompleted if the pair already exists
func (s *SQLiteStore) Record(ctx context.Context, c domain.Completion) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO lesson_completion (account_id, lesson_id, completed_on, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(account_id, lesson_id) DO NOTHING`,
		c.AccountID, c.LessonID, c.CompletedOn, c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadyCompleted
	}
	return nil
}

// ListByAccount returns an account's completions ordered by day.
func (s *SQLiteStore) ListByAccount(ctx context.Context, accountID string) ([]domain.Completion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, lesson_id, completed_on, created_at FROM lesson_completion
		 WHERE account_id = ? ORDER BY completed_on ASC, created_at ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Completion
	for rows.Next() {
		var c domain.Completion
		var createdAt string
		if err := rows.Scan(&c.AccountID, &c.LessonID, &c.CompletedOn, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		list = append(list, c)
	}
	return list, rows.Err()
}

// Count returns the number of completions across all accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lesson_completion").Scan(&n)
	return n, err
}
