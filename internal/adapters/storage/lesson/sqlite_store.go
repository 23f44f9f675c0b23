package lesson

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"parlevrai/internal/adapters/storage"
	domain "parlevrai/internal/domain/lesson"
)

const lessonColumns = `id, level, theme, date, reading, grammar_title, grammar_explanation, grammar_examples,
	vocabulary, exercise_instruction, exercise_template, exercise_tips, ai_prompt, created_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new LessonStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Lesson by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Lesson, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+lessonColumns+" FROM lesson WHERE id = ?", id)
	entity, err := scanLesson(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lesson{}, fmt.Errorf("lesson %s: %w", id, domain.ErrNotFound)
	}
	return entity, err
}

// Save persists a Lesson (insert or update).
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Lesson) error {
	examples, err := json.Marshal(nonNil(entity.Grammar.Examples))
	if err != nil {
		return err
	}
	vocabulary, err := json.Marshal(entity.Vocabulary)
	if err != nil {
		return err
	}
	if entity.Vocabulary == nil {
		vocabulary = []byte("[]")
	}
	tips, err := json.Marshal(nonNil(entity.Exercise.Tips))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lesson (`+lessonColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET level=excluded.level, theme=excluded.theme, date=excluded.date,
		 reading=excluded.reading, grammar_title=excluded.grammar_title,
		 grammar_explanation=excluded.grammar_explanation, grammar_examples=excluded.grammar_examples,
		 vocabulary=excluded.vocabulary, exercise_instruction=excluded.exercise_instruction,
		 exercise_template=excluded.exercise_template, exercise_tips=excluded.exercise_tips,
		 ai_prompt=excluded.ai_prompt`,
		entity.ID, entity.Level, entity.Theme, entity.Date, entity.Reading,
		entity.Grammar.Title, entity.Grammar.Explanation, string(examples),
		string(vocabulary), entity.Exercise.Instruction, entity.Exercise.Template, string(tips),
		entity.AIPrompt, entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes a Lesson. Deleting an unknown id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM lesson WHERE id = ?", id)
	return err
}

// List returns lessons ordered by date, oldest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Lesson, error) {
	var conds []string
	var args []any
	if filter.Level != "" {
		conds = append(conds, "level = ?")
		args = append(args, filter.Level)
	}
	if filter.From != "" {
		conds = append(conds, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conds = append(conds, "date <= ?")
		args = append(args, filter.To)
	}

	query := "SELECT " + lessonColumns + " FROM lesson"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Lesson
	for rows.Next() {
		l, err := scanLesson(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Count returns the number of lessons.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lesson").Scan(&n)
	return n, err
}

func scanLesson(scan func(dest ...any) error) (domain.Lesson, error) {
	var l domain.Lesson
	var examples, vocabulary, tips, createdAt string
	err := scan(
		&l.ID, &l.Level, &l.Theme, &l.Date, &l.Reading,
		&l.Grammar.Title, &l.Grammar.Explanation, &examples,
		&vocabulary, &l.Exercise.Instruction, &l.Exercise.Template, &tips,
		&l.AIPrompt, &createdAt,
	)
	if err != nil {
		return domain.Lesson{}, err
	}
	if err := json.Unmarshal([]byte(examples), &l.Grammar.Examples); err != nil {
		return domain.Lesson{}, fmt.Errorf("lesson %s grammar examples: %w", l.ID, err)
	}
	if err := json.Unmarshal([]byte(vocabulary), &l.Vocabulary); err != nil {
		return domain.Lesson{}, fmt.Errorf("lesson %s vocabulary: %w", l.ID, err)
	}
	if err := json.Unmarshal([]byte(tips), &l.Exercise.Tips); err != nil {
		return domain.Lesson{}, fmt.Errorf("lesson %s tips: %w", l.ID, err)
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return l, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
