package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	emailAdapter "parlevrai/internal/adapters/email"
	"parlevrai/internal/domain/account"
	"parlevrai/internal/domain/lesson"
	"parlevrai/internal/domain/progress"
	"parlevrai/internal/domain/visit"
)

// --- in-memory test doubles ---

type memAccountStore struct {
	byID    map[string]account.Account
	tokens  map[string]account.ConfirmationToken
	saves   int
	saveErr error
}

func newMemAccountStore(accts ...account.Account) *memAccountStore {
	s := &memAccountStore{
		byID:   make(map[string]account.Account),
		tokens: make(map[string]account.ConfirmationToken),
	}
	for _, a := range accts {
		s.byID[a.ID] = a
	}
	return s
}

func (s *memAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := s.byID[id]
	if !ok {
		return account.Account{}, fmt.Errorf("account not found")
	}
	return a, nil
}

func (s *memAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range s.byID {
		if a.Email == account.NormalizeEmail(email) {
			return a, nil
		}
	}
	return account.Account{}, fmt.Errorf("account not found")
}

func (s *memAccountStore) Save(_ context.Context, a account.Account) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.byID[a.ID] = a
	return nil
}

func (s *memAccountStore) Count(_ context.Context) (int, error) {
	return len(s.byID), nil
}

func (s *memAccountStore) SaveConfirmationToken(_ context.Context, t account.ConfirmationToken) error {
	s.tokens[t.Token] = t
	return nil
}

func (s *memAccountStore) GetConfirmationToken(_ context.Context, token string) (account.ConfirmationToken, error) {
	t, ok := s.tokens[token]
	if !ok {
		return account.ConfirmationToken{}, fmt.Errorf("token not found")
	}
	return t, nil
}

func (s *memAccountStore) InvalidateTokensForAccount(_ context.Context, accountID string) error {
	for k, t := range s.tokens {
		if t.AccountID == accountID {
			t.Used = true
			s.tokens[k] = t
		}
	}
	return nil
}

type memLessonStore struct {
	lessons map[string]lesson.Lesson
}

func newMemLessonStore(ls ...lesson.Lesson) *memLessonStore {
	s := &memLessonStore{lessons: make(map[string]lesson.Lesson)}
	for _, l := range ls {
		s.lessons[l.ID] = l
	}
	return s
}

func (s *memLessonStore) GetByID(_ context.Context, id string) (lesson.Lesson, error) {
	l, ok := s.lessons[id]
	if !ok {
		return lesson.Lesson{}, fmt.Errorf("lesson %s: %w", id, lesson.ErrNotFound)
	}
	return l, nil
}

func (s *memLessonStore) Save(_ context.Context, l lesson.Lesson) error {
	s.lessons[l.ID] = l
	return nil
}

func (s *memLessonStore) Delete(_ context.Context, id string) error {
	delete(s.lessons, id)
	return nil
}

func (s *memLessonStore) Count(_ context.Context) (int, error) {
	return len(s.lessons), nil
}

type memProgressStore struct {
	completions []progress.Completion
}

func (s *memProgressStore) Record(_ context.Context, c progress.Completion) error {
	for _, existing := range s.completions {
		if existing.AccountID == c.AccountID && existing.LessonID == c.LessonID {
			return progress.ErrAlreadyCompleted
		}
	}
	s.completions = append(s.completions, c)
	return nil
}

func (s *memProgressStore) ListByAccount(_ context.Context, accountID string) ([]progress.Completion, error) {
	var out []progress.Completion
	for _, c := range s.completions {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

type flakyVisitStore struct {
	failures int
	attempts int
	inserted []visit.Visit
	seen     map[string]bool
	checkErr error
}

func (s *flakyVisitStore) Insert(_ context.Context, v visit.Visit) error {
	s.attempts++
	if s.attempts <= s.failures {
		return errors.New("database is locked")
	}
	s.inserted = append(s.inserted, v)
	return nil
}

func (s *flakyVisitStore) HasVisitor(_ context.Context, visitorID string) (bool, error) {
	if s.checkErr != nil {
		return false, s.checkErr
	}
	return s.seen[visitorID], nil
}

type recordingMailer struct {
	sent []emailAdapter.SendRequest
	err  error
}

func (m *recordingMailer) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if m.err != nil {
		return emailAdapter.SendResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: "test", SentAt: time.Now()}, nil
}

type recordingRevoker struct {
	revoked []string
}

func (r *recordingRevoker) DeleteForAccount(_ context.Context, accountID string) error {
	r.revoked = append(r.revoked, accountID)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// mustAccount builds an account with a real bcrypt hash.
func mustAccount(id, email, password, role, status string) account.Account {
	a := account.Account{
		ID:        id,
		Email:     email,
		Name:      "Marie",
		Role:      role,
		Status:    status,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := a.SetPassword(password); err != nil {
		panic(err)
	}
	return a
}
