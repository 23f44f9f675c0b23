package account

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Field limits.
const (
	MaxEmailLength    = 254
	MaxNameLength     = 100
	MinNameLength     = 2
	MinPasswordLength = 6
	// bcrypt ignores input beyond 72 bytes.
	MaxPasswordLength = 72
)

// Lockout policy.
const (
	MaxFailedLogins  = 5
	LockoutDuration  = 15 * time.Minute
	ConfirmationTTL  = 24 * time.Hour
	passwordHashCost = 12
)

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Status constants
const (
	StatusActive              = "active"
	StatusInactive            = "inactive"
	StatusSuspended           = "suspended"
	StatusPendingConfirmation = "pending_confirmation"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleUser, RoleAdmin}

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusActive, StatusInactive, StatusSuspended, StatusPendingConfirmation}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Domain errors
var (
	ErrEmptyEmail         = errors.New("l'email est requis")
	ErrInvalidEmail       = errors.New("format d'email invalide, utilisez le format exemple@domaine.com")
	ErrEmailTooLong       = errors.New("l'email ne peut pas dépasser 254 caractères")
	ErrNameTooShort       = errors.New("le prénom doit contenir au moins 2 caractères")
	ErrNameTooLong        = errors.New("le prénom ne peut pas dépasser 100 caractères")
	ErrInvalidRole        = errors.New("role must be one of: user, admin")
	ErrInvalidStatus      = errors.New("status must be one of: active, inactive, suspended, pending_confirmation")
	ErrEmptyPassword      = errors.New("le mot de passe est requis")
	ErrPasswordTooShort   = errors.New("le mot de passe doit contenir au moins 6 caractères")
	ErrPasswordTooLong    = errors.New("le mot de passe ne peut pas dépasser 72 caractères")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrTokenExpired       = errors.New("le lien de confirmation a expiré")
	ErrTokenInvalid       = errors.New("le lien de confirmation est invalide")
	ErrAlreadyConfirmed   = errors.New("le compte est déjà confirmé")
	ErrNotPending         = errors.New("account is not pending confirmation")
	ErrCannotChangeStatus = errors.New("cannot move an account back to pending confirmation")
)

// Account is a learner or administrator identity.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Status       string
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// ConfirmationToken is a single-use, time-limited email confirmation token.
type ConfirmationToken struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if err := ValidateEmail(a.Email); err != nil {
		return err
	}
	if err := ValidateName(a.Name); err != nil {
		return err
	}
	if !contains(ValidRoles, a.Role) {
		return ErrInvalidRole
	}
	if !contains(ValidStatuses, a.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// ValidateEmail checks presence, length and format of an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateName checks the display name length.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < MinNameLength {
		return ErrNameTooShort
	}
	if n > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidatePassword checks the password length bounds.
func ValidatePassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(plaintext) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext satisfies ValidatePassword
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if err := ValidatePassword(plaintext); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), passwordHashCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account
// after MaxFailedLogins failures.
// POST: FailedLogins incremented; LockedUntil set if the limit is reached
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = now.Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsAdmin returns true if the account has the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsActive returns true if the account may hold a session.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// IsPendingConfirmation returns true while the signup email is unconfirmed.
func (a *Account) IsPendingConfirmation() bool {
	return a.Status == StatusPendingConfirmation
}

// Confirm transitions the account from pending to active.
// PRE: Account is pending confirmation
// POST: Status is active
func (a *Account) Confirm() error {
	if a.Status == StatusActive {
		return ErrAlreadyConfirmed
	}
	if a.Status != StatusPendingConfirmation {
		return ErrNotPending
	}
	a.Status = StatusActive
	return nil
}

// SetStatus changes the account status. Administrators use it to suspend,
// deactivate or reactivate learners.
// POST: Status is updated
func (a *Account) SetStatus(status string) error {
	if !contains(ValidStatuses, status) {
		return ErrInvalidStatus
	}
	if status == StatusPendingConfirmation {
		return ErrCannotChangeStatus
	}
	a.Status = status
	return nil
}

// IsExpired returns true if the token has expired.
func (t *ConfirmationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Invalidate marks the token as used.
func (t *ConfirmationToken) Invalidate() {
	t.Used = true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
