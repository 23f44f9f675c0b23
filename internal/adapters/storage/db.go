package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is one schema step. Steps are applied in order and never edited
// once released; add a new step instead.
type migration struct {
	version     int
	description string
	stmts       []string
}

var migrations = []migration{
	{
		version:     1,
		description: "accounts, lessons, completions",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS account (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'active',
				created_at TEXT NOT NULL,
				failed_logins INTEGER NOT NULL DEFAULT 0,
				locked_until TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS lesson (
				id TEXT PRIMARY KEY,
				level TEXT NOT NULL,
				theme TEXT NOT NULL,
				date TEXT NOT NULL,
				reading TEXT NOT NULL,
				grammar_title TEXT NOT NULL DEFAULT '',
				grammar_explanation TEXT NOT NULL DEFAULT '',
				grammar_examples TEXT NOT NULL DEFAULT '[]',
				vocabulary TEXT NOT NULL DEFAULT '[]',
				exercise_instruction TEXT NOT NULL DEFAULT '',
				exercise_template TEXT NOT NULL DEFAULT '',
				exercise_tips TEXT NOT NULL DEFAULT '[]',
				ai_prompt TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_lesson_date ON lesson(date)`,
			`CREATE TABLE IF NOT EXISTS lesson_completion (
				account_id TEXT NOT NULL,
				lesson_id TEXT NOT NULL,
				completed_on TEXT NOT NULL,
				created_at TEXT NOT NULL,
				PRIMARY KEY (account_id, lesson_id),
				FOREIGN KEY (account_id) REFERENCES account(id) ON DELETE CASCADE
			)`,
		},
	},
	{
		version:     2,
		description: "email confirmation tokens",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS confirmation_token (
				id TEXT PRIMARY KEY,
				account_id TEXT NOT NULL,
				token TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				used INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				FOREIGN KEY (account_id) REFERENCES account(id) ON DELETE CASCADE
			)`,
		},
	},
	{
		version:     3,
		description: "home page visits",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS visit (
				id TEXT PRIMARY KEY,
				visitor_id TEXT NOT NULL,
				account_id TEXT NOT NULL DEFAULT '',
				is_authenticated INTEGER NOT NULL DEFAULT 0,
				is_unique INTEGER NOT NULL DEFAULT 0,
				path TEXT NOT NULL,
				referrer TEXT NOT NULL DEFAULT '',
				language TEXT NOT NULL DEFAULT '',
				user_agent TEXT NOT NULL DEFAULT '',
				device_type TEXT NOT NULL DEFAULT '',
				os TEXT NOT NULL DEFAULT '',
				browser TEXT NOT NULL DEFAULT '',
				utm_source TEXT NOT NULL DEFAULT '',
				utm_medium TEXT NOT NULL DEFAULT '',
				utm_campaign TEXT NOT NULL DEFAULT '',
				visited_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_visit_visitor ON visit(visitor_id)`,
		},
	},
	{
		version:     4,
		description: "visit address and location",
		stmts: []string{
			`ALTER TABLE visit ADD COLUMN ip_address TEXT NOT NULL DEFAULT ''`,
			`ALTER TABLE visit ADD COLUMN country TEXT NOT NULL DEFAULT ''`,
			`ALTER TABLE visit ADD COLUMN region TEXT NOT NULL DEFAULT ''`,
			`ALTER TABLE visit ADD COLUMN city TEXT NOT NULL DEFAULT ''`,
		},
	},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// InitDB enables the connection pragmas and brings the schema up to date.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return MigrateDB(db)
}

// MigrateDB applies every migration newer than the recorded schema version,
// each in its own transaction.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0 on a fresh database.
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

func apply(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)`,
		m.version, m.description, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}
