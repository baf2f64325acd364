package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RichardoC/bioexpert/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// ErrEmptyDSN is returned by New when no database location is given.
var ErrEmptyDSN = errors.New("sqlite DSN is empty")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS messages_session ON messages(session_id, id);`

// Database is a conversation store backed by SQLite.
type Database struct {
	db           *sql.DB
	systemPrompt string
}

func New(dsn, systemPrompt string) (*Database, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps an in-memory database alive and serialises
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Database{db: db, systemPrompt: systemPrompt}, nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

// ensureSession creates the session and seeds its system message the first
// time it is seen.
func (db *Database) ensureSession(ctx context.Context, tx *sql.Tx, sessionID string) error {
	res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO sessions (id) VALUES (?)`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	created, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if created == 0 {
		return nil
	}
	return insertMessage(ctx, tx, sessionID, models.RoleSystem, db.systemPrompt)
}

func insertMessage(ctx context.Context, tx *sql.Tx, sessionID string, role models.Role, content string) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO messages (session_id, role, content, created_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)`, sessionID, string(role), content)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (db *Database) Append(ctx context.Context, sessionID string, role models.Role, content string) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := db.ensureSession(ctx, tx, sessionID); err != nil {
		return err
	}
	if err := insertMessage(ctx, tx, sessionID, role, content); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *Database) Reset(ctx context.Context, sessionID string) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO sessions (id) VALUES (?)", sessionID); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err := insertMessage(ctx, tx, sessionID, models.RoleSystem, db.systemPrompt); err != nil {
		return err
	}
	return tx.Commit()
}

// Conversation returns every message of the session in order, seeding the
// session first if it is new.
func (db *Database) Conversation(ctx context.Context, sessionID string) ([]models.Message, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := db.ensureSession(ctx, tx, sessionID); err != nil {
		return nil, err
	}
	messages, err := scanMessages(tx.QueryContext(ctx, `
        SELECT role, content
        FROM messages
        WHERE session_id = ?
        ORDER BY id ASC`, sessionID))
	if err != nil {
		return nil, err
	}
	return messages, tx.Commit()
}

func (db *Database) RecentHistory(ctx context.Context, sessionID string, n int) ([]models.Message, error) {
	if n <= 0 {
		return []models.Message{}, nil
	}
	messages, err := scanMessages(db.db.QueryContext(ctx, `
        SELECT role, content
        FROM messages
        WHERE session_id = ? AND role != ?
        ORDER BY id DESC
        LIMIT ?`, sessionID, string(models.RoleSystem), n))
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func scanMessages(rows *sql.Rows, err error) ([]models.Message, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			msg  models.Message
			role string
		)
		if err := rows.Scan(&role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = models.Role(role)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
