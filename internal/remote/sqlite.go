package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLite stores documents one row per (user, field), which makes a
// merge-write a plain upsert of the named fields.
type SQLite struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens (or creates) the document database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLite{conn: conn, path: path}
	stmts := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		`CREATE TABLE IF NOT EXISTS documents (
			user_id    TEXT NOT NULL,
			field      TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (user_id, field)
		)`,
	}
	for _, q := range stmts {
		if _, err := conn.Exec(q); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) Read(ctx context.Context, userID string) (Document, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT field, value FROM documents WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", userID, err)
	}
	defer rows.Close()

	doc := Document{}
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scan document %s: %w", userID, err)
		}
		doc[field] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read document %s: %w", userID, err)
	}
	if len(doc) == 0 {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *SQLite) WriteMerge(ctx context.Context, userID string, fields Document) error {
	if err := validate(userID, fields); err != nil {
		return err
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write %s: %w", userID, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for field, value := range fields {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (user_id, field, value, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id, field) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			userID, field, string(value), now,
		)
		if err != nil {
			return fmt.Errorf("write %s.%s: %w", userID, field, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write %s: %w", userID, err)
	}
	return nil
}
