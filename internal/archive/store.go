// Package archive is a named-blob store backed by SQLite: the local stand-in
// for the object-storage bucket the archive tool exposes to the model.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quill/internal/domain"
)

// ErrNotFound is returned by Get for names that were never stored.
var ErrNotFound = errors.New("archive: object not found")

// Store persists named documents with a content type. Put overwrites.
type Store struct {
	db *sql.DB
}

// New creates a Store and initializes the schema.
func New(conn *sql.DB) (*Store, error) {
	if conn == nil {
		return nil, fmt.Errorf("db must not be nil")
	}
	s := &Store{db: conn}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("archive migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS archive (
			name TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			content_type TEXT NOT NULL DEFAULT 'text/plain',
			stored_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// Put stores body under name, replacing any previous object with that name.
func (s *Store) Put(ctx context.Context, name string, body []byte, contentType string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if contentType == "" {
		contentType = "text/plain"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO archive (name, body, content_type, stored_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			content_type = excluded.content_type,
			stored_at = excluded.stored_at
	`, name, body, contentType)
	return err
}

// Get returns the stored body and metadata for name.
func (s *Store) Get(ctx context.Context, name string) ([]byte, *domain.ArchiveObject, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("name must not be empty")
	}
	var (
		body     []byte
		obj      domain.ArchiveObject
		storedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT body, content_type, stored_at FROM archive WHERE name = ?", name,
	).Scan(&body, &obj.ContentType, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, nil, err
	}
	obj.Name = name
	obj.Size = int64(len(body))
	obj.StoredAt = storedAt
	return body, &obj, nil
}

// List returns metadata for all stored objects, newest first.
func (s *Store) List(ctx context.Context) ([]domain.ArchiveObject, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, length(body), content_type, stored_at FROM archive ORDER BY stored_at DESC, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ArchiveObject
	for rows.Next() {
		var obj domain.ArchiveObject
		if err := rows.Scan(&obj.Name, &obj.Size, &obj.ContentType, &obj.StoredAt); err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}

// Delete removes an object. Deleting a missing name is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM archive WHERE name = ?", name)
	return err
}
