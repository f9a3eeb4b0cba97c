// Package docstore provides a generic JSON document store over named collections.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Collection names used by the application.
const (
	CollectionUsers      = "users"
	CollectionNotes      = "notes"
	CollectionFlashcards = "flashcards"
	CollectionQuizzes    = "quizzes"
)

// ErrNotFound is returned when a document does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// DecodeError wraps a JSON decode failure for a stored document.
type DecodeError struct {
	Collection string
	ID         string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode document %s/%s: %v", e.Collection, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Store persists schemaless JSON documents in a single MySQL table,
// addressed by (collection, document id).
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const schema = `CREATE TABLE IF NOT EXISTS documents (
	collection VARCHAR(64) NOT NULL,
	doc_id VARCHAR(64) NOT NULL,
	body JSON NOT NULL,
	created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	PRIMARY KEY (collection, doc_id)
)`

// EnsureSchema creates the backing table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

// Put creates or fully overwrites a document and returns its id.
// When id is empty a new one is generated.
func (s *Store) Put(ctx context.Context, collection, id string, record any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	body, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("json.Marshal > %w", err)
	}

	query := `INSERT INTO documents (collection, doc_id, body) VALUES (?, ?, CAST(? AS JSON))
		ON DUPLICATE KEY UPDATE body = VALUES(body)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, body); err != nil {
		return "", fmt.Errorf("put document %s/%s: %w", collection, id, err)
	}
	return id, nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	query := "DELETE FROM documents WHERE collection = ? AND doc_id = ?"
	if _, err := s.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// MergeFields applies a partial update to a document without requiring the
// full record shape. Missing documents return ErrNotFound.
func (s *Store) MergeFields(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("json.Marshal > %w", err)
	}

	query := `UPDATE documents SET body = JSON_MERGE_PATCH(body, CAST(? AS JSON))
		WHERE collection = ? AND doc_id = ?`
	result, err := s.db.ExecContext(ctx, query, patch, collection, id)
	if err != nil {
		return fmt.Errorf("merge document %s/%s: %w", collection, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("merge document %s/%s: rows affected: %w", collection, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("merge document %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// Get reads a single document and decodes it into T.
func Get[T any](ctx context.Context, store *Store, collection, id string) (T, error) {
	var record T

	var body []byte
	query := "SELECT body FROM documents WHERE collection = ? AND doc_id = ?"
	if err := store.db.GetContext(ctx, &body, query, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record, fmt.Errorf("get document %s/%s: %w", collection, id, ErrNotFound)
		}
		return record, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}

	if err := json.Unmarshal(body, &record); err != nil {
		return record, &DecodeError{Collection: collection, ID: id, Err: err}
	}
	return record, nil
}

// Query returns all documents in a collection matching every equality filter
// (logical AND). Documents that fail to decode are dropped from the result
// set instead of failing the whole query.
func Query[T any](ctx context.Context, store *Store, collection string, filters map[string]string) ([]T, error) {
	query := "SELECT doc_id, body FROM documents WHERE collection = ?"
	args := []any{collection}

	// Sort filter fields so the generated SQL is deterministic.
	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if !fieldNamePattern.MatchString(field) {
			return nil, fmt.Errorf("invalid filter field %q", field)
		}
		query += fmt.Sprintf(" AND JSON_UNQUOTE(JSON_EXTRACT(body, '$.%s')) = ?", field)
		args = append(args, filters[field])
	}
	query += " ORDER BY created_at"

	rows, err := store.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []T
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("query collection %s: scan: %w", collection, err)
		}

		var record T
		if err := json.Unmarshal(body, &record); err != nil {
			slog.Default().Warn("dropping undecodable document from query result",
				"collection", collection,
				"documentID", id,
				"error", err,
			)
			continue
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	return records, nil
}
