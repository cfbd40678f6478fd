// Package store persists budget documents and their immutable payload
// versions in Postgres. The engine itself is stateless; this is the host
// plumbing that feeds it.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a document or version does not exist.
var ErrNotFound = errors.New("not found")

// Document is one budget document assembled by production staff.
type Document struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ClientName string    `json:"clientName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Version is one immutable raw payload snapshot of a document.
type Version struct {
	DocumentID uuid.UUID `json:"documentId"`
	Number     int32     `json:"number"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store wraps the pgx pool with the queries the service needs.
type Store struct {
	Pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// CreateDocument inserts a new budget document.
func (s *Store) CreateDocument(ctx context.Context, name, clientName string) (Document, error) {
	doc := Document{ID: uuid.New(), Name: name, ClientName: clientName}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO budget_documents (id, name, client_name)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		doc.ID, doc.Name, doc.ClientName)
	if err := row.Scan(&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// GetDocument fetches a document by id.
func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	var doc Document
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, client_name, created_at, updated_at
		FROM budget_documents WHERE id = $1`, id)
	if err := row.Scan(&doc.ID, &doc.Name, &doc.ClientName, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns a page of documents, newest first, plus the total count.
func (s *Store) ListDocuments(ctx context.Context, limit, offset int32) ([]Document, int, error) {
	var total int
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM budget_documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, client_name, created_at, updated_at
		FROM budget_documents
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.ClientName, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

// SaveVersion appends the payload as the document's next version.
func (s *Store) SaveVersion(ctx context.Context, documentID uuid.UUID, payload []byte) (Version, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Version{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM budget_documents WHERE id = $1)`, documentID).Scan(&exists); err != nil {
		return Version{}, fmt.Errorf("check document: %w", err)
	}
	if !exists {
		return Version{}, ErrNotFound
	}

	v := Version{DocumentID: documentID, Payload: payload}
	row := tx.QueryRow(ctx, `
		INSERT INTO budget_versions (document_id, number, payload)
		SELECT $1, COALESCE(MAX(number), 0) + 1, $2
		FROM budget_versions WHERE document_id = $1
		RETURNING number, created_at`,
		documentID, payload)
	if err := row.Scan(&v.Number, &v.CreatedAt); err != nil {
		return Version{}, fmt.Errorf("insert version: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE budget_documents SET updated_at = now() WHERE id = $1`, documentID); err != nil {
		return Version{}, fmt.Errorf("touch document: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Version{}, fmt.Errorf("commit: %w", err)
	}
	return v, nil
}

// GetVersion fetches one version of a document.
func (s *Store) GetVersion(ctx context.Context, documentID uuid.UUID, number int32) (Version, error) {
	var v Version
	row := s.Pool.QueryRow(ctx, `
		SELECT document_id, number, payload, created_at
		FROM budget_versions WHERE document_id = $1 AND number = $2`,
		documentID, number)
	if err := row.Scan(&v.DocumentID, &v.Number, &v.Payload, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// LatestVersion fetches the newest version of a document.
func (s *Store) LatestVersion(ctx context.Context, documentID uuid.UUID) (Version, error) {
	var v Version
	row := s.Pool.QueryRow(ctx, `
		SELECT document_id, number, payload, created_at
		FROM budget_versions
		WHERE document_id = $1
		ORDER BY number DESC
		LIMIT 1`, documentID)
	if err := row.Scan(&v.DocumentID, &v.Number, &v.Payload, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, fmt.Errorf("latest version: %w", err)
	}
	return v, nil
}

// SaveTotalsSnapshot upserts the computed totals for a version so exports can
// read them without re-evaluating.
func (s *Store) SaveTotalsSnapshot(ctx context.Context, documentID uuid.UUID, number int32, totals []byte, warningsCount int) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO totals_snapshots (document_id, version, totals, warnings_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id, version)
		DO UPDATE SET totals = EXCLUDED.totals, warnings_count = EXCLUDED.warnings_count, computed_at = now()`,
		documentID, number, totals, warningsCount)
	if err != nil {
		return fmt.Errorf("save totals snapshot: %w", err)
	}
	return nil
}
