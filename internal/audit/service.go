// Package audit keeps a trail of document mutations so production staff can
// see who changed a budget and when.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Entry is one recorded mutation.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	Action     string          `json:"action"`
	DocumentID uuid.UUID       `json:"documentId"`
	Version    int32           `json:"version,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Actions recorded by the API.
const (
	ActionDocumentCreated = "document.created"
	ActionVersionSaved    = "version.saved"
)

// Store persists audit entries in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// Insert appends one entry.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO audit_entries (id, action, document_id, version, metadata)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Action, e.DocumentID, e.Version, e.Metadata)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns entries for one document, newest first.
func (s *Store) List(ctx context.Context, documentID uuid.UUID, limit, offset int32) ([]Entry, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, action, document_id, version, metadata, created_at
		FROM audit_entries
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		documentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.DocumentID, &e.Version, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recorder writes audit entries without ever failing the caller. Losing an
// audit row is preferable to failing a save.
type Recorder struct {
	Store  inserter
	Logger zerolog.Logger
}

type inserter interface {
	Insert(ctx context.Context, e Entry) error
}

// Record appends one entry, logging instead of returning failures.
func (r Recorder) Record(ctx context.Context, action string, documentID uuid.UUID, version int32, metadata map[string]any) {
	if r.Store == nil {
		return
	}
	var raw json.RawMessage
	if len(metadata) > 0 {
		data, err := json.Marshal(metadata)
		if err != nil {
			r.Logger.Warn().Err(err).Str("action", action).Msg("marshal audit metadata")
			return
		}
		raw = data
	}
	entry := Entry{
		ID:         uuid.New(),
		Action:     action,
		DocumentID: documentID,
		Version:    version,
		Metadata:   raw,
	}
	if err := r.Store.Insert(ctx, entry); err != nil {
		r.Logger.Warn().Err(err).Str("action", action).Str("document_id", documentID.String()).Msg("record audit entry")
	}
}
