// Package recompute moves totals evaluation off the request path: saving a
// version enqueues a task, and the worker recomputes, snapshots, and warms
// the cache.
package recompute

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeTotalsRecompute is the asynq task type for totals recomputation.
const TypeTotalsRecompute = "totals:recompute"

// TotalsPayload identifies the document version to recompute.
type TotalsPayload struct {
	DocumentID string `json:"documentId"`
	Version    int32  `json:"version"`
}

// NewTotalsTask builds the asynq task for one document version.
func NewTotalsTask(documentID string, version int32) (*asynq.Task, error) {
	payload, err := json.Marshal(TotalsPayload{DocumentID: documentID, Version: version})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypeTotalsRecompute, payload, asynq.MaxRetry(3)), nil
}

// Enqueuer submits recompute tasks.
type Enqueuer struct {
	Client *asynq.Client
}

// EnqueueTotals schedules recomputation for the version. A nil client makes
// this a no-op so tests and single-process deployments skip the queue.
func (e Enqueuer) EnqueueTotals(ctx context.Context, documentID string, version int32) error {
	if e.Client == nil {
		return nil
	}
	task, err := NewTotalsTask(documentID, version)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeTotalsRecompute, err)
	}
	return nil
}
