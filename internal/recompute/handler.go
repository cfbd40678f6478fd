package recompute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-orca/internal/cache"
	"github.com/noah-isme/backend-orca/internal/engine"
	"github.com/noah-isme/backend-orca/internal/normalize"
	"github.com/noah-isme/backend-orca/internal/obs"
	"github.com/noah-isme/backend-orca/internal/store"
)

// VersionStore is the subset of the store the handler needs.
type VersionStore interface {
	GetVersion(ctx context.Context, documentID uuid.UUID, number int32) (store.Version, error)
	SaveTotalsSnapshot(ctx context.Context, documentID uuid.UUID, number int32, totals []byte, warningsCount int) error
}

// Handler processes totals recompute tasks.
type Handler struct {
	Store   VersionStore
	Cache   *cache.Totals
	Options normalize.Options
	Logger  zerolog.Logger
}

// ProcessTask evaluates the stored payload, snapshots the totals, and warms
// the cache. A missing version is terminal: retrying cannot recover it.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload TotalsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		recordOutcome("bad_payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	documentID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		recordOutcome("bad_payload")
		return fmt.Errorf("parse document id: %v: %w", err, asynq.SkipRetry)
	}

	version, err := h.Store.GetVersion(ctx, documentID, payload.Version)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			recordOutcome("missing_version")
			return fmt.Errorf("version %s/%d gone: %w", payload.DocumentID, payload.Version, asynq.SkipRetry)
		}
		recordOutcome("store_error")
		return err
	}

	result := engine.EvaluateJSON(version.Payload, h.Options)
	totals, err := json.Marshal(result.Totals)
	if err != nil {
		recordOutcome("marshal_error")
		return fmt.Errorf("marshal totals: %w", err)
	}
	if err := h.Store.SaveTotalsSnapshot(ctx, documentID, payload.Version, totals, len(result.Warnings)); err != nil {
		recordOutcome("store_error")
		return err
	}
	if err := h.Cache.Set(ctx, cache.Key(payload.DocumentID, payload.Version), result); err != nil {
		// Snapshot landed; a cold cache is acceptable.
		h.Logger.Warn().Err(err).
			Str("document_id", payload.DocumentID).
			Int32("version", payload.Version).
			Msg("warm totals cache")
	}

	recordOutcome("ok")
	h.Logger.Info().
		Str("document_id", payload.DocumentID).
		Int32("version", payload.Version).
		Str("grand_total", result.Totals.GrandTotal.String()).
		Int("warnings", len(result.Warnings)).
		Msg("totals recomputed")
	return nil
}

func recordOutcome(result string) {
	if obs.RecomputeTasksTotal != nil {
		obs.RecomputeTasksTotal.WithLabelValues(result).Inc()
	}
}
