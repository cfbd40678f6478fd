// Package version exposes budget documents and their payload versions over
// HTTP and runs the pricing engine against stored versions.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-orca/internal/audit"
	"github.com/noah-isme/backend-orca/internal/cache"
	"github.com/noah-isme/backend-orca/internal/common"
	"github.com/noah-isme/backend-orca/internal/engine"
	"github.com/noah-isme/backend-orca/internal/normalize"
	"github.com/noah-isme/backend-orca/internal/obs"
	"github.com/noah-isme/backend-orca/internal/recompute"
	"github.com/noah-isme/backend-orca/internal/store"
)

type documentStore interface {
	CreateDocument(ctx context.Context, name, clientName string) (store.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (store.Document, error)
	ListDocuments(ctx context.Context, limit, offset int32) ([]store.Document, int, error)
	SaveVersion(ctx context.Context, documentID uuid.UUID, payload []byte) (store.Version, error)
	GetVersion(ctx context.Context, documentID uuid.UUID, number int32) (store.Version, error)
	LatestVersion(ctx context.Context, documentID uuid.UUID) (store.Version, error)
}

// Service orchestrates document persistence, evaluation, and caching.
type Service struct {
	store    documentStore
	cache    *cache.Totals
	enqueuer recompute.Enqueuer
	audit    audit.Recorder
	opts     normalize.Options
	logger   zerolog.Logger
	validate *validator.Validate
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store    documentStore
	Cache    *cache.Totals
	Enqueuer recompute.Enqueuer
	Audit    audit.Recorder
	Options  normalize.Options
	Logger   zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("version: store is required")
	}
	return &Service{
		store:    cfg.Store,
		cache:    cfg.Cache,
		enqueuer: cfg.Enqueuer,
		audit:    cfg.Audit,
		opts:     cfg.Options,
		logger:   cfg.Logger,
		validate: validator.New(),
	}, nil
}

// CreateDocumentRequest is the payload for creating a document.
type CreateDocumentRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	ClientName string `json:"clientName" validate:"max=200"`
}

// CreateDocument validates and persists a new budget document.
func (s *Service) CreateDocument(ctx context.Context, req CreateDocumentRequest) (store.Document, error) {
	if err := s.validate.Struct(req); err != nil {
		return store.Document{}, common.NewAppError("invalid_request", "invalid document payload", http.StatusBadRequest, err)
	}
	doc, err := s.store.CreateDocument(ctx, req.Name, req.ClientName)
	if err != nil {
		return store.Document{}, err
	}
	s.audit.Record(ctx, audit.ActionDocumentCreated, doc.ID, 0, map[string]any{"name": doc.Name})
	return doc, nil
}

// GetDocument fetches one document.
func (s *Service) GetDocument(ctx context.Context, id string) (store.Document, error) {
	docID, err := parseID(id)
	if err != nil {
		return store.Document{}, err
	}
	doc, err := s.store.GetDocument(ctx, docID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Document{}, notFound("document")
	}
	return doc, err
}

// ListDocuments returns a page of documents plus pagination metadata.
func (s *Service) ListDocuments(ctx context.Context, page, perPage int) ([]store.Document, common.Pagination, error) {
	offset := int32((page - 1) * perPage)
	docs, total, err := s.store.ListDocuments(ctx, int32(perPage), offset)
	if err != nil {
		return nil, common.Pagination{}, err
	}
	return docs, common.Pagination{Page: page, PerPage: perPage, TotalItems: total}, nil
}

// SaveVersion appends a raw payload as the document's next version and
// schedules background recomputation. The payload is stored verbatim; the
// engine tolerates whatever shape it carries.
func (s *Service) SaveVersion(ctx context.Context, id string, payload json.RawMessage) (store.Version, error) {
	docID, err := parseID(id)
	if err != nil {
		return store.Version{}, err
	}
	if !json.Valid(payload) {
		return store.Version{}, common.NewAppError("invalid_payload", "version payload must be valid JSON", http.StatusBadRequest, nil)
	}
	v, err := s.store.SaveVersion(ctx, docID, payload)
	if errors.Is(err, store.ErrNotFound) {
		return store.Version{}, notFound("document")
	}
	if err != nil {
		return store.Version{}, err
	}
	s.audit.Record(ctx, audit.ActionVersionSaved, docID, v.Number, map[string]any{"bytes": len(payload)})
	if err := s.enqueuer.EnqueueTotals(ctx, docID.String(), v.Number); err != nil {
		// The on-demand path still computes totals; only the warm-up is lost.
		s.logger.Warn().Err(err).Str("document_id", id).Int32("version", v.Number).Msg("enqueue recompute")
	}
	return v, nil
}

// GetVersion fetches one raw version.
func (s *Service) GetVersion(ctx context.Context, id string, number int32) (store.Version, error) {
	docID, err := parseID(id)
	if err != nil {
		return store.Version{}, err
	}
	v, err := s.store.GetVersion(ctx, docID, number)
	if errors.Is(err, store.ErrNotFound) {
		return store.Version{}, notFound("version")
	}
	return v, err
}

// Totals evaluates one version, serving from cache when possible.
func (s *Service) Totals(ctx context.Context, id string, number int32) (engine.Result, error) {
	docID, err := parseID(id)
	if err != nil {
		return engine.Result{}, err
	}

	key := cache.Key(docID.String(), number)
	if res, found, err := s.cache.Get(ctx, key); err == nil && found {
		recordCache("hit")
		return res, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("totals cache read")
	}
	recordCache("miss")

	v, err := s.store.GetVersion(ctx, docID, number)
	if errors.Is(err, store.ErrNotFound) {
		return engine.Result{}, notFound("version")
	}
	if err != nil {
		return engine.Result{}, err
	}

	res := s.evaluate(v.Payload)
	if err := s.cache.Set(ctx, key, res); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("totals cache write")
	}
	return res, nil
}

// Summary is the client-facing price summary fed to document renderers.
type Summary struct {
	Document store.Document `json:"document"`
	Version  int32          `json:"version"`
	Result   engine.Result  `json:"result"`
}

// Summarize evaluates the document's latest version.
func (s *Service) Summarize(ctx context.Context, id string) (Summary, error) {
	docID, err := parseID(id)
	if err != nil {
		return Summary{}, err
	}
	doc, err := s.store.GetDocument(ctx, docID)
	if errors.Is(err, store.ErrNotFound) {
		return Summary{}, notFound("document")
	}
	if err != nil {
		return Summary{}, err
	}
	v, err := s.store.LatestVersion(ctx, docID)
	if errors.Is(err, store.ErrNotFound) {
		return Summary{}, common.NewAppError("no_versions", "document has no versions yet", http.StatusNotFound, nil)
	}
	if err != nil {
		return Summary{}, err
	}

	res, err := s.Totals(ctx, id, v.Number)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Document: doc, Version: v.Number, Result: res}, nil
}

func (s *Service) evaluate(payload []byte) engine.Result {
	start := time.Now()
	res := engine.EvaluateJSON(payload, s.opts)
	if obs.EvaluationsTotal != nil {
		obs.EvaluationsTotal.WithLabelValues("api").Inc()
		obs.EvaluationDuration.Observe(obs.DurationMillis(time.Since(start)))
		obs.NormalizeWarningsTotal.Add(float64(len(res.Warnings)))
	}
	return res
}

func recordCache(result string) {
	if obs.TotalsCacheTotal != nil {
		obs.TotalsCacheTotal.WithLabelValues(result).Inc()
	}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, common.NewAppError("invalid_id", "document id must be a UUID", http.StatusBadRequest, err)
	}
	return parsed, nil
}

func notFound(entity string) error {
	return common.NewAppError(entity+"_not_found", entity+" not found", http.StatusNotFound, nil)
}
