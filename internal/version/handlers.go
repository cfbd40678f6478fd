package version

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-orca/internal/common"
)

// maxPayloadBytes bounds version payload uploads.
const maxPayloadBytes = 1 << 20

// Handler exposes document and version endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Mount registers the document routes on the router.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{id}", h.GetDocument)
	r.Get("/documents/{id}/summary", h.Summary)
	r.Post("/documents/{id}/versions", h.SaveVersion)
	r.Get("/documents/{id}/versions/{number}", h.GetVersion)
	r.Get("/documents/{id}/versions/{number}/totals", h.Totals)
}

// CreateDocument handles POST /api/v1/documents.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}
	doc, err := h.service.CreateDocument(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": doc})
}

// ListDocuments handles GET /api/v1/documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	docs, pagination, err := h.service.ListDocuments(r.Context(), page, perPage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": docs, "pagination": pagination})
}

// GetDocument handles GET /api/v1/documents/{id}.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": doc})
}

// SaveVersion handles POST /api/v1/documents/{id}/versions. The body is the
// raw budget payload, in any of the accepted shapes.
func (h *Handler) SaveVersion(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "read_body", "could not read request body", nil)
		return
	}
	if len(payload) > maxPayloadBytes {
		common.JSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "version payload exceeds 1 MiB", nil)
		return
	}
	v, err := h.service.SaveVersion(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
		"documentId": v.DocumentID,
		"number":     v.Number,
		"createdAt":  v.CreatedAt,
	}})
}

// GetVersion handles GET /api/v1/documents/{id}/versions/{number}.
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	number, ok := parseVersionNumber(w, r)
	if !ok {
		return
	}
	v, err := h.service.GetVersion(r.Context(), chi.URLParam(r, "id"), number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"documentId": v.DocumentID,
		"number":     v.Number,
		"payload":    json.RawMessage(v.Payload),
		"createdAt":  v.CreatedAt,
	}})
}

// Totals handles GET /api/v1/documents/{id}/versions/{number}/totals.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	number, ok := parseVersionNumber(w, r)
	if !ok {
		return
	}
	res, err := h.service.Totals(r.Context(), chi.URLParam(r, "id"), number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

// Summary handles GET /api/v1/documents/{id}/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

func parseVersionNumber(w http.ResponseWriter, r *http.Request) (int32, bool) {
	number := common.AtoiDefault(chi.URLParam(r, "number"), 0)
	if number <= 0 {
		common.JSONError(w, http.StatusBadRequest, "invalid_version", "version number must be a positive integer", nil)
		return 0, false
	}
	return int32(number), true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if appErr, ok := common.AsAppError(err); ok {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "internal"
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		common.JSONError(w, status, code, message, nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "internal", "internal error", nil)
}
