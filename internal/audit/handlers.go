package audit

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-orca/internal/common"
)

type lister interface {
	List(ctx context.Context, documentID uuid.UUID, limit, offset int32) ([]Entry, error)
}

// Handler exposes the audit trail of one document.
type Handler struct {
	Store lister
}

// List handles GET /api/v1/documents/{id}/audit.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "audit_not_configured", "audit store not configured", nil)
		return
	}
	documentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_id", "document id must be a UUID", nil)
		return
	}
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := common.AtoiDefault(r.URL.Query().Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.Store.List(r.Context(), documentID, int32(limit), int32(offset))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "audit_query_failed", "unable to fetch audit entries", nil)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}
