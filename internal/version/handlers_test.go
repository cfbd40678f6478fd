package version_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orca/internal/store"
	"github.com/noah-isme/backend-orca/internal/version"
)

type fakeStore struct {
	docs     map[uuid.UUID]store.Document
	versions map[string]store.Version
	latest   map[uuid.UUID]int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:     map[uuid.UUID]store.Document{},
		versions: map[string]store.Version{},
		latest:   map[uuid.UUID]int32{},
	}
}

func versionKey(id uuid.UUID, n int32) string {
	return fmt.Sprintf("%s:%d", id, n)
}

func (f *fakeStore) CreateDocument(_ context.Context, name, clientName string) (store.Document, error) {
	doc := store.Document{ID: uuid.New(), Name: name, ClientName: clientName, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.docs[doc.ID] = doc
	return doc, nil
}

func (f *fakeStore) GetDocument(_ context.Context, id uuid.UUID) (store.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return doc, nil
}

func (f *fakeStore) ListDocuments(_ context.Context, _, _ int32) ([]store.Document, int, error) {
	out := make([]store.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, doc)
	}
	return out, len(out), nil
}

func (f *fakeStore) SaveVersion(_ context.Context, documentID uuid.UUID, payload []byte) (store.Version, error) {
	if _, ok := f.docs[documentID]; !ok {
		return store.Version{}, store.ErrNotFound
	}
	next := f.latest[documentID] + 1
	v := store.Version{DocumentID: documentID, Number: next, Payload: payload, CreatedAt: time.Now()}
	f.versions[versionKey(documentID, next)] = v
	f.latest[documentID] = next
	return v, nil
}

func (f *fakeStore) GetVersion(_ context.Context, documentID uuid.UUID, number int32) (store.Version, error) {
	v, ok := f.versions[versionKey(documentID, number)]
	if !ok {
		return store.Version{}, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) LatestVersion(_ context.Context, documentID uuid.UUID) (store.Version, error) {
	n, ok := f.latest[documentID]
	if !ok {
		return store.Version{}, store.ErrNotFound
	}
	return f.versions[versionKey(documentID, n)], nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	svc, err := version.NewService(version.ServiceConfig{Store: fs, Logger: zerolog.Nop()})
	require.NoError(t, err)
	handler := version.NewHandler(version.HandlerConfig{Service: svc})
	r := chi.NewRouter()
	r.Route("/api/v1", handler.Mount)
	return r, fs
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const samplePayload = `{
	"combinationMode": "sum",
	"honorariumPercent": 10,
	"campaigns": [{"id": "c1", "categories": [{"id": "k1", "offers": [
		{"id": "o1", "grossValue": 1000},
		{"id": "o2", "grossValue": 800, "discount": 100}
	]}]}]
}`

func TestCreateAndFetchDocument(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/documents", `{"name": "Spring launch", "clientName": "Acme"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data store.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Spring launch", created.Data.Name)

	rec = do(t, r, http.MethodGet, "/api/v1/documents/"+created.Data.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/documents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []store.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
}

func TestCreateDocumentValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/documents", `{"clientName": "Acme"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/documents", `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveVersionAndTotals(t *testing.T) {
	r, fs := newTestRouter(t)
	doc, err := fs.CreateDocument(context.Background(), "Spring launch", "Acme")
	require.NoError(t, err)

	rec := do(t, r, http.MethodPost, "/api/v1/documents/"+doc.ID.String()+"/versions", samplePayload)
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved struct {
		Data struct {
			Number int32 `json:"number"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.Equal(t, int32(1), saved.Data.Number)

	rec = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/documents/%s/versions/%d/totals", doc.ID, saved.Data.Number), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var totals struct {
		Data struct {
			Totals struct {
				CombinedSubtotal string `json:"combinedSubtotal"`
				GrandTotal       string `json:"grandTotal"`
			} `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	// Cheapest offer wins: net 700, honorarium 10% on top.
	require.Equal(t, "700", totals.Data.Totals.CombinedSubtotal)
	require.Equal(t, "770", totals.Data.Totals.GrandTotal)
}

func TestSaveVersionRejectsInvalidJSON(t *testing.T) {
	r, fs := newTestRouter(t)
	doc, err := fs.CreateDocument(context.Background(), "Spring launch", "Acme")
	require.NoError(t, err)

	rec := do(t, r, http.MethodPost, "/api/v1/documents/"+doc.ID.String()+"/versions", `{"broken"`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryUsesLatestVersion(t *testing.T) {
	r, fs := newTestRouter(t)
	doc, err := fs.CreateDocument(context.Background(), "Spring launch", "Acme")
	require.NoError(t, err)

	_, err = fs.SaveVersion(context.Background(), doc.ID, []byte(`{"campaigns": []}`))
	require.NoError(t, err)
	_, err = fs.SaveVersion(context.Background(), doc.ID, []byte(samplePayload))
	require.NoError(t, err)

	rec := do(t, r, http.MethodGet, "/api/v1/documents/"+doc.ID.String()+"/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Data struct {
			Version int32 `json:"version"`
			Result  struct {
				Totals struct {
					GrandTotal string `json:"grandTotal"`
				} `json:"totals"`
			} `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, int32(2), summary.Data.Version)
	require.Equal(t, "770", summary.Data.Result.Totals.GrandTotal)
}

func TestNotFoundAndBadIDs(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/v1/documents/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/documents/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/documents/"+uuid.NewString()+"/versions/0/totals", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/documents/"+uuid.NewString()+"/versions/1/totals", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/documents/"+uuid.NewString()+"/summary", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
