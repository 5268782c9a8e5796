package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedtrack/internal/model"
	"pedtrack/internal/store"
)

func setupPedDetailsRouter(t *testing.T) (*mux.Router, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	h := NewPedDetailsHandler(st, zap.NewNop(), false)
	r := mux.NewRouter()
	h.RegisterRoutes(r, zap.NewNop())
	return r, st
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedPedDetail(t *testing.T, r http.Handler, detail model.PedDetail) model.PedDetail {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/ped-details", detail)
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.PedDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return created
}

func TestPedDetails_CreateAndGet(t *testing.T) {
	r, _ := setupPedDetailsRouter(t)

	created := seedPedDetail(t, r, model.PedDetail{
		TransactionID: "TXN-001",
		Country:       "United States",
		DocumentType:  "Passport",
		State:         "CA",
		ImageURL:      "https://leaked-docs.net/passport.jpg",
	})
	require.NotZero(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	w := doJSON(t, r, http.MethodGet, "/api/ped-details/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.PedDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "TXN-001", got.TransactionID)
}

func TestPedDetails_CreateMissingRequiredFields(t *testing.T) {
	r, st := setupPedDetailsRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/ped-details", model.PedDetail{
		TransactionID: "TXN-001",
		DocumentType:  "Passport",
		// country missing
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "country")

	records, err := st.ListPedDetails(context.Background())
	require.NoError(t, err)
	require.Empty(t, records, "invalid record must not be persisted")
}

func TestPedDetails_GetNotFound(t *testing.T) {
	r, _ := setupPedDetailsRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/ped-details/99", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "PED detail not found")
}

func TestPedDetails_ListWithFilters(t *testing.T) {
	r, _ := setupPedDetailsRouter(t)

	seedPedDetail(t, r, model.PedDetail{TransactionID: "A", Country: "United States", DocumentType: "Passport", LoadedToSfm: true})
	seedPedDetail(t, r, model.PedDetail{TransactionID: "B", Country: "United States", DocumentType: "IDs"})
	seedPedDetail(t, r, model.PedDetail{TransactionID: "C", Country: "France", DocumentType: "Passport"})

	w := doJSON(t, r, http.MethodGet, "/api/ped-details?country=United+States", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []model.PedDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 2)

	w = doJSON(t, r, http.MethodGet, "/api/ped-details?sfmStatus=yes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	require.Equal(t, "A", records[0].TransactionID)

	// Empty result still encodes as an array.
	w = doJSON(t, r, http.MethodGet, "/api/ped-details?country=Atlantis", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestPedDetails_ListEchoesPodID(t *testing.T) {
	r, _ := setupPedDetailsRouter(t)

	created := seedPedDetail(t, r, model.PedDetail{TransactionID: "A", Country: "Spain", DocumentType: "IDs"})
	created.PodID = "pod-7-a"
	w := doJSON(t, r, http.MethodPut, "/api/ped-details/1", created)
	require.Equal(t, http.StatusOK, w.Code)

	// PodID is an echo annotation, not a stored attribute: the PUT above
	// must not have persisted it.
	w = doJSON(t, r, http.MethodGet, "/api/ped-details?podId=pod", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []model.PedDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Empty(t, records)
}

func TestPedDetails_StatesFacet(t *testing.T) {
	r, _ := setupPedDetailsRouter(t)

	seedPedDetail(t, r, model.PedDetail{TransactionID: "A", Country: "US", DocumentType: "IDs", State: "CA"})
	seedPedDetail(t, r, model.PedDetail{TransactionID: "B", Country: "US", DocumentType: "IDs", State: "NY"})
	seedPedDetail(t, r, model.PedDetail{TransactionID: "C", Country: "FR", DocumentType: "IDs"})

	w := doJSON(t, r, http.MethodGet, "/api/ped-details/states/US", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `["CA","NY"]`, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/ped-details/states/FR", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/ped-details/states/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestPedDetails_GetByTransaction(t *testing.T) {
	r, _ := setupPedDetailsRouter(t)

	seedPedDetail(t, r, model.PedDetail{TransactionID: "TXN-A", Country: "US", DocumentType: "IDs"})
	seedPedDetail(t, r, model.PedDetail{TransactionID: "TXN-A", Country: "US", DocumentType: "Passport"})

	w := doJSON(t, r, http.MethodGet, "/api/ped-details/transaction/TXN-A", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []model.PedDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 2)

	w = doJSON(t, r, http.MethodGet, "/api/ped-details/transaction/TXN-Z", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPedDetails_UpdatePreservesCreatedAtAndTransaction(t *testing.T) {
	r, _ := setupPedDetailsRouter(t)

	created := seedPedDetail(t, r, model.PedDetail{TransactionID: "TXN-A", Country: "US", DocumentType: "IDs"})

	update := created
	update.TransactionID = "TXN-REWRITTEN"
	update.State = "TX"
	update.LoadedToSfm = true

	w := doJSON(t, r, http.MethodPut, "/api/ped-details/1", update)
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.PedDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "TXN-A", updated.TransactionID, "transaction id is immutable")
	require.Equal(t, "TX", updated.State)
	require.True(t, updated.LoadedToSfm)
	require.Equal(t, created.CreatedAt.UTC(), updated.CreatedAt.UTC(), "update must not change created_at")
}

func TestPedDetails_Delete(t *testing.T) {
	r, _ := setupPedDetailsRouter(t)

	seedPedDetail(t, r, model.PedDetail{TransactionID: "TXN-A", Country: "US", DocumentType: "IDs"})

	w := doJSON(t, r, http.MethodDelete, "/api/ped-details/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "deleted successfully")

	w = doJSON(t, r, http.MethodDelete, "/api/ped-details/1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
