package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedtrack/internal/model"
	"pedtrack/internal/store"
)

func setupCollectorQueriesRouter(t *testing.T) (*mux.Router, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	h := NewCollectorQueriesHandler(st, zap.NewNop(), false)
	r := mux.NewRouter()
	h.RegisterRoutes(r, zap.NewNop())
	return r, st
}

func TestCollectorQueries_CreateDefaultsToActive(t *testing.T) {
	r, _ := setupCollectorQueriesRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/collector-queries", map[string]interface{}{
		"query_text":           "nederland id card",
		"target_country":       "Netherlands",
		"target_document_type": "IDs",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.CollectorQuery
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.True(t, created.IsActive, "is_active defaults to true when absent")
	require.NotZero(t, created.ID)
}

func TestCollectorQueries_CreateExplicitlyInactive(t *testing.T) {
	r, _ := setupCollectorQueriesRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/collector-queries", map[string]interface{}{
		"query_text":           "israel driver license",
		"target_country":       "Israel",
		"target_document_type": "Driving License",
		"is_active":            false,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.CollectorQuery
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.False(t, created.IsActive)
}

func TestCollectorQueries_CreateMissingTargetCountry(t *testing.T) {
	r, st := setupCollectorQueriesRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/collector-queries", map[string]interface{}{
		"query_text":           "passport scan",
		"target_document_type": "Passport",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "required")

	queries, err := st.ListCollectorQueries(context.Background())
	require.NoError(t, err)
	require.Empty(t, queries, "rejected query must not be persisted")
}

func TestCollectorQueries_ExecuteActiveQuery(t *testing.T) {
	r, st := setupCollectorQueriesRouter(t)

	staleRun := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := model.CollectorQuery{QueryText: "nederland id card", TargetCountry: "Netherlands", TargetDocumentType: "IDs", IsActive: true, LastRunAt: staleRun}
	require.NoError(t, st.CreateCollectorQuery(context.Background(), &q))

	w := doJSON(t, r, http.MethodPost, "/api/collector-queries/1/execute", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp executeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Query executed successfully", resp.Message)
	require.Equal(t, q.ID, resp.QueryID)
	require.NotZero(t, resp.ExecutionID)

	touched, err := st.GetCollectorQuery(context.Background(), q.ID)
	require.NoError(t, err)
	require.True(t, touched.LastRunAt.After(staleRun), "execute must stamp last_run_at")

	execs, err := st.GetExecutionsByQueryID(context.Background(), q.ID)
	require.NoError(t, err)
	require.Len(t, execs, 1)
	require.Equal(t, q.QueryText, execs[0].Query)
	require.False(t, execs[0].IsCompleted, "execution opens in the running state")
	require.Nil(t, execs[0].EndDate)
}

func TestCollectorQueries_ExecuteInactiveQueryRejected(t *testing.T) {
	r, st := setupCollectorQueriesRouter(t)

	lastRun := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := model.CollectorQuery{QueryText: "old query", TargetCountry: "Spain", TargetDocumentType: "IDs", IsActive: false, LastRunAt: lastRun}
	require.NoError(t, st.CreateCollectorQuery(context.Background(), &q))

	w := doJSON(t, r, http.MethodPost, "/api/collector-queries/1/execute", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Query is not active")

	unchanged, err := st.GetCollectorQuery(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, lastRun, unchanged.LastRunAt, "rejected execute must not stamp last_run_at")

	execs, err := st.GetExecutionsByQueryID(context.Background(), q.ID)
	require.NoError(t, err)
	require.Empty(t, execs)
}

func TestCollectorQueries_ExecuteMissingQuery(t *testing.T) {
	r, _ := setupCollectorQueriesRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/collector-queries/42/execute", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Collector query not found")
}

func TestCollectorQueries_UpdateStampsLastRun(t *testing.T) {
	r, st := setupCollectorQueriesRouter(t)

	q := model.CollectorQuery{QueryText: "v1", TargetCountry: "Brazil", TargetDocumentType: "IDs", IsActive: true}
	require.NoError(t, st.CreateCollectorQuery(context.Background(), &q))

	before := time.Now().UTC()
	w := doJSON(t, r, http.MethodPut, "/api/collector-queries/1", map[string]interface{}{
		"query_text":           "v2",
		"target_country":       "Brazil",
		"target_document_type": "IDs",
		"is_active":            false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.CollectorQuery
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "v2", updated.QueryText)
	require.False(t, updated.IsActive)
	require.False(t, updated.LastRunAt.Before(before), "update refreshes last_run_at")
}
