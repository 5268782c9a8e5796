package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pedtrack/internal/model"
	"pedtrack/internal/store"
)

// CollectorQueriesHandler serves saved search definitions and the execute
// action. Execute stamps last_run_at and opens an Execution record; it
// performs no actual retrieval (collection is a collaborator concern).
type CollectorQueriesHandler struct {
	store  store.Store
	logger *zap.Logger
	dev    bool
}

func NewCollectorQueriesHandler(st store.Store, logger *zap.Logger, dev bool) *CollectorQueriesHandler {
	return &CollectorQueriesHandler{store: st, logger: logger.Named("collector_queries"), dev: dev}
}

// RegisterRoutes registers the routes for this handler
func (h *CollectorQueriesHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.HandleFunc("/api/collector-queries", h.handleList).Methods("GET")
	router.HandleFunc("/api/collector-queries/{id:[0-9]+}", h.handleGet).Methods("GET")
	router.HandleFunc("/api/collector-queries", h.handleCreate).Methods("POST")
	router.HandleFunc("/api/collector-queries/{id:[0-9]+}", h.handleUpdate).Methods("PUT")
	router.HandleFunc("/api/collector-queries/{id:[0-9]+}", h.handleDelete).Methods("DELETE")
	router.HandleFunc("/api/collector-queries/{id:[0-9]+}/execute", h.handleExecute).Methods("POST")
}

// collectorQueryRequest distinguishes an absent is_active flag (defaults
// to active) from an explicit false.
type collectorQueryRequest struct {
	QueryText          string `json:"query_text"`
	TargetCountry      string `json:"target_country"`
	TargetDocumentType string `json:"target_document_type"`
	IsActive           *bool  `json:"is_active"`
}

type executeResponse struct {
	Message     string    `json:"message"`
	QueryID     int64     `json:"queryId"`
	ExecutionID int64     `json:"executionId"`
	ExecutedAt  time.Time `json:"executedAt"`
}

func (h *CollectorQueriesHandler) handleList(w http.ResponseWriter, req *http.Request) {
	queries, err := h.store.ListCollectorQueries(req.Context())
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching collector queries", h.dev)
		return
	}
	if queries == nil {
		queries = []model.CollectorQuery{}
	}
	writeJSON(w, http.StatusOK, queries)
}

func (h *CollectorQueriesHandler) handleGet(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	query, err := h.store.GetCollectorQuery(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "Collector query not found", "Error fetching collector query", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, query)
}

func (h *CollectorQueriesHandler) handleCreate(w http.ResponseWriter, req *http.Request) {
	var body collectorQueryRequest
	if !decodeBody(w, req, &body) {
		return
	}
	if body.QueryText == "" || body.TargetCountry == "" || body.TargetDocumentType == "" {
		respondMessage(w, http.StatusBadRequest, "Query text, target country, and target document type are required")
		return
	}

	query := model.CollectorQuery{
		QueryText:          body.QueryText,
		TargetCountry:      body.TargetCountry,
		TargetDocumentType: body.TargetDocumentType,
		IsActive:           true,
	}
	if body.IsActive != nil {
		query.IsActive = *body.IsActive
	}

	if err := h.store.CreateCollectorQuery(req.Context(), &query); err != nil {
		respondStoreError(h.logger, w, err, "", "Error creating collector query", h.dev)
		return
	}
	writeJSON(w, http.StatusCreated, query)
}

func (h *CollectorQueriesHandler) handleUpdate(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	var body collectorQueryRequest
	if !decodeBody(w, req, &body) {
		return
	}

	existing, err := h.store.GetCollectorQuery(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "Collector query not found", "Error updating collector query", h.dev)
		return
	}

	updated := existing
	updated.QueryText = body.QueryText
	updated.TargetCountry = body.TargetCountry
	updated.TargetDocumentType = body.TargetDocumentType
	if body.IsActive != nil {
		updated.IsActive = *body.IsActive
	}
	updated.LastRunAt = time.Now().UTC()

	if err := h.store.UpdateCollectorQuery(req.Context(), &updated); err != nil {
		respondStoreError(h.logger, w, err, "Collector query not found", "Error updating collector query", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CollectorQueriesHandler) handleDelete(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	if err := h.store.DeleteCollectorQuery(req.Context(), id); err != nil {
		respondStoreError(h.logger, w, err, "Collector query not found", "Error deleting collector query", h.dev)
		return
	}
	respondMessage(w, http.StatusOK, "Collector query deleted successfully")
}

// handleExecute stamps last_run_at and opens a running Execution for the
// query. Inactive queries are rejected before any write.
func (h *CollectorQueriesHandler) handleExecute(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	query, err := h.store.GetCollectorQuery(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "Collector query not found", "Error executing collector query", h.dev)
		return
	}
	if !query.IsActive {
		respondMessage(w, http.StatusBadRequest, "Query is not active")
		return
	}

	runAt := time.Now().UTC()
	if err := h.store.TouchCollectorQuery(req.Context(), id, runAt); err != nil {
		respondStoreError(h.logger, w, err, "Collector query not found", "Error executing collector query", h.dev)
		return
	}

	exec := model.Execution{
		QueryID:   query.ID,
		StartDate: runAt,
		Query:     query.QueryText,
	}
	if err := h.store.CreateExecution(req.Context(), &exec); err != nil {
		respondStoreError(h.logger, w, err, "", "Error executing collector query", h.dev)
		return
	}

	h.logger.Info("collector query executed",
		zap.Int64("query_id", query.ID),
		zap.Int64("execution_id", exec.ID))

	writeJSON(w, http.StatusOK, executeResponse{
		Message:     "Query executed successfully",
		QueryID:     query.ID,
		ExecutionID: exec.ID,
		ExecutedAt:  runAt,
	})
}
