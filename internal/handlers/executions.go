package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pedtrack/internal/model"
	"pedtrack/internal/store"
)

// ExecutionsHandler serves historical collector query runs. Executions are
// deliberately not cascade-deleted with their query.
type ExecutionsHandler struct {
	store  store.Store
	logger *zap.Logger
	dev    bool
}

func NewExecutionsHandler(st store.Store, logger *zap.Logger, dev bool) *ExecutionsHandler {
	return &ExecutionsHandler{store: st, logger: logger.Named("executions"), dev: dev}
}

// RegisterRoutes registers the routes for this handler
func (h *ExecutionsHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.HandleFunc("/api/executions", h.handleList).Methods("GET")
	router.HandleFunc("/api/executions/query/{queryId:[0-9]+}", h.handleGetByQuery).Methods("GET")
	router.HandleFunc("/api/executions/{id:[0-9]+}", h.handleGet).Methods("GET")
	router.HandleFunc("/api/executions", h.handleCreate).Methods("POST")
	router.HandleFunc("/api/executions/{id:[0-9]+}", h.handleUpdate).Methods("PUT")
	router.HandleFunc("/api/executions/{id:[0-9]+}", h.handleDelete).Methods("DELETE")
}

func (h *ExecutionsHandler) handleList(w http.ResponseWriter, req *http.Request) {
	execs, err := h.store.ListExecutions(req.Context())
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching executions", h.dev)
		return
	}
	if execs == nil {
		execs = []model.Execution{}
	}
	writeJSON(w, http.StatusOK, execs)
}

func (h *ExecutionsHandler) handleGet(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	exec, err := h.store.GetExecution(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "Execution not found", "Error fetching execution", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

func (h *ExecutionsHandler) handleGetByQuery(w http.ResponseWriter, req *http.Request) {
	queryID, err := strconv.ParseInt(mux.Vars(req)["queryId"], 10, 64)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "ID must be an integer")
		return
	}
	execs, err := h.store.GetExecutionsByQueryID(req.Context(), queryID)
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching executions", h.dev)
		return
	}
	if len(execs) == 0 {
		respondMessage(w, http.StatusNotFound, "No executions found for this query ID")
		return
	}
	writeJSON(w, http.StatusOK, execs)
}

func (h *ExecutionsHandler) handleCreate(w http.ResponseWriter, req *http.Request) {
	var exec model.Execution
	if !decodeBody(w, req, &exec) {
		return
	}
	if exec.QueryID <= 0 {
		respondMessage(w, http.StatusBadRequest, "Query ID is required")
		return
	}

	exec.ID = 0
	if err := h.store.CreateExecution(req.Context(), &exec); err != nil {
		respondStoreError(h.logger, w, err, "", "Error creating execution", h.dev)
		return
	}
	writeJSON(w, http.StatusCreated, exec)
}

// handleUpdate records run completion: end date, completion flag and the
// number of documents found.
func (h *ExecutionsHandler) handleUpdate(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	var body model.Execution
	if !decodeBody(w, req, &body) {
		return
	}

	existing, err := h.store.GetExecution(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "Execution not found", "Error updating execution", h.dev)
		return
	}

	updated := existing
	updated.EndDate = body.EndDate
	updated.IsCompleted = body.IsCompleted
	updated.FoundDocuments = body.FoundDocuments

	if err := h.store.UpdateExecution(req.Context(), &updated); err != nil {
		respondStoreError(h.logger, w, err, "Execution not found", "Error updating execution", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ExecutionsHandler) handleDelete(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	if err := h.store.DeleteExecution(req.Context(), id); err != nil {
		respondStoreError(h.logger, w, err, "Execution not found", "Error deleting execution", h.dev)
		return
	}
	respondMessage(w, http.StatusOK, "Execution deleted successfully")
}
