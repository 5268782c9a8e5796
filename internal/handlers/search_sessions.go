package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pedtrack/internal/model"
	"pedtrack/internal/store"
)

// SearchSessionsHandler serves the search session collection.
type SearchSessionsHandler struct {
	store  store.Store
	logger *zap.Logger
	dev    bool
}

func NewSearchSessionsHandler(st store.Store, logger *zap.Logger, dev bool) *SearchSessionsHandler {
	return &SearchSessionsHandler{store: st, logger: logger.Named("search_sessions"), dev: dev}
}

// RegisterRoutes registers the routes for this handler
func (h *SearchSessionsHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.HandleFunc("/api/search-sessions", h.handleList).Methods("GET")
	router.HandleFunc("/api/search-sessions/transaction/{transactionId}", h.handleGetByTransaction).Methods("GET")
	router.HandleFunc("/api/search-sessions/{id:[0-9]+}", h.handleGet).Methods("GET")
	router.HandleFunc("/api/search-sessions", h.handleCreate).Methods("POST")
	router.HandleFunc("/api/search-sessions/{id:[0-9]+}", h.handleUpdate).Methods("PUT")
	router.HandleFunc("/api/search-sessions/{id:[0-9]+}", h.handleDelete).Methods("DELETE")
}

func (h *SearchSessionsHandler) handleList(w http.ResponseWriter, req *http.Request) {
	sessions, err := h.store.ListSearchSessions(req.Context())
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching search sessions", h.dev)
		return
	}
	if sessions == nil {
		sessions = []model.SearchSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *SearchSessionsHandler) handleGet(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	session, err := h.store.GetSearchSession(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "Search session not found", "Error fetching search session", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SearchSessionsHandler) handleGetByTransaction(w http.ResponseWriter, req *http.Request) {
	transactionID := mux.Vars(req)["transactionId"]
	sessions, err := h.store.GetSearchSessionsByTransactionID(req.Context(), transactionID)
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching search sessions", h.dev)
		return
	}
	if len(sessions) == 0 {
		respondMessage(w, http.StatusNotFound, "No search sessions found for this transaction ID")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *SearchSessionsHandler) handleCreate(w http.ResponseWriter, req *http.Request) {
	var session model.SearchSession
	if !decodeBody(w, req, &session) {
		return
	}
	if session.TransactionID == "" || session.SearchCountry == "" || session.SearchDocumentType == "" {
		respondMessage(w, http.StatusBadRequest, "Transaction ID, search country, and search document type are required")
		return
	}

	session.ID = 0
	if err := h.store.CreateSearchSession(req.Context(), &session); err != nil {
		respondStoreError(h.logger, w, err, "", "Error creating search session", h.dev)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *SearchSessionsHandler) handleUpdate(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	var body model.SearchSession
	if !decodeBody(w, req, &body) {
		return
	}

	existing, err := h.store.GetSearchSession(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "Search session not found", "Error updating search session", h.dev)
		return
	}

	updated := existing
	updated.TransactionID = body.TransactionID
	updated.SearchCountry = body.SearchCountry
	updated.SearchDocumentType = body.SearchDocumentType

	if err := h.store.UpdateSearchSession(req.Context(), &updated); err != nil {
		respondStoreError(h.logger, w, err, "Search session not found", "Error updating search session", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *SearchSessionsHandler) handleDelete(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	if err := h.store.DeleteSearchSession(req.Context(), id); err != nil {
		respondStoreError(h.logger, w, err, "Search session not found", "Error deleting search session", h.dev)
		return
	}
	respondMessage(w, http.StatusOK, "Search session deleted successfully")
}
