package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pedtrack/internal/model"
	"pedtrack/internal/store"
)

// SourceURLsHandler serves the discovery provenance collection.
type SourceURLsHandler struct {
	store  store.Store
	logger *zap.Logger
	dev    bool
}

func NewSourceURLsHandler(st store.Store, logger *zap.Logger, dev bool) *SourceURLsHandler {
	return &SourceURLsHandler{store: st, logger: logger.Named("source_urls"), dev: dev}
}

// RegisterRoutes registers the routes for this handler
func (h *SourceURLsHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.HandleFunc("/api/source-urls", h.handleList).Methods("GET")
	router.HandleFunc("/api/source-urls/transaction/{transactionId}", h.handleGetByTransaction).Methods("GET")
	router.HandleFunc("/api/source-urls/{id:[0-9]+}", h.handleGet).Methods("GET")
	router.HandleFunc("/api/source-urls", h.handleCreate).Methods("POST")
	router.HandleFunc("/api/source-urls/{id:[0-9]+}", h.handleUpdate).Methods("PUT")
	router.HandleFunc("/api/source-urls/{id:[0-9]+}", h.handleDelete).Methods("DELETE")
}

// validateRecordURL checks that a stored discovery artifact is a
// well-formed absolute http(s) URL. The service never fetches these.
func validateRecordURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s (only http and https are allowed)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL host is required")
	}
	return nil
}

func (h *SourceURLsHandler) handleList(w http.ResponseWriter, req *http.Request) {
	sources, err := h.store.ListSourceURLs(req.Context())
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching source URLs", h.dev)
		return
	}
	if sources == nil {
		sources = []model.SourceURL{}
	}
	writeJSON(w, http.StatusOK, sources)
}

func (h *SourceURLsHandler) handleGet(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	src, err := h.store.GetSourceURL(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "Source URL not found", "Error fetching source URL", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (h *SourceURLsHandler) handleGetByTransaction(w http.ResponseWriter, req *http.Request) {
	transactionID := mux.Vars(req)["transactionId"]
	sources, err := h.store.GetSourceURLsByTransactionID(req.Context(), transactionID)
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching source URLs", h.dev)
		return
	}
	if len(sources) == 0 {
		respondMessage(w, http.StatusNotFound, "No source URLs found for this transaction ID")
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

func (h *SourceURLsHandler) handleCreate(w http.ResponseWriter, req *http.Request) {
	var src model.SourceURL
	if !decodeBody(w, req, &src) {
		return
	}
	if src.TransactionID == "" || src.ImageURL == "" || src.PageURL == "" {
		respondMessage(w, http.StatusBadRequest, "Transaction ID, image URL, and page URL are required")
		return
	}
	if err := validateRecordURL(src.ImageURL); err != nil {
		respondMessage(w, http.StatusBadRequest, "Valid image URL is required")
		return
	}
	if err := validateRecordURL(src.PageURL); err != nil {
		respondMessage(w, http.StatusBadRequest, "Valid page URL is required")
		return
	}

	src.ID = 0
	if err := h.store.CreateSourceURL(req.Context(), &src); err != nil {
		respondStoreError(h.logger, w, err, "", "Error creating source URL", h.dev)
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

func (h *SourceURLsHandler) handleUpdate(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	var body model.SourceURL
	if !decodeBody(w, req, &body) {
		return
	}
	if body.ImageURL != "" {
		if err := validateRecordURL(body.ImageURL); err != nil {
			respondMessage(w, http.StatusBadRequest, "Valid image URL is required")
			return
		}
	}
	if body.PageURL != "" {
		if err := validateRecordURL(body.PageURL); err != nil {
			respondMessage(w, http.StatusBadRequest, "Valid page URL is required")
			return
		}
	}

	existing, err := h.store.GetSourceURL(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "Source URL not found", "Error updating source URL", h.dev)
		return
	}

	updated := existing
	updated.TransactionID = body.TransactionID
	updated.ImageURL = body.ImageURL
	updated.PageURL = body.PageURL

	if err := h.store.UpdateSourceURL(req.Context(), &updated); err != nil {
		respondStoreError(h.logger, w, err, "Source URL not found", "Error updating source URL", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *SourceURLsHandler) handleDelete(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	if err := h.store.DeleteSourceURL(req.Context(), id); err != nil {
		respondStoreError(h.logger, w, err, "Source URL not found", "Error deleting source URL", h.dev)
		return
	}
	respondMessage(w, http.StatusOK, "Source URL deleted successfully")
}
