package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pedtrack/internal/filter"
	"pedtrack/internal/model"
	"pedtrack/internal/store"
)

// PedDetailsHandler serves the PED detail collection, including the
// filterable list endpoint and the per-country states facet.
type PedDetailsHandler struct {
	store  store.Store
	logger *zap.Logger
	dev    bool
}

func NewPedDetailsHandler(st store.Store, logger *zap.Logger, dev bool) *PedDetailsHandler {
	return &PedDetailsHandler{store: st, logger: logger.Named("ped_details"), dev: dev}
}

// RegisterRoutes registers the routes for this handler
func (h *PedDetailsHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.HandleFunc("/api/ped-details", h.handleList).Methods("GET")
	router.HandleFunc("/api/ped-details/states/{country}", h.handleStates).Methods("GET")
	router.HandleFunc("/api/ped-details/transaction/{transactionId}", h.handleGetByTransaction).Methods("GET")
	router.HandleFunc("/api/ped-details/{id:[0-9]+}", h.handleGet).Methods("GET")
	router.HandleFunc("/api/ped-details", h.handleCreate).Methods("POST")
	router.HandleFunc("/api/ped-details/{id:[0-9]+}", h.handleUpdate).Methods("PUT")
	router.HandleFunc("/api/ped-details/{id:[0-9]+}", h.handleDelete).Methods("DELETE")
}

// handleList returns the full collection filtered by the query-parameter
// FilterSpec. No pagination; filtering runs over the fetched set so the
// REST contract and client-side filtering share one engine.
func (h *PedDetailsHandler) handleList(w http.ResponseWriter, req *http.Request) {
	records, err := h.store.ListPedDetails(req.Context())
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching PED details", h.dev)
		return
	}

	spec := filter.ParseSpec(req.URL.Query())
	filtered := filter.Apply(records, spec)
	if filtered == nil {
		filtered = []model.PedDetail{}
	}
	writeJSON(w, http.StatusOK, filtered)
}

func (h *PedDetailsHandler) handleStates(w http.ResponseWriter, req *http.Request) {
	records, err := h.store.ListPedDetails(req.Context())
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching PED details", h.dev)
		return
	}

	states := filter.StatesForCountry(records, mux.Vars(req)["country"])
	if states == nil {
		states = []string{}
	}
	writeJSON(w, http.StatusOK, states)
}

func (h *PedDetailsHandler) handleGet(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	detail, err := h.store.GetPedDetail(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "PED detail not found", "Error fetching PED detail", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *PedDetailsHandler) handleGetByTransaction(w http.ResponseWriter, req *http.Request) {
	transactionID := mux.Vars(req)["transactionId"]
	details, err := h.store.GetPedDetailsByTransactionID(req.Context(), transactionID)
	if err != nil {
		respondStoreError(h.logger, w, err, "", "Error fetching PED details", h.dev)
		return
	}
	if len(details) == 0 {
		respondMessage(w, http.StatusNotFound, "No PED details found for this transaction ID")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *PedDetailsHandler) handleCreate(w http.ResponseWriter, req *http.Request) {
	var detail model.PedDetail
	if !decodeBody(w, req, &detail) {
		return
	}
	if detail.TransactionID == "" || detail.DocumentType == "" || detail.Country == "" {
		respondMessage(w, http.StatusBadRequest, "Transaction ID, document type, and country are required")
		return
	}

	detail.ID = 0
	if err := h.store.CreatePedDetail(req.Context(), &detail); err != nil {
		respondStoreError(h.logger, w, err, "", "Error creating PED detail", h.dev)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (h *PedDetailsHandler) handleUpdate(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	var body model.PedDetail
	if !decodeBody(w, req, &body) {
		return
	}

	existing, err := h.store.GetPedDetail(req.Context(), id)
	if err != nil {
		respondStoreError(h.logger, w, err, "PED detail not found", "Error updating PED detail", h.dev)
		return
	}

	// In-place field replacement; id, transaction id and created_at are
	// immutable through this endpoint.
	updated := existing
	updated.SessionID = body.SessionID
	updated.ImageURL = body.ImageURL
	updated.PageURL = body.PageURL
	updated.Country = body.Country
	updated.CountryCode = body.CountryCode
	updated.DocumentType = body.DocumentType
	updated.DocumentTypeCode = body.DocumentTypeCode
	updated.State = body.State
	updated.LoadedToSfm = body.LoadedToSfm

	if err := h.store.UpdatePedDetail(req.Context(), &updated); err != nil {
		respondStoreError(h.logger, w, err, "PED detail not found", "Error updating PED detail", h.dev)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PedDetailsHandler) handleDelete(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	if err := h.store.DeletePedDetail(req.Context(), id); err != nil {
		respondStoreError(h.logger, w, err, "PED detail not found", "Error deleting PED detail", h.dev)
		return
	}
	respondMessage(w, http.StatusOK, "PED detail deleted successfully")
}
