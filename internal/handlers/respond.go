package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pedtrack/internal/store"
)

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageBody{Message: message})
}

// respondStoreError maps the error taxonomy to the wire: ErrNotFound to a
// 404 {message}, everything else to a 500 {message, error} where the raw
// detail is only surfaced in a development configuration.
func respondStoreError(logger *zap.Logger, w http.ResponseWriter, err error, notFoundMsg, failMsg string, dev bool) {
	if errors.Is(err, store.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, notFoundMsg)
		return
	}
	logger.Error(failMsg, zap.Error(err))
	body := errorBody{Message: failMsg, Error: "Internal Server Error"}
	if dev {
		body.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

// pathID extracts the {id} route variable. A non-integer id is a
// validation failure, reported before any store access.
func pathID(w http.ResponseWriter, req *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "ID must be an integer")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, req *http.Request, v interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
