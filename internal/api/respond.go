package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sindrigils/restfulapi-anime/internal/domain"
	"github.com/sindrigils/restfulapi-anime/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps a domain error to its status code. notFoundMsg overrides
// the body for 404s so each read endpoint keeps its own phrasing; pass ""
// for the default. Unclassified errors become a generic 500 — internal
// detail is logged, never echoed to the caller.
func writeError(w http.ResponseWriter, err error, notFoundMsg string) {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		msg := notFoundMsg
		if msg == "" {
			msg = "not found"
		}
		writeJSON(w, http.StatusNotFound, errorBody{Error: msg})
	case errors.Is(err, domain.ErrEmptyUpdate):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "no fields provided for update, or some field names are incorrect"})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "could not validate credentials"})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validation.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: conflict.Error()})
	default:
		logging.Op().Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "an unexpected error occurred"})
	}
}
