package handler

import (
	"encoding/json"
	"net/http"
)

// DataEnvelope is the single response shape of the API. DATA is always a
// JSON array; ERROR is set only on failure.
type DataEnvelope struct {
	Data  interface{} `json:"DATA"`
	Error string      `json:"ERROR,omitempty"`
}

// MessageResponse is the DATA item for calls that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, DataEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, DataEnvelope{Data: []interface{}{}, Error: msg})
}

// one wraps a single item as the DATA array.
func one(v interface{}) []interface{} {
	return []interface{}{v}
}
