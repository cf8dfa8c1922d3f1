package handler

import "net/http"

// Health answers liveness probes outside the API envelope.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}
