package web

import (
	"encoding/json"
	"net/http"
	"time"
)

// respond writes the standard success envelope
func respond(w http.ResponseWriter, data any, stats map[string]int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "success",
		"data":      data,
		"stats":     stats,
		"timestamp": time.Now().UTC(),
	})
}

// respondError writes an error envelope with the given HTTP status
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "error",
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
