package handler

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(detail string) map[string]any {
	return map[string]any{"detail": detail}
}

func rateLimitedResponse(retryAfter int) map[string]any {
	return map[string]any{
		"detail":      "too many attempts, please retry later",
		"retry_after": retryAfter,
	}
}
