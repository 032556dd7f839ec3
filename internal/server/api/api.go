// Package api provides HTTP API handlers for Mudra.
package api

import (
	"encoding/json"
	"net/http"
)

// Status is the runtime state reported by GET /api/status.
type Status struct {
	Tracking    bool   `json:"tracking"`
	Voice       bool   `json:"voice"`
	VoiceStatus string `json:"voice_status"`
	Mode        string `json:"mode"`
	HandPresent bool   `json:"hand_present"`
	Dragging    bool   `json:"dragging"`
	Smoothing   int    `json:"smoothing"`
	FPS         int    `json:"fps"`
}

// Controller is the running application as seen by the HTTP API.
type Controller interface {
	Status() Status
	SetTracking(enabled bool) error
	SetVoice(enabled bool) error
	// SetSmoothing applies a new smoothing window and returns the clamped value.
	SetSmoothing(n int) int
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
