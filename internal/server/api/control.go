package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// StatusHandler serves GET /api/status.
type StatusHandler struct {
	ctrl Controller
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(ctrl Controller) *StatusHandler {
	return &StatusHandler{ctrl: ctrl}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// ToggleHandler serves POST requests that start or stop one task.
// GET reports whether the task is running.
type ToggleHandler struct {
	name    string
	ctrl    Controller
	set     func(bool) error
	enabled func(Status) bool
}

// NewTrackingHandler serves /api/tracking.
func NewTrackingHandler(ctrl Controller) *ToggleHandler {
	return &ToggleHandler{
		name:    "tracking",
		ctrl:    ctrl,
		set:     ctrl.SetTracking,
		enabled: func(s Status) bool { return s.Tracking },
	}
}

// NewVoiceHandler serves /api/voice.
func NewVoiceHandler(ctrl Controller) *ToggleHandler {
	return &ToggleHandler{
		name:    "voice",
		ctrl:    ctrl,
		set:     ctrl.SetVoice,
		enabled: func(s Status) bool { return s.Voice },
	}
}

func (h *ToggleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.respond(w)
	case http.MethodPost, http.MethodPut:
		var req toggleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		if err := h.set(*req.Enabled); err != nil {
			log.Printf("Failed to switch %s: %v", h.name, err)
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.respond(w)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ToggleHandler) respond(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": h.enabled(h.ctrl.Status())})
}
