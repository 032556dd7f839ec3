package api

import (
	"encoding/json"
	"net/http"
)

type settingsPayload struct {
	Smoothing *int `json:"smoothing"`
}

type settingsResponse struct {
	Smoothing int `json:"smoothing"`
}

// SettingsHandler serves GET and PUT /api/settings. Changes last for the
// current session only.
type SettingsHandler struct {
	ctrl Controller
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(ctrl Controller) *SettingsHandler {
	return &SettingsHandler{ctrl: ctrl}
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, settingsResponse{Smoothing: h.ctrl.Status().Smoothing})
	case http.MethodPut, http.MethodPatch:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Smoothing == nil {
		writeError(w, http.StatusBadRequest, "smoothing is required")
		return
	}

	applied := h.ctrl.SetSmoothing(*req.Smoothing)
	writeJSON(w, http.StatusOK, settingsResponse{Smoothing: applied})
}
