package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// MaxActivityLimit caps the limit query parameter.
const MaxActivityLimit = 1000

// ActivityHandler serves GET /api/activity?limit=N&type=T.
type ActivityHandler struct {
	store *store.Store
}

// NewActivityHandler creates a new ActivityHandler with the given store.
func NewActivityHandler(s *store.Store) *ActivityHandler {
	return &ActivityHandler{store: s}
}

type activityListResponse struct {
	Activity []*store.Activity `json:"activity"`
}

func (h *ActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := store.DefaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, MaxActivityLimit)
	}

	list, err := h.store.Activity().List(r.URL.Query().Get("type"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activity")
		return
	}
	if list == nil {
		list = []*store.Activity{}
	}

	writeJSON(w, http.StatusOK, activityListResponse{Activity: list})
}
