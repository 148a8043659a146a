package httpadapter

import (
	"encoding/json"
	"net/http"
)

type claimRequest struct {
	UserID   string `json:"user_id"`
	Index    *int   `json:"index"`
	Category string `json:"category"`
	Label    string `json:"label"`
}

// handleClaim runs the client-proposed path. The body carries the ring
// index the client animation landed on plus its claimed category/label;
// the engine recomputes everything server-side.
func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "bad_request")
		return
	}
	if req.UserID == "" || req.Index == nil {
		writeError(w, http.StatusBadRequest, "missing user_id or index", "bad_request")
		return
	}
	res, err := h.svc.ValidateAndSettle(r.Context(), req.UserID, *req.Index, req.Category, req.Label)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, res)
}
