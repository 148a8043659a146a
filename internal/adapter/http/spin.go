package httpadapter

import (
	"encoding/json"
	"net/http"
)

type spinRequest struct {
	UserID string `json:"user_id"`
}

// handleSpin runs the server-authoritative path: the engine picks an
// eligible slice via the pacing selector and settles it. Parsing errors
// produce HTTP 400; engine rejections are mapped by writeEngineError.
func (h *Handler) handleSpin(w http.ResponseWriter, r *http.Request) {
	var req spinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "bad_request")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id", "bad_request")
		return
	}
	res, err := h.svc.SelectOutcome(r.Context(), req.UserID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, res)
}
