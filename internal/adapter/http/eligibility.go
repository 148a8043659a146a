package httpadapter

import "net/http"

// handleEligibility returns the ring indices the user may land on plus a
// budget summary. Read-only; the client constrains its animation to the
// returned indices.
func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id", "bad_request")
		return
	}
	out, err := h.svc.GetEligibleOutcomes(r.Context(), userID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, out)
}
