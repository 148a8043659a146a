package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type redeemRequest struct {
	Redeemer string `json:"redeemer"`
}

// handleRedeem marks a settled spin as redeemed. It expects a {token}
// path parameter bound by the router. Redeeming twice is idempotent: the
// original redeemer is kept and the spin returned as-is.
func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token", "bad_request")
		return
	}
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "bad_request")
		return
	}
	if req.Redeemer == "" {
		writeError(w, http.StatusBadRequest, "missing redeemer", "bad_request")
		return
	}
	res, err := h.svc.RedeemPrize(r.Context(), token, req.Redeemer)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, res)
}
