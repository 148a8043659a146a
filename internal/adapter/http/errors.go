package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"lucky-wheel/internal/core/port"
)

// apiError is the standard JSON error envelope.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Error: msg, Code: code})
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses. A
// rejected spin always carries a reason; only unclassified errors become a
// 500.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, port.ErrNoLiveCampaign):
		writeError(w, http.StatusNotFound, "wheel unavailable", "no_live_campaign")
	case errors.Is(err, port.ErrSpinLimitReached):
		writeError(w, http.StatusForbidden, "spin limit reached", "spin_limit")
	case errors.Is(err, port.ErrNoEligibleOutcomes):
		writeError(w, http.StatusConflict, "no eligible outcomes, try again later", "exhausted")
	case errors.Is(err, port.ErrInvalidClaim):
		writeError(w, http.StatusBadRequest, "invalid claim", "invalid_claim")
	case errors.Is(err, port.ErrClaimNotEligible):
		writeError(w, http.StatusUnprocessableEntity, "claimed outcome not currently winnable", "claim_not_eligible")
	case errors.Is(err, port.ErrInsufficientBudget), errors.Is(err, port.ErrConflict):
		writeError(w, http.StatusConflict, "spin could not be settled, try again", "settle_conflict")
	case errors.Is(err, port.ErrSpinNotFound):
		writeError(w, http.StatusNotFound, "spin not found", "spin_not_found")
	default:
		h.logger.Error("wheel engine error", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error", "internal")
	}
}
