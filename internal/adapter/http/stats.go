package httpadapter

import (
	"net/http"
	"strconv"
	"time"

	"lucky-wheel/internal/core/port"
)

// handleStatsOverview returns aggregated spin statistics over a specified
// period. It accepts optional `from`, `to` (RFC3339 timestamps) and
// `campaign_id` query parameters. If no period is provided, it defaults to
// the last 24 hours. Invalid parameters result in HTTP 400.
func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	var (
		q       = r.URL.Query()
		fromStr = q.Get("from")
		toStr   = q.Get("to")
		req     port.StatsReq
		err     error
	)

	if fromStr != "" {
		req.From, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'from' timestamp", "bad_request")
			return
		}
	} else {
		req.From = time.Now().Add(-24 * time.Hour)
	}

	if toStr != "" {
		req.To, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'to' timestamp", "bad_request")
			return
		}
	} else {
		req.To = time.Now()
	}

	if cid := q.Get("campaign_id"); cid != "" {
		id, err := strconv.ParseInt(cid, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid campaign_id", "bad_request")
			return
		}
		req.CampaignID = &id
	}

	stats, err := h.svc.GetStats(r.Context(), req)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, stats)
}
