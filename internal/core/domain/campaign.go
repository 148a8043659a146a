package domain

import "time"

// Campaign lifecycle states. At most one campaign is live at a time;
// callers resolve the live campaign once per request and pass the handle
// through explicitly.
const (
	CampaignDraft  = "draft"
	CampaignLive   = "live"
	CampaignPaused = "paused"
)

// Campaign is a time-bounded configuration of the wheel game. Status
// transitions are operator-driven and happen outside the engine.
type Campaign struct {
	ID        int64
	Name      string
	Status    string // draft, live, paused
	StartDate *time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLive reports whether the campaign is live and inside its optional
// date window at the given instant.
func (c *Campaign) IsLive(now time.Time) bool {
	if c.Status != CampaignLive {
		return false
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return false
	}
	return true
}
