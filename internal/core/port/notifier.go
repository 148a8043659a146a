package port

import (
	"context"

	"lucky-wheel/internal/core/domain"
)

// PayoutEvent tells the chat/notification collaborator that a user won a
// paid outcome.
type PayoutEvent struct {
	SpinToken string          `json:"spin_token"`
	UserID    string          `json:"user_id"`
	Category  domain.Category `json:"category"`
	Label     string          `json:"label"`
	Value     *string         `json:"value,omitempty"`
	Cost      int64           `json:"cost"`
}

// Notifier delivers fire-and-forget payout events. Settlement never rolls
// back on a notifier failure; implementations should be fast and may drop
// events on broker outages.
type Notifier interface {
	PayoutWon(ctx context.Context, ev PayoutEvent) error
}
