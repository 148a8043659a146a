package domain

import "time"

// Spin is the immutable record of one settled wheel outcome. Only
// BonusSent and the redemption fields may change after creation, and only
// through their dedicated operations.
type Spin struct {
	ID         int64
	Token      string
	CampaignID int64
	SliceID    int64
	SliceIndex int
	UserID     string
	Category   Category
	Label      string
	Value      *string
	Cost       int64
	BonusSent  bool
	Redeemed   bool
	RedeemedBy *string
	RedeemedAt *time.Time
	CreatedAt  time.Time
}
