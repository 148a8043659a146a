package domain

import "time"

// Slice is one prize segment on the wheel's fixed ring. Order is the
// position index on the ring (15 positions in the reference layout, any
// N >= 2 supported). Costs are stored in integer units (e.g. cents).
type Slice struct {
	ID          int64
	CampaignID  int64
	Order       int
	Label       string
	Category    Category
	Value       *string // display value, e.g. amount or discount percent
	Cost        int64
	Enabled     bool
	MaxWins     *int // nil means uncapped
	CurrentWins int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WinsExhausted reports whether the slice has reached its max-win cap.
func (s *Slice) WinsExhausted() bool {
	return s.MaxWins != nil && s.CurrentWins >= *s.MaxWins
}
