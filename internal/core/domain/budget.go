package domain

import "time"

// PacingMode controls how aggressively the budget may be spent on
// expensive slices.
type PacingMode string

const (
	// PacingAuto paces spend toward a target spin count.
	PacingAuto PacingMode = "auto"
	// PacingTargetExpense caps spend per day and per trailing N spins.
	PacingTargetExpense PacingMode = "target_expense"
	// PacingManual applies no automatic pacing beyond the hard
	// cost <= remaining check. A large total makes this the budget-less
	// compatibility mode.
	PacingManual PacingMode = "manual"
)

// Budget is the finite spend pool of one campaign (1:1). Money fields are
// integer units. Invariant after every settlement: remaining = total - spent.
type Budget struct {
	CampaignID       int64
	Mode             PacingMode
	Total            int64
	Remaining        int64
	Spent            int64
	TargetSpins      int64 // auto mode
	DailyExpenseCap  int64 // target-expense mode
	WindowSpins      int64 // target-expense mode: size of the trailing spin window
	WindowExpenseCap int64 // target-expense mode: cap over that window
	TotalSpins       int64
	AvgPayout        int64
	UpdatedAt        time.Time
}

// Exhausted reports whether no paid outcome can be funded at all.
func (b *Budget) Exhausted() bool {
	return b.Remaining <= 0
}

// PlannedPerSpin is the spend-per-spin trajectory for auto pacing, or 0
// when no target spin count is configured.
func (b *Budget) PlannedPerSpin() int64 {
	if b.TargetSpins <= 0 {
		return 0
	}
	return b.Total / b.TargetSpins
}
