package port

import (
	"context"
	"errors"

	"lucky-wheel/internal/core/domain"
)

var (
	// ErrSpinLimitReached means the user exhausted their per-campaign
	// spin allowance. Expected and user-facing, not a system fault.
	ErrSpinLimitReached = errors.New("spin limit reached")
	// ErrNoEligibleOutcomes means even the zero-cost fallback is empty.
	ErrNoEligibleOutcomes = errors.New("no eligible outcomes")
	// ErrInvalidClaim is a client-proposed outcome whose ring index does
	// not exist. Rejected outright, never coerced into a valid spin.
	ErrInvalidClaim = errors.New("invalid claim")
	// ErrClaimNotEligible is a well-formed claim whose index is outside
	// the currently eligible set for the user and budget state.
	ErrClaimNotEligible = errors.New("claimed outcome not eligible")
)

// WheelUseCase is the primary port into the wheel engine. All budget and
// eligibility state is recomputed server-side on every call; client input
// is never trusted for cost or category.
type WheelUseCase interface {
	// GetEligibleOutcomes returns the ring indices the user may legally
	// land on right now, plus a budget summary. Read-only.
	GetEligibleOutcomes(ctx context.Context, userID string) (*EligibleOutcomes, error)
	// SelectOutcome is the server-authoritative path: pick one eligible
	// slice via the pacing selector and settle it.
	SelectOutcome(ctx context.Context, userID string) (*SpinResult, error)
	// ValidateAndSettle is the client-proposed path: recompute cost and
	// eligibility for the claimed ring index and settle the canonical
	// slice data, or reject.
	ValidateAndSettle(ctx context.Context, userID string, claimedIndex int, claimedCategory, claimedLabel string) (*SpinResult, error)
	// RedeemPrize marks a settled spin as redeemed. Idempotent.
	RedeemPrize(ctx context.Context, token, redeemer string) (*SpinResult, error)
	// GetStats returns spin aggregates for operators.
	GetStats(ctx context.Context, req StatsReq) (*StatsResp, error)
}

// EligibleOutcomes constrains what a client-side wheel animation may land
// on. Indices refer to ring positions, not slice IDs.
type EligibleOutcomes struct {
	AllowedIndices  []int `json:"allowed_indices"`
	BudgetRemaining int64 `json:"budget_remaining"`
	BudgetSpent     int64 `json:"budget_spent"`
	TotalBudget     int64 `json:"total_budget"`
}

// SpinResult is the settled outcome returned to the caller.
type SpinResult struct {
	SpinID     string          `json:"spin_id"`
	SliceIndex int             `json:"slice_index"`
	Category   domain.Category `json:"category"`
	Label      string          `json:"label"`
	Value      *string         `json:"value,omitempty"`
	Cost       int64           `json:"cost"`
}
