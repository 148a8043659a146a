package port

import (
	"context"
	"errors"
	"time"

	"lucky-wheel/internal/core/domain"
)

var (
	// ErrNoLiveCampaign means no campaign is currently live and in-window.
	ErrNoLiveCampaign = errors.New("no live campaign")
	// ErrInsufficientBudget is returned when a settlement would drive the
	// budget negative. The eligibility filter should make this rare; under
	// concurrent spins it is the last line of defense.
	ErrInsufficientBudget = errors.New("insufficient budget")
	// ErrConflict is a transient settlement race (serialization failure or
	// a win cap consumed between eligibility and settlement). Safe to retry.
	ErrConflict = errors.New("settlement conflict")
	// ErrSpinNotFound means no spin exists for the given token.
	ErrSpinNotFound = errors.New("spin not found")
)

// WheelSnapshot is the full configuration of one campaign's wheel, loaded
// once per request and passed through the engine explicitly so eligibility
// and selection never re-derive "the live campaign" ad hoc.
type WheelSnapshot struct {
	Slices []domain.Slice // ordered by ring position
	Budget domain.Budget
	Rules  domain.FairnessRules
}

// WheelRepository is the outbound persistence port of the wheel engine.
// Implementations must be concurrency-safe; SettleSpin must apply the spin
// insert and the budget debit as one atomic unit, serialized per campaign.
type WheelRepository interface {
	// FindLiveCampaign resolves the single live campaign, or
	// ErrNoLiveCampaign when none exists.
	FindLiveCampaign(ctx context.Context) (*domain.Campaign, error)
	// LoadWheel loads slices, budget and fairness rules for a campaign.
	LoadWheel(ctx context.Context, campaignID int64) (*WheelSnapshot, error)
	// CountUserSpins counts settled spins of a user within a campaign.
	CountUserSpins(ctx context.Context, campaignID int64, userID string) (int64, error)
	// HasRecentFreeSpinWin reports whether the user won a free-spin slice
	// in this campaign at or after the given instant.
	HasRecentFreeSpinWin(ctx context.Context, campaignID int64, userID string, since time.Time) (bool, error)
	// SpentSince sums settled spin costs for a campaign from an instant on.
	SpentSince(ctx context.Context, campaignID int64, since time.Time) (int64, error)
	// SpentLastN sums settled spin costs over the trailing n spins.
	SpentLastN(ctx context.Context, campaignID int64, n int64) (int64, error)
	// SettleSpin atomically inserts the spin, debits the budget and
	// increments the winning slice's win counter. It fills in spin.ID and
	// spin.CreatedAt. Returns ErrInsufficientBudget or ErrConflict without
	// having written anything.
	SettleSpin(ctx context.Context, spin *domain.Spin) error
	// FindSpinByToken returns a settled spin, or ErrSpinNotFound.
	FindSpinByToken(ctx context.Context, token string) (*domain.Spin, error)
	// MarkBonusSent flags a spin's payout notification as dispatched.
	MarkBonusSent(ctx context.Context, token string) error
	// RedeemSpin marks a spin redeemed. Already-redeemed spins keep their
	// original redeemer; the call is idempotent.
	RedeemSpin(ctx context.Context, token, redeemer string) (*domain.Spin, error)
	// GetStats returns spin aggregates for a period.
	GetStats(ctx context.Context, req StatsReq) (*StatsResp, error)
}

// StatsReq selects the aggregation period and optionally one campaign.
type StatsReq struct {
	From       time.Time
	To         time.Time
	CampaignID *int64
}

// StatsResp contains aggregated spin counts and cost. Paid counts spins
// with a non-zero cost.
type StatsResp struct {
	Spins int64 `json:"spins"`
	Paid  int64 `json:"paid"`
	Cost  int64 `json:"cost"`
}
