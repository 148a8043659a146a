package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lucky-wheel/internal/config/configs"
	"lucky-wheel/internal/core/domain"
	"lucky-wheel/internal/core/port"
)

// WheelUseCase implements the wheel engine: eligibility filtering, pacing
// selection and settlement orchestration. It holds no per-request state;
// the live campaign is resolved once per call and its configuration passed
// through explicitly.
type WheelUseCase struct {
	repo     port.WheelRepository
	notifier port.Notifier
	logger   *slog.Logger
	cfg      configs.Wheel

	// randInt draws a uniform int in [0, n). Defaults to a CSPRNG so
	// outcomes stay unpredictable; tests inject a deterministic source.
	randInt func(n int) int
	now     func() time.Time
}

// NewWheelUseCase creates the engine with the provided collaborators.
func NewWheelUseCase(repo port.WheelRepository, notifier port.Notifier, logger *slog.Logger, cfg configs.Wheel) *WheelUseCase {
	return &WheelUseCase{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		randInt:  secureIntn,
		now:      time.Now,
	}
}

// liveWheel resolves the live campaign and loads its full configuration.
func (u *WheelUseCase) liveWheel(ctx context.Context) (*domain.Campaign, *port.WheelSnapshot, error) {
	camp, err := u.repo.FindLiveCampaign(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !camp.IsLive(u.now()) {
		return nil, nil, port.ErrNoLiveCampaign
	}
	snap, err := u.repo.LoadWheel(ctx, camp.ID)
	if err != nil {
		return nil, nil, err
	}
	return camp, snap, nil
}

// GetEligibleOutcomes returns the ring indices the user may land on now,
// plus a budget summary for the client-side animation.
func (u *WheelUseCase) GetEligibleOutcomes(ctx context.Context, userID string) (*port.EligibleOutcomes, error) {
	camp, snap, err := u.liveWheel(ctx)
	if err != nil {
		return nil, err
	}
	eligible, err := u.eligibleSlices(ctx, camp, snap, userID)
	if err != nil {
		return nil, err
	}
	out := &port.EligibleOutcomes{
		AllowedIndices:  make([]int, 0, len(eligible)),
		BudgetRemaining: snap.Budget.Remaining,
		BudgetSpent:     snap.Budget.Spent,
		TotalBudget:     snap.Budget.Total,
	}
	for _, s := range eligible {
		out.AllowedIndices = append(out.AllowedIndices, s.Order)
	}
	return out, nil
}

// SelectOutcome is the server-authoritative path: filter, pick, settle.
func (u *WheelUseCase) SelectOutcome(ctx context.Context, userID string) (*port.SpinResult, error) {
	camp, snap, err := u.liveWheel(ctx)
	if err != nil {
		return nil, err
	}
	eligible, err := u.eligibleSlices(ctx, camp, snap, userID)
	if err != nil {
		return nil, err
	}
	slice, err := u.pickSlice(ctx, eligible, &snap.Budget)
	if err != nil {
		return nil, err
	}
	return u.settle(ctx, camp, slice, userID)
}

// ValidateAndSettle is the client-proposed path. The claimed ring index is
// resolved to canonical slice data; cost and eligibility are recomputed
// server-side and the client's category/label are never trusted.
func (u *WheelUseCase) ValidateAndSettle(ctx context.Context, userID string, claimedIndex int, claimedCategory, claimedLabel string) (*port.SpinResult, error) {
	camp, snap, err := u.liveWheel(ctx)
	if err != nil {
		return nil, err
	}
	slice := sliceAt(snap.Slices, claimedIndex)
	if slice == nil {
		return nil, port.ErrInvalidClaim
	}
	eligible, err := u.eligibleSlices(ctx, camp, snap, userID)
	if err != nil {
		return nil, err
	}
	if !containsIndex(eligible, claimedIndex) {
		return nil, port.ErrClaimNotEligible
	}
	if claimedCategory != string(slice.Category) || claimedLabel != slice.Label {
		// Canonical values win silently; the deviation is only logged.
		u.logger.Warn("claim deviates from canonical slice data",
			slog.Int("index", claimedIndex),
			slog.String("claimed_category", claimedCategory),
			slog.String("claimed_label", claimedLabel),
			slog.String("canonical_category", string(slice.Category)),
			slog.String("canonical_label", slice.Label))
	}
	return u.settle(ctx, camp, slice, userID)
}

// settle records the outcome atomically, retrying transparently on
// transient conflicts, then dispatches the payout notification.
func (u *WheelUseCase) settle(ctx context.Context, camp *domain.Campaign, slice *domain.Slice, userID string) (*port.SpinResult, error) {
	spin := &domain.Spin{
		Token:      uuid.NewString(),
		CampaignID: camp.ID,
		SliceID:    slice.ID,
		SliceIndex: slice.Order,
		UserID:     userID,
		Category:   slice.Category,
		Label:      slice.Label,
		Value:      slice.Value,
		Cost:       slice.Cost,
	}
	var err error
	for attempt := 0; attempt <= u.cfg.SettleRetries; attempt++ {
		err = u.repo.SettleSpin(ctx, spin)
		if !errors.Is(err, port.ErrConflict) {
			break
		}
		u.logger.Warn("settlement conflict, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int64("campaign", camp.ID),
			slog.String("user", userID))
	}
	if err != nil {
		return nil, err
	}
	if spin.Category.Paid() {
		u.dispatchPayout(ctx, spin)
	}
	return resultFromSpin(spin), nil
}

// dispatchPayout is best-effort: a notifier failure never affects the
// settled spin.
func (u *WheelUseCase) dispatchPayout(ctx context.Context, spin *domain.Spin) {
	ev := port.PayoutEvent{
		SpinToken: spin.Token,
		UserID:    spin.UserID,
		Category:  spin.Category,
		Label:     spin.Label,
		Value:     spin.Value,
		Cost:      spin.Cost,
	}
	if err := u.notifier.PayoutWon(ctx, ev); err != nil {
		u.logger.Error("payout notification failed",
			slog.String("spin", spin.Token), slog.Any("error", err))
		return
	}
	if err := u.repo.MarkBonusSent(ctx, spin.Token); err != nil {
		u.logger.Error("mark bonus sent failed",
			slog.String("spin", spin.Token), slog.Any("error", err))
		return
	}
	spin.BonusSent = true
}

// RedeemPrize marks a settled spin as redeemed. Idempotent: redeeming an
// already-redeemed spin returns it unchanged.
func (u *WheelUseCase) RedeemPrize(ctx context.Context, token, redeemer string) (*port.SpinResult, error) {
	spin, err := u.repo.RedeemSpin(ctx, token, redeemer)
	if err != nil {
		return nil, err
	}
	return resultFromSpin(spin), nil
}

// GetStats returns aggregated spin counts and cost for a period.
func (u *WheelUseCase) GetStats(ctx context.Context, req port.StatsReq) (*port.StatsResp, error) {
	return u.repo.GetStats(ctx, req)
}

func resultFromSpin(spin *domain.Spin) *port.SpinResult {
	return &port.SpinResult{
		SpinID:     spin.Token,
		SliceIndex: spin.SliceIndex,
		Category:   spin.Category,
		Label:      spin.Label,
		Value:      spin.Value,
		Cost:       spin.Cost,
	}
}

func sliceAt(slices []domain.Slice, index int) *domain.Slice {
	for i := range slices {
		if slices[i].Order == index {
			return &slices[i]
		}
	}
	return nil
}

func containsIndex(slices []domain.Slice, index int) bool {
	for i := range slices {
		if slices[i].Order == index {
			return true
		}
	}
	return false
}
