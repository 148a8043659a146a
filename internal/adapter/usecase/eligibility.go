package usecase

import (
	"context"
	"time"

	"lucky-wheel/internal/core/domain"
	"lucky-wheel/internal/core/port"
)

// eligibleSlices narrows the slice catalog to what the user may legally
// win on this attempt. The zero-cost fallback lives here: callers never
// receive an empty set without ErrNoEligibleOutcomes.
func (u *WheelUseCase) eligibleSlices(ctx context.Context, camp *domain.Campaign, snap *port.WheelSnapshot, userID string) ([]domain.Slice, error) {
	spins, err := u.repo.CountUserSpins(ctx, camp.ID, userID)
	if err != nil {
		return nil, err
	}
	if snap.Rules.SpinCapReached(spins) {
		return nil, port.ErrSpinLimitReached
	}

	freeSpinBlocked := false
	if !snap.Rules.AllowFreeSpinChaining && hasFreeSpinSlice(snap.Slices) {
		since := u.now().Add(-u.cfg.FreeSpinCooldown)
		freeSpinBlocked, err = u.repo.HasRecentFreeSpinWin(ctx, camp.ID, userID, since)
		if err != nil {
			return nil, err
		}
	}

	constrained, err := u.budgetConstraintActive(ctx, &snap.Budget, snap.Slices)
	if err != nil {
		return nil, err
	}
	zeroOnly := snap.Budget.Exhausted() || constrained

	eligible := make([]domain.Slice, 0, len(snap.Slices))
	var zeroCost []domain.Slice
	for _, s := range snap.Slices {
		if !s.Enabled || s.WinsExhausted() {
			continue
		}
		if s.Category == domain.CategoryFreeSpin && freeSpinBlocked {
			continue
		}
		if s.Cost == 0 {
			zeroCost = append(zeroCost, s)
		}
		if zeroOnly {
			if s.Cost != 0 {
				continue
			}
		} else if s.Cost > snap.Budget.Remaining {
			continue
		}
		eligible = append(eligible, s)
	}
	if len(eligible) == 0 {
		eligible = zeroCost
	}
	if len(eligible) == 0 {
		return nil, port.ErrNoEligibleOutcomes
	}
	return eligible, nil
}

// budgetConstraintActive reports whether pacing forbids paid outcomes even
// though remaining budget is still positive.
func (u *WheelUseCase) budgetConstraintActive(ctx context.Context, b *domain.Budget, slices []domain.Slice) (bool, error) {
	switch b.Mode {
	case domain.PacingAuto:
		if b.TargetSpins <= 0 {
			return false, nil
		}
		cutoff := int64(float64(b.Total) * u.cfg.PacingCutoff)
		if b.TotalSpins >= b.TargetSpins && b.Spent >= cutoff {
			return true, nil
		}
		// A spin at the catalog's average cost must not overshoot the total.
		return b.Spent+averageSliceCost(slices) > b.Total, nil
	case domain.PacingTargetExpense:
		return u.expenseCapReached(ctx, b)
	default:
		return false, nil
	}
}

// expenseCapReached checks the target-expense caps over the trailing day
// and the trailing spin window.
func (u *WheelUseCase) expenseCapReached(ctx context.Context, b *domain.Budget) (bool, error) {
	if b.DailyExpenseCap > 0 {
		spent, err := u.repo.SpentSince(ctx, b.CampaignID, u.now().Add(-24*time.Hour))
		if err != nil {
			return false, err
		}
		if spent >= b.DailyExpenseCap {
			return true, nil
		}
	}
	if b.WindowSpins > 0 && b.WindowExpenseCap > 0 {
		spent, err := u.repo.SpentLastN(ctx, b.CampaignID, b.WindowSpins)
		if err != nil {
			return false, err
		}
		if spent >= b.WindowExpenseCap {
			return true, nil
		}
	}
	return false, nil
}

func hasFreeSpinSlice(slices []domain.Slice) bool {
	for i := range slices {
		if slices[i].Category == domain.CategoryFreeSpin {
			return true
		}
	}
	return false
}

// averageSliceCost averages over enabled slices only; disabled segments
// cannot be won and must not dilute the estimate.
func averageSliceCost(slices []domain.Slice) int64 {
	var sum, n int64
	for i := range slices {
		if !slices[i].Enabled {
			continue
		}
		sum += slices[i].Cost
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
