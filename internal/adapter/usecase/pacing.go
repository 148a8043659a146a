package usecase

import (
	"context"
	"sort"

	"lucky-wheel/internal/core/domain"
)

// pickSlice chooses one outcome from the eligible set according to the
// budget's pacing mode. The eligible set is never empty here; the filter
// guarantees that.
func (u *WheelUseCase) pickSlice(ctx context.Context, eligible []domain.Slice, b *domain.Budget) (*domain.Slice, error) {
	if len(eligible) == 1 {
		return &eligible[0], nil
	}
	switch b.Mode {
	case domain.PacingAuto:
		if b.TargetSpins > 0 {
			return u.pickPaced(eligible, b), nil
		}
	case domain.PacingTargetExpense:
		capped, err := u.expenseCapReached(ctx, b)
		if err != nil {
			return nil, err
		}
		if capped {
			if zero := zeroCostOf(eligible); len(zero) > 0 {
				return u.pickWeighted(zero), nil
			}
		}
	}
	return u.pickWeighted(eligible), nil
}

// pickPaced compares spend-to-date against the planned trajectory
// (total/targetSpins per settled spin). When consumption runs ahead of
// plan the draw is restricted to at-or-below-average slices; when it
// trails the plan an above-average slice is drawn with bounded
// probability so spend converges to the target. The hard
// cost <= remaining check is enforced upstream regardless.
func (u *WheelUseCase) pickPaced(eligible []domain.Slice, b *domain.Budget) *domain.Slice {
	avg := b.PlannedPerSpin()
	expected := avg * b.TotalSpins

	cheap := make([]domain.Slice, 0, len(eligible))
	expensive := make([]domain.Slice, 0, len(eligible))
	for _, s := range eligible {
		if s.Cost <= avg {
			cheap = append(cheap, s)
		} else {
			expensive = append(expensive, s)
		}
	}

	if b.Spent >= expected {
		if len(cheap) > 0 {
			return u.pickWeighted(cheap)
		}
		return u.pickWeighted(eligible)
	}
	if len(expensive) > 0 && u.randInt(100) < int(u.cfg.OvershootChance*100) {
		return u.pickWeighted(expensive)
	}
	if len(cheap) > 0 {
		return u.pickWeighted(cheap)
	}
	return u.pickWeighted(eligible)
}

// pickWeighted draws one slice with weight inversely proportional to its
// cost rank: with n slices the cheapest gets weight n, the most expensive
// weight 1. Implemented as a cumulative-weight draw.
func (u *WheelUseCase) pickWeighted(slices []domain.Slice) *domain.Slice {
	ranked := make([]domain.Slice, len(slices))
	copy(ranked, slices)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Cost < ranked[j].Cost })

	n := len(ranked)
	total := n * (n + 1) / 2
	r := u.randInt(total)
	cum := 0
	for i := range ranked {
		cum += n - i
		if r < cum {
			return &ranked[i]
		}
	}
	return &ranked[n-1]
}

func zeroCostOf(slices []domain.Slice) []domain.Slice {
	out := make([]domain.Slice, 0, len(slices))
	for _, s := range slices {
		if s.Cost == 0 {
			out = append(out, s)
		}
	}
	return out
}
