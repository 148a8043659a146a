package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lucky-wheel/internal/core/domain"
)

// queuedRand returns a draw function replaying the given values, clamped
// to the requested range. Exhausted queues return 0.
func queuedRand(vals ...int) func(int) int {
	i := 0
	return func(n int) int {
		if i >= len(vals) {
			return 0
		}
		v := vals[i]
		i++
		if v >= n {
			v = n - 1
		}
		return v
	}
}

func TestWeightedDrawFollowsInverseCostRank(t *testing.T) {
	u := newTestEngine(&fakeRepo{}, nil)
	slices := []domain.Slice{
		slice(1, 0, domain.CategoryLose, 0),
		slice(2, 1, domain.CategoryCash, 100),
		slice(3, 2, domain.CategoryCash, 500),
	}

	// Weights are 3/2/1 over a cumulative range of 6: draws 0-2 land on
	// the cheapest slice, 3-4 on the middle one, 5 on the most expensive.
	cases := map[int]int64{0: 0, 2: 0, 3: 100, 4: 100, 5: 500}
	for draw, wantCost := range cases {
		u.randInt = queuedRand(draw)
		got := u.pickWeighted(slices)
		require.Equal(t, wantCost, got.Cost, "draw %d", draw)
	}
}

func TestPacedDrawRestrictsWhenSpendAheadOfPlan(t *testing.T) {
	u := newTestEngine(&fakeRepo{}, nil)
	b := &domain.Budget{
		CampaignID: 1, Mode: domain.PacingAuto,
		Total: 1000, Remaining: 800, Spent: 200,
		TargetSpins: 100, TotalSpins: 10,
	}
	eligible := []domain.Slice{
		slice(1, 0, domain.CategoryCash, 5),
		slice(2, 1, domain.CategoryCash, 50),
	}

	// Planned 10 per spin, expected 100 after 10 spins, actual 200:
	// consumption is ahead of plan, so only the cheap slice can win.
	for draw := 0; draw < 3; draw++ {
		u.randInt = queuedRand(draw, draw)
		got := u.pickPaced(eligible, b)
		require.Equal(t, int64(5), got.Cost)
	}
}

func TestPacedDrawOvershootChanceWhenSpendTrailsPlan(t *testing.T) {
	u := newTestEngine(&fakeRepo{}, nil)
	b := &domain.Budget{
		CampaignID: 1, Mode: domain.PacingAuto,
		Total: 1000, Remaining: 1000, Spent: 0,
		TargetSpins: 100, TotalSpins: 10,
	}
	eligible := []domain.Slice{
		slice(1, 0, domain.CategoryCash, 5),
		slice(2, 1, domain.CategoryCash, 50),
	}

	// Spend trails the plan. A percent draw under the 30% overshoot
	// chance picks from the above-average subset...
	u.randInt = queuedRand(10, 0)
	got := u.pickPaced(eligible, b)
	require.Equal(t, int64(50), got.Cost)

	// ...and a draw at or above it stays cheap.
	u.randInt = queuedRand(95, 0)
	got = u.pickPaced(eligible, b)
	require.Equal(t, int64(5), got.Cost)
}

func TestPickSliceSingleCandidateShortcut(t *testing.T) {
	u := newTestEngine(&fakeRepo{}, nil)
	// A draw function that panics proves no randomness is consumed.
	u.randInt = func(int) int { panic("unexpected draw") }

	only := slice(1, 4, domain.CategoryCash, 25)
	got, err := u.pickSlice(context.Background(), []domain.Slice{only}, &domain.Budget{Mode: domain.PacingManual})
	require.NoError(t, err)
	require.Equal(t, int64(25), got.Cost)
	require.Equal(t, 4, got.Order)
}

func TestTargetExpenseCapRestrictsToZeroCost(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices: []domain.Slice{
			slice(1, 0, domain.CategoryCash, 10),
			slice(2, 1, domain.CategoryLose, 0),
		},
		budget: domain.Budget{
			CampaignID: 1, Mode: domain.PacingTargetExpense,
			Total: 1000, Remaining: 900, Spent: 100,
			DailyExpenseCap: 100,
		},
		rules: unlimitedRules(),
		spins: []domain.Spin{{
			ID: 1, Token: "prior", CampaignID: 1, UserID: "other",
			Category: domain.CategoryCash, Cost: 100,
			CreatedAt: time.Now().Add(-time.Hour),
		}},
	}
	u := newTestEngine(repo, nil)

	// The trailing-day spend already meets the daily cap, so eligibility
	// collapses to the zero-cost slice.
	out, err := u.GetEligibleOutcomes(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []int{1}, out.AllowedIndices)
}
