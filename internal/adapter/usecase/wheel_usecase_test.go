package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lucky-wheel/internal/config/configs"
	"lucky-wheel/internal/core/domain"
	"lucky-wheel/internal/core/port"
)

// fakeRepo is an in-memory port.WheelRepository. All state mutation is
// guarded by a mutex so the settlement path can be exercised concurrently
// the same way the real repository serializes on the budget row.
type fakeRepo struct {
	mu        sync.Mutex
	campaign  domain.Campaign
	slices    []domain.Slice
	budget    domain.Budget
	rules     domain.FairnessRules
	spins     []domain.Spin
	nextID    int64
	conflicts int // number of ErrConflict results to inject before settling
}

func (f *fakeRepo) FindLiveCampaign(ctx context.Context) (*domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.campaign.Status != domain.CampaignLive {
		return nil, port.ErrNoLiveCampaign
	}
	c := f.campaign
	return &c, nil
}

func (f *fakeRepo) LoadWheel(ctx context.Context, campaignID int64) (*port.WheelSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &port.WheelSnapshot{
		Slices: append([]domain.Slice(nil), f.slices...),
		Budget: f.budget,
		Rules:  f.rules,
	}, nil
}

func (f *fakeRepo) CountUserSpins(ctx context.Context, campaignID int64, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.spins {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) HasRecentFreeSpinWin(ctx context.Context, campaignID int64, userID string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.spins {
		if s.UserID == userID && s.Category == domain.CategoryFreeSpin && !s.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) SpentSince(ctx context.Context, campaignID int64, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, s := range f.spins {
		if !s.CreatedAt.Before(since) {
			sum += s.Cost
		}
	}
	return sum, nil
}

func (f *fakeRepo) SpentLastN(ctx context.Context, campaignID int64, n int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	start := len(f.spins) - int(n)
	if start < 0 {
		start = 0
	}
	for _, s := range f.spins[start:] {
		sum += s.Cost
	}
	return sum, nil
}

func (f *fakeRepo) SettleSpin(ctx context.Context, spin *domain.Spin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		return port.ErrConflict
	}
	if spin.Cost > f.budget.Remaining {
		return port.ErrInsufficientBudget
	}
	for i := range f.slices {
		if f.slices[i].ID == spin.SliceID {
			if f.slices[i].WinsExhausted() {
				return port.ErrConflict
			}
			f.slices[i].CurrentWins++
		}
	}
	f.nextID++
	spin.ID = f.nextID
	spin.CreatedAt = time.Now()
	f.budget.Remaining -= spin.Cost
	f.budget.Spent += spin.Cost
	f.budget.TotalSpins++
	f.budget.AvgPayout = f.budget.Spent / f.budget.TotalSpins
	f.spins = append(f.spins, *spin)
	return nil
}

func (f *fakeRepo) FindSpinByToken(ctx context.Context, token string) (*domain.Spin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.spins {
		if f.spins[i].Token == token {
			s := f.spins[i]
			return &s, nil
		}
	}
	return nil, port.ErrSpinNotFound
}

func (f *fakeRepo) MarkBonusSent(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.spins {
		if f.spins[i].Token == token {
			f.spins[i].BonusSent = true
			return nil
		}
	}
	return port.ErrSpinNotFound
}

func (f *fakeRepo) RedeemSpin(ctx context.Context, token, redeemer string) (*domain.Spin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.spins {
		if f.spins[i].Token == token {
			if !f.spins[i].Redeemed {
				now := time.Now()
				by := redeemer
				f.spins[i].Redeemed = true
				f.spins[i].RedeemedBy = &by
				f.spins[i].RedeemedAt = &now
			}
			s := f.spins[i]
			return &s, nil
		}
	}
	return nil, port.ErrSpinNotFound
}

func (f *fakeRepo) GetStats(ctx context.Context, req port.StatsReq) (*port.StatsResp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var resp port.StatsResp
	for _, s := range f.spins {
		resp.Spins++
		if s.Cost > 0 {
			resp.Paid++
		}
		resp.Cost += s.Cost
	}
	return &resp, nil
}

// stubNotifier records payout events; a set err makes every call fail.
type stubNotifier struct {
	mu     sync.Mutex
	events []port.PayoutEvent
	err    error
}

func (n *stubNotifier) PayoutWon(ctx context.Context, ev port.PayoutEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, ev)
	return nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) PayoutWon(ctx context.Context, ev port.PayoutEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func testWheelConfig() configs.Wheel {
	return configs.Wheel{
		PacingCutoff:     0.95,
		OvershootChance:  0.30,
		SettleRetries:    3,
		FreeSpinCooldown: 24 * time.Hour,
	}
}

func newTestEngine(repo *fakeRepo, notifier port.Notifier) *WheelUseCase {
	if notifier == nil {
		notifier = &stubNotifier{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWheelUseCase(repo, notifier, logger, testWheelConfig())
}

func liveCampaign() domain.Campaign {
	return domain.Campaign{ID: 1, Name: "Test Wheel", Status: domain.CampaignLive}
}

func slice(id int64, order int, cat domain.Category, cost int64) domain.Slice {
	return domain.Slice{
		ID: id, CampaignID: 1, Order: order,
		Label: string(cat), Category: cat, Cost: cost, Enabled: true,
	}
}

func unlimitedRules() domain.FairnessRules {
	return domain.FairnessRules{CampaignID: 1, SpinsPerUser: domain.UnlimitedSpins, AllowFreeSpinChaining: true}
}

func TestEligibilityExhaustedBudgetReturnsZeroCostOnly(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices: []domain.Slice{
			slice(1, 0, domain.CategoryCash, 1),
			slice(2, 1, domain.CategoryLose, 0),
			slice(3, 2, domain.CategoryCash, 5),
			slice(4, 3, domain.CategoryLose, 0),
		},
		budget: domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 10, Remaining: 0, Spent: 10},
		rules:  unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	out, err := u.GetEligibleOutcomes(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, out.AllowedIndices)
	require.Equal(t, int64(0), out.BudgetRemaining)
	require.Equal(t, int64(10), out.BudgetSpent)
	require.Equal(t, int64(10), out.TotalBudget)
}

func TestClaimRejectedWhenIndexNotEligible(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices: []domain.Slice{
			slice(1, 0, domain.CategoryCash, 1),
			slice(2, 1, domain.CategoryLose, 0),
			slice(3, 2, domain.CategoryCash, 5),
			slice(4, 3, domain.CategoryLose, 0),
		},
		budget: domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 10, Remaining: 0, Spent: 10},
		rules:  unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	_, err := u.ValidateAndSettle(context.Background(), "u1", 2, "cash", "cash")
	require.ErrorIs(t, err, port.ErrClaimNotEligible)
	require.Empty(t, repo.spins)
	require.Equal(t, int64(0), repo.budget.Remaining)
	require.Equal(t, int64(10), repo.budget.Spent)
}

func TestClaimInvalidIndexRejected(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{slice(1, 0, domain.CategoryLose, 0), slice(2, 1, domain.CategoryCash, 5)},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	_, err := u.ValidateAndSettle(context.Background(), "u1", 99, "cash", "jackpot")
	require.ErrorIs(t, err, port.ErrInvalidClaim)
	require.Empty(t, repo.spins)
}

func TestSettlementUpdatesBudgetAndRecordsSpin(t *testing.T) {
	disabled := slice(2, 1, domain.CategoryLose, 0)
	disabled.Enabled = false
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{slice(1, 0, domain.CategoryCash, 5), disabled},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100, Spent: 0},
		rules:    unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	res, err := u.SelectOutcome(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 0, res.SliceIndex)
	require.Equal(t, int64(5), res.Cost)
	require.NotEmpty(t, res.SpinID)

	require.Equal(t, int64(95), repo.budget.Remaining)
	require.Equal(t, int64(5), repo.budget.Spent)
	require.Equal(t, int64(1), repo.budget.TotalSpins)
	require.Equal(t, int64(5), repo.budget.AvgPayout)
	require.Len(t, repo.spins, 1)
	require.Equal(t, int64(5), repo.spins[0].Cost)
}

func TestSpinCapRejectsSecondSpin(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{slice(1, 0, domain.CategoryLose, 0), slice(2, 1, domain.CategoryCash, 5)},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    domain.FairnessRules{CampaignID: 1, SpinsPerUser: 1, AllowFreeSpinChaining: true},
		spins:    []domain.Spin{{ID: 1, Token: "prior", CampaignID: 1, UserID: "u1", Category: domain.CategoryLose}},
	}
	u := newTestEngine(repo, nil)

	_, err := u.SelectOutcome(context.Background(), "u1")
	require.ErrorIs(t, err, port.ErrSpinLimitReached)
	require.Len(t, repo.spins, 1)

	// A different user is unaffected by u1's cap.
	_, err = u.SelectOutcome(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, repo.spins, 2)
}

func TestFreeSpinCooldownBlocksChaining(t *testing.T) {
	freeSpin := slice(1, 0, domain.CategoryFreeSpin, 0)
	lose := slice(2, 1, domain.CategoryLose, 0)
	recent := domain.Spin{
		ID: 1, Token: "fs", CampaignID: 1, UserID: "u1",
		Category: domain.CategoryFreeSpin, CreatedAt: time.Now().Add(-time.Hour),
	}
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{freeSpin, lose},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    domain.FairnessRules{CampaignID: 1, SpinsPerUser: domain.UnlimitedSpins, AllowFreeSpinChaining: false},
		spins:    []domain.Spin{recent},
	}
	u := newTestEngine(repo, nil)

	out, err := u.GetEligibleOutcomes(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []int{1}, out.AllowedIndices)

	// Outside the 24h window the free-spin slice is winnable again.
	repo.spins[0].CreatedAt = time.Now().Add(-25 * time.Hour)
	out, err = u.GetEligibleOutcomes(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, out.AllowedIndices)

	// With chaining allowed the cooldown does not apply at all.
	repo.spins[0].CreatedAt = time.Now().Add(-time.Hour)
	repo.rules.AllowFreeSpinChaining = true
	out, err = u.GetEligibleOutcomes(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, out.AllowedIndices)
}

func TestMaxWinExcludesCappedSlice(t *testing.T) {
	capped := slice(1, 0, domain.CategoryCash, 5)
	maxWins := 3
	capped.MaxWins = &maxWins
	capped.CurrentWins = 3
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{capped, slice(2, 1, domain.CategoryLose, 0)},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	out, err := u.GetEligibleOutcomes(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []int{1}, out.AllowedIndices)
}

func TestNoEligibleOutcomesWhenEverythingCapped(t *testing.T) {
	capped := slice(1, 0, domain.CategoryCash, 0)
	maxWins := 1
	capped.MaxWins = &maxWins
	capped.CurrentWins = 1
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{capped},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	_, err := u.GetEligibleOutcomes(context.Background(), "u1")
	require.ErrorIs(t, err, port.ErrNoEligibleOutcomes)
}

func TestAutoPacingCutoffRestrictsToZeroCost(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{slice(1, 0, domain.CategoryCash, 2), slice(2, 1, domain.CategoryLose, 0)},
		budget: domain.Budget{
			CampaignID: 1, Mode: domain.PacingAuto,
			Total: 100, Remaining: 4, Spent: 96,
			TargetSpins: 10, TotalSpins: 12,
		},
		rules: unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	// 96% of budget consumed at/past the target spin count: paid slices
	// are off the table even though cost 2 <= remaining 4.
	out, err := u.GetEligibleOutcomes(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []int{1}, out.AllowedIndices)
}

func TestAutoPacingOvershootGuard(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices: []domain.Slice{
			slice(1, 0, domain.CategoryCash, 10),
			slice(2, 1, domain.CategoryCash, 30),
			slice(3, 2, domain.CategoryLose, 0),
		},
		budget: domain.Budget{
			CampaignID: 1, Mode: domain.PacingAuto,
			Total: 100, Remaining: 10, Spent: 90,
			TargetSpins: 10, TotalSpins: 5,
		},
		rules: unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	// Average enabled slice cost is 13; 90+13 overshoots the total of
	// 100, so only the zero-cost slice stays eligible.
	out, err := u.GetEligibleOutcomes(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []int{2}, out.AllowedIndices)
}

func TestConcurrentSpinsNeverOverspend(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{slice(1, 0, domain.CategoryCash, 10)},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 50, Remaining: 50},
		rules:    unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	var wg sync.WaitGroup
	count := 20
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func() {
			defer wg.Done()
			_, _ = u.SelectOutcome(context.Background(), "u")
		}()
	}
	wg.Wait()

	require.GreaterOrEqual(t, repo.budget.Remaining, int64(0))
	require.Equal(t, repo.budget.Total, repo.budget.Remaining+repo.budget.Spent)
	require.Equal(t, int64(50), repo.budget.Spent)
	require.Len(t, repo.spins, 5)
}

func TestSettleConflictRetriedWithinBound(t *testing.T) {
	repo := &fakeRepo{
		campaign:  liveCampaign(),
		slices:    []domain.Slice{slice(1, 0, domain.CategoryCash, 5)},
		budget:    domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:     unlimitedRules(),
		conflicts: 2,
	}
	u := newTestEngine(repo, nil)

	_, err := u.SelectOutcome(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, repo.spins, 1)
}

func TestSettleConflictSurfacedPastBound(t *testing.T) {
	repo := &fakeRepo{
		campaign:  liveCampaign(),
		slices:    []domain.Slice{slice(1, 0, domain.CategoryCash, 5)},
		budget:    domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:     unlimitedRules(),
		conflicts: 10,
	}
	u := newTestEngine(repo, nil)

	_, err := u.SelectOutcome(context.Background(), "u1")
	require.ErrorIs(t, err, port.ErrConflict)
	require.Empty(t, repo.spins)
}

func TestNotifierFailureDoesNotFailSettlement(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{slice(1, 0, domain.CategoryCash, 5)},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    unlimitedRules(),
	}
	n := &mockNotifier{}
	n.On("PayoutWon", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	u := newTestEngine(repo, n)

	res, err := u.SelectOutcome(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, repo.spins, 1)
	require.False(t, repo.spins[0].BonusSent)
	require.Equal(t, int64(5), res.Cost)
	n.AssertExpectations(t)
}

func TestPayoutNotificationMarksBonusSent(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{slice(1, 0, domain.CategoryCash, 5)},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    unlimitedRules(),
	}
	n := &stubNotifier{}
	u := newTestEngine(repo, n)

	res, err := u.SelectOutcome(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, n.events, 1)
	require.Equal(t, res.SpinID, n.events[0].SpinToken)
	require.True(t, repo.spins[0].BonusSent)
}

func TestLoseOutcomeSkipsNotification(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{slice(1, 0, domain.CategoryLose, 0)},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    unlimitedRules(),
	}
	n := &stubNotifier{}
	u := newTestEngine(repo, n)

	_, err := u.SelectOutcome(context.Background(), "u1")
	require.NoError(t, err)
	require.Empty(t, n.events)
}

func TestClaimSettlesWithCanonicalValues(t *testing.T) {
	cash := slice(1, 0, domain.CategoryCash, 5)
	cash.Label = "$5 Cash"
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{cash, slice(2, 1, domain.CategoryLose, 0)},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	// The client lies about category and label; the canonical slice data
	// is settled instead.
	res, err := u.ValidateAndSettle(context.Background(), "u1", 0, "custom", "$500 Jackpot")
	require.NoError(t, err)
	require.Equal(t, domain.CategoryCash, res.Category)
	require.Equal(t, "$5 Cash", res.Label)
	require.Equal(t, int64(5), res.Cost)
	require.Equal(t, int64(95), repo.budget.Remaining)
}

func TestRedeemPrizeIsIdempotent(t *testing.T) {
	repo := &fakeRepo{
		campaign: liveCampaign(),
		slices:   []domain.Slice{slice(1, 0, domain.CategoryCash, 5)},
		budget:   domain.Budget{CampaignID: 1, Mode: domain.PacingManual, Total: 100, Remaining: 100},
		rules:    unlimitedRules(),
	}
	u := newTestEngine(repo, nil)

	res, err := u.SelectOutcome(context.Background(), "u1")
	require.NoError(t, err)

	_, err = u.RedeemPrize(context.Background(), res.SpinID, "admin1")
	require.NoError(t, err)
	_, err = u.RedeemPrize(context.Background(), res.SpinID, "admin2")
	require.NoError(t, err)

	spin, err := repo.FindSpinByToken(context.Background(), res.SpinID)
	require.NoError(t, err)
	require.True(t, spin.Redeemed)
	require.Equal(t, "admin1", *spin.RedeemedBy)
}

func TestNoLiveCampaign(t *testing.T) {
	repo := &fakeRepo{campaign: domain.Campaign{ID: 1, Status: domain.CampaignPaused}}
	u := newTestEngine(repo, nil)

	_, err := u.SelectOutcome(context.Background(), "u1")
	require.ErrorIs(t, err, port.ErrNoLiveCampaign)
}
