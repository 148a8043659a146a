package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lucky-wheel/internal/core/domain"
	"lucky-wheel/internal/core/port"
)

// WheelRepository implements port.WheelRepository using pgxpool for
// PostgreSQL. Settlement runs as a Serializable transaction with the
// budget row locked FOR UPDATE, so concurrent spins against the same
// campaign are serialized at the database.
type WheelRepository struct {
	pool *pgxpool.Pool
}

// NewWheelRepository returns a new repository instance.
func NewWheelRepository(pool *pgxpool.Pool) *WheelRepository {
	return &WheelRepository{pool: pool}
}

// FindLiveCampaign resolves the single live, in-window campaign.
func (r *WheelRepository) FindLiveCampaign(ctx context.Context) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.pool.QueryRow(ctx, `
        SELECT id, name, status, start_date, end_date, created_at, updated_at
        FROM campaigns
        WHERE status = 'live'
          AND (start_date IS NULL OR start_date <= now())
          AND (end_date IS NULL OR end_date >= now())
        ORDER BY id
        LIMIT 1`).
		Scan(&c.ID, &c.Name, &c.Status, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNoLiveCampaign
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWheel loads the ordered slice catalog, the budget ledger and the
// fairness rules of a campaign in one snapshot.
func (r *WheelRepository) LoadWheel(ctx context.Context, campaignID int64) (*port.WheelSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, campaign_id, ring_order, label, category, value, cost,
               enabled, max_wins, current_wins, created_at, updated_at
        FROM slices
        WHERE campaign_id = $1
        ORDER BY ring_order`, campaignID)
	if err != nil {
		return nil, err
	}
	slices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Slice, error) {
		var (
			s   domain.Slice
			cat string
		)
		err := row.Scan(&s.ID, &s.CampaignID, &s.Order, &s.Label, &cat, &s.Value,
			&s.Cost, &s.Enabled, &s.MaxWins, &s.CurrentWins, &s.CreatedAt, &s.UpdatedAt)
		s.Category = domain.Category(cat)
		return s, err
	})
	if err != nil {
		return nil, err
	}

	snap := &port.WheelSnapshot{Slices: slices}
	var mode string
	err = r.pool.QueryRow(ctx, `
        SELECT campaign_id, mode, total, remaining, spent, target_spins,
               daily_expense_cap, window_spins, window_expense_cap,
               total_spins, avg_payout, updated_at
        FROM budgets
        WHERE campaign_id = $1`, campaignID).
		Scan(&snap.Budget.CampaignID, &mode, &snap.Budget.Total, &snap.Budget.Remaining,
			&snap.Budget.Spent, &snap.Budget.TargetSpins, &snap.Budget.DailyExpenseCap,
			&snap.Budget.WindowSpins, &snap.Budget.WindowExpenseCap,
			&snap.Budget.TotalSpins, &snap.Budget.AvgPayout, &snap.Budget.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	snap.Budget.Mode = domain.PacingMode(mode)

	err = r.pool.QueryRow(ctx, `
        SELECT campaign_id, spins_per_user, allow_free_spin_chaining
        FROM fairness_rules
        WHERE campaign_id = $1`, campaignID).
		Scan(&snap.Rules.CampaignID, &snap.Rules.SpinsPerUser, &snap.Rules.AllowFreeSpinChaining)
	if err != nil {
		return nil, fmt.Errorf("load fairness rules: %w", err)
	}
	return snap, nil
}

// CountUserSpins counts settled spins of a user within a campaign.
func (r *WheelRepository) CountUserSpins(ctx context.Context, campaignID int64, userID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM spins WHERE campaign_id = $1 AND user_id = $2`,
		campaignID, userID).Scan(&n)
	return n, err
}

// HasRecentFreeSpinWin reports whether the user won a free-spin slice at
// or after the given instant.
func (r *WheelRepository) HasRecentFreeSpinWin(ctx context.Context, campaignID int64, userID string, since time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM spins
            WHERE campaign_id = $1 AND user_id = $2
              AND category = $3 AND created_at >= $4
        )`, campaignID, userID, string(domain.CategoryFreeSpin), since).Scan(&exists)
	return exists, err
}

// SpentSince sums settled spin costs for a campaign from an instant on.
func (r *WheelRepository) SpentSince(ctx context.Context, campaignID int64, since time.Time) (int64, error) {
	var spent int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(sum(cost), 0) FROM spins WHERE campaign_id = $1 AND created_at >= $2`,
		campaignID, since).Scan(&spent)
	return spent, err
}

// SpentLastN sums settled spin costs over the trailing n spins.
func (r *WheelRepository) SpentLastN(ctx context.Context, campaignID int64, n int64) (int64, error) {
	var spent int64
	err := r.pool.QueryRow(ctx, `
        SELECT COALESCE(sum(cost), 0) FROM (
            SELECT cost FROM spins
            WHERE campaign_id = $1
            ORDER BY created_at DESC
            LIMIT $2
        ) last_spins`, campaignID, n).Scan(&spent)
	return spent, err
}

// SettleSpin atomically records the spin, debits the budget and bumps the
// winning slice's counter. Serialization failures surface as ErrConflict
// for the caller's bounded retry.
func (r *WheelRepository) SettleSpin(ctx context.Context, spin *domain.Spin) error {
	err := r.settleSpinTx(ctx, spin)
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %v", port.ErrConflict, err)
	}
	return err
}

func (r *WheelRepository) settleSpinTx(ctx context.Context, spin *domain.Spin) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the budget row so the check-then-debit sequence is serialized
	// per campaign.
	var remaining int64
	err = tx.QueryRow(ctx,
		`SELECT remaining FROM budgets WHERE campaign_id = $1 FOR UPDATE`,
		spin.CampaignID).Scan(&remaining)
	if err != nil {
		return err
	}
	if spin.Cost > remaining {
		return port.ErrInsufficientBudget
	}

	spin.CreatedAt = time.Now().UTC()
	err = tx.QueryRow(ctx, `
        INSERT INTO spins (token, campaign_id, slice_id, slice_index, user_id,
                           category, label, value, cost, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id`,
		spin.Token, spin.CampaignID, spin.SliceID, spin.SliceIndex, spin.UserID,
		string(spin.Category), spin.Label, spin.Value, spin.Cost, spin.CreatedAt).
		Scan(&spin.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
        UPDATE budgets
        SET remaining = remaining - $1,
            spent = spent + $1,
            total_spins = total_spins + 1,
            avg_payout = (spent + $1) / (total_spins + 1),
            updated_at = now()
        WHERE campaign_id = $2`, spin.Cost, spin.CampaignID)
	if err != nil {
		return err
	}

	// Guarded increment: if the max-win cap was consumed by a concurrent
	// settlement after eligibility ran, nothing is written.
	tag, err := tx.Exec(ctx, `
        UPDATE slices
        SET current_wins = current_wins + 1, updated_at = now()
        WHERE id = $1 AND (max_wins IS NULL OR current_wins < max_wins)`,
		spin.SliceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrConflict
	}
	return tx.Commit(ctx)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// FindSpinByToken returns a settled spin by its token.
func (r *WheelRepository) FindSpinByToken(ctx context.Context, token string) (*domain.Spin, error) {
	var (
		s   domain.Spin
		cat string
	)
	err := r.pool.QueryRow(ctx, `
        SELECT id, token, campaign_id, slice_id, slice_index, user_id,
               category, label, value, cost, bonus_sent, redeemed,
               redeemed_by, redeemed_at, created_at
        FROM spins
        WHERE token = $1`, token).
		Scan(&s.ID, &s.Token, &s.CampaignID, &s.SliceID, &s.SliceIndex, &s.UserID,
			&cat, &s.Label, &s.Value, &s.Cost, &s.BonusSent, &s.Redeemed,
			&s.RedeemedBy, &s.RedeemedAt, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrSpinNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Category = domain.Category(cat)
	return &s, nil
}

// MarkBonusSent flags the payout notification as dispatched.
func (r *WheelRepository) MarkBonusSent(ctx context.Context, token string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE spins SET bonus_sent = true WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrSpinNotFound
	}
	return nil
}

// RedeemSpin marks a spin redeemed. Already-redeemed spins keep their
// original redeemer and timestamp.
func (r *WheelRepository) RedeemSpin(ctx context.Context, token, redeemer string) (*domain.Spin, error) {
	_, err := r.pool.Exec(ctx, `
        UPDATE spins
        SET redeemed = true, redeemed_by = $2, redeemed_at = now()
        WHERE token = $1 AND NOT redeemed`, token, redeemer)
	if err != nil {
		return nil, err
	}
	return r.FindSpinByToken(ctx, token)
}

// GetStats returns aggregated spin counts and cost for a period.
func (r *WheelRepository) GetStats(ctx context.Context, req port.StatsReq) (*port.StatsResp, error) {
	args := []interface{}{req.From, req.To}
	whereCampaign := ""
	if req.CampaignID != nil {
		whereCampaign = "AND campaign_id = $3"
		args = append(args, *req.CampaignID)
	}
	query := fmt.Sprintf(`
        SELECT COALESCE(count(*), 0),
               COALESCE(count(*) FILTER (WHERE cost > 0), 0),
               COALESCE(sum(cost), 0)
        FROM spins
        WHERE created_at >= $1 AND created_at <= $2 %s`, whereCampaign)
	var resp port.StatsResp
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&resp.Spins, &resp.Paid, &resp.Cost); err != nil {
		return nil, err
	}
	return &resp, nil
}
