package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type seedSlice struct {
	label    string
	category string
	value    *string
	cost     int64
	maxWins  *int
}

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

// Seed inserts a live demo campaign with the reference 15-segment ring,
// an auto-paced budget and default fairness rules.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 1, 0)

	var campaignID int64
	err := db.QueryRow(ctx, `
        INSERT INTO campaigns (name, status, start_date, end_date, created_at, updated_at)
        VALUES ($1, 'live', $2, $3, now(), now())
        RETURNING id`, "Demo Wheel", start, end).Scan(&campaignID)
	if err != nil {
		return err
	}

	// Reference ring layout: costs are integer units (cents).
	ring := []seedSlice{
		{label: "Better luck next time", category: "lose"},
		{label: "$1 Cash", category: "cash", value: strptr("1.00"), cost: 100},
		{label: "5% Deposit Bonus", category: "discount", value: strptr("5"), cost: 50},
		{label: "Free Spin", category: "free_spin"},
		{label: "Better luck next time", category: "lose"},
		{label: "$5 Cash", category: "cash", value: strptr("5.00"), cost: 500},
		{label: "10% Deposit Bonus", category: "discount", value: strptr("10"), cost: 100},
		{label: "Better luck next time", category: "lose"},
		{label: "$2 Cash", category: "cash", value: strptr("2.00"), cost: 200},
		{label: "Free Spin", category: "free_spin"},
		{label: "Better luck next time", category: "lose"},
		{label: "20% Deposit Bonus", category: "discount", value: strptr("20"), cost: 200, maxWins: intptr(50)},
		{label: "$50 Cash", category: "cash", value: strptr("50.00"), cost: 5000, maxWins: intptr(5)},
		{label: "Better luck next time", category: "lose"},
		{label: "Mystery Gift", category: "custom", value: strptr("mystery"), cost: 300, maxWins: intptr(20)},
	}
	for i, s := range ring {
		_, err = db.Exec(ctx, `
            INSERT INTO slices (campaign_id, ring_order, label, category, value,
                                cost, enabled, max_wins, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, now(), now())
            ON CONFLICT DO NOTHING`,
			campaignID, i, s.label, s.category, s.value, s.cost, s.maxWins)
		if err != nil {
			return err
		}
	}

	total := int64(100000) // 1000.00 units
	_, err = db.Exec(ctx, `
        INSERT INTO budgets (campaign_id, mode, total, remaining, spent, target_spins, updated_at)
        VALUES ($1, 'auto', $2, $2, 0, $3, now())
        ON CONFLICT DO NOTHING`, campaignID, total, int64(2000))
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
        INSERT INTO fairness_rules (campaign_id, spins_per_user, allow_free_spin_chaining)
        VALUES ($1, $2, FALSE)
        ON CONFLICT DO NOTHING`, campaignID, int64(5))
	return err
}
