package configs

import "time"

// Wheel tunes the pacing engine. The defaults mirror the reference
// rollout; every threshold that used to be a literal in the legacy
// implementation is a parameter here.
type Wheel struct {
	// PacingCutoff is the fraction of total budget at which auto pacing
	// stops offering paid slices once the target spin count is reached.
	PacingCutoff float64 `env:"PACING_CUTOFF" envDefault:"0.95"`
	// OvershootChance is the probability of drawing an
	// above-average-cost slice while spend trails the planned trajectory.
	OvershootChance float64 `env:"OVERSHOOT_CHANCE" envDefault:"0.30"`
	// SettleRetries bounds transparent retries on settlement conflicts.
	SettleRetries int `env:"SETTLE_RETRIES" envDefault:"3"`
	// FreeSpinCooldown is the rolling window for the free-spin chaining
	// rule.
	FreeSpinCooldown time.Duration `env:"FREE_SPIN_COOLDOWN" envDefault:"24h"`
}
