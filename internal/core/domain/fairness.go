package domain

// UnlimitedSpins disables the per-user spin cap.
const UnlimitedSpins = -1

// FairnessRules bounds what a single user may extract from a campaign.
type FairnessRules struct {
	CampaignID   int64
	SpinsPerUser int64 // UnlimitedSpins for no cap
	// AllowFreeSpinChaining decides whether a free-spin win may unlock
	// another free spin inside the rolling cooldown window. This boolean
	// is authoritative; the window length is engine configuration.
	AllowFreeSpinChaining bool
}

// SpinCapReached reports whether a user with the given settled spin count
// has exhausted their allowance.
func (r *FairnessRules) SpinCapReached(spins int64) bool {
	return r.SpinsPerUser != UnlimitedSpins && spins >= r.SpinsPerUser
}
