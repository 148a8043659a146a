package usecase

import (
	"crypto/rand"
	"math/big"
)

// secureIntn returns a uniform random int in [0, n) using crypto/rand.
// Wheel outcomes must stay unpredictable to callers, so math/rand is not
// used for draws.
func secureIntn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
