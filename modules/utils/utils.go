package utils

import (
	"crypto/rand"
	"math/big"
)

// SecureRandomInt returns a uniformly distributed integer in [lo, hi]. The
// bounds may be given in either order.
func SecureRandomInt(lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	span := new(big.Int).Sub(big.NewInt(int64(hi)), big.NewInt(int64(lo)))
	span.Add(span, big.NewInt(1))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		panic(err)
	}
	return lo + int(n.Int64())
}
