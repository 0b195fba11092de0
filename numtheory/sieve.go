package numtheory

import (
	"github.com/samber/oops"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// FindPrimes returns every prime <= limit in ascending order using the
// sieve of Eratosthenes.
func FindPrimes(limit int) ([]int, error) {
	if limit < 2 || limit > utils.MaxSieveLimit {
		return nil, oops.
			In("numtheory").
			Code("domain").
			With("limit", limit).
			Wrapf(elgamal.ErrDomain, "sieve limit must be in [2, %d]", utils.MaxSieveLimit)
	}

	composite := make([]bool, limit+1)
	primes := make([]int, 0, estimatePrimeCount(limit))
	for i := 2; i <= limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return primes, nil
}

// estimatePrimeCount over-approximates pi(n) for preallocation.
func estimatePrimeCount(n int) int {
	if n < 64 {
		return 18
	}
	bits := 0
	for m := n; m > 0; m >>= 1 {
		bits++
	}
	// pi(n) < 1.26 n / ln n, and ln n > 0.69 (bits-1)
	return int(float64(n)*1.26/(0.69*float64(bits-1))) + 1
}
