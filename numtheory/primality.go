package numtheory

import (
	"io"
	"math/big"

	"github.com/samber/oops"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// IsProbablyPrime runs the Miller-Rabin test with rounds independent random
// bases drawn from r. A composite passes with probability at most 4^-rounds.
// It fails with elgamal.ErrDomain if n < 2 or rounds < 1.
func IsProbablyPrime(r io.Reader, n *big.Int, rounds int) (bool, error) {
	if n == nil || n.Cmp(bigTwo) < 0 {
		return false, oops.
			In("numtheory").
			Code("domain").
			With("n", n).
			Wrapf(elgamal.ErrDomain, "primality test requires n >= 2")
	}
	if rounds < 1 {
		return false, oops.
			In("numtheory").
			Code("domain").
			With("rounds", rounds).
			Wrapf(elgamal.ErrDomain, "primality test requires at least one round")
	}

	if n.Cmp(bigThree) <= 0 {
		return true, nil
	}
	if n.Bit(0) == 0 {
		return false, nil
	}

	// n - 1 = 2^s * d with d odd
	nm1 := new(big.Int).Sub(n, bigOne)
	s := nm1.TrailingZeroBits()
	d := new(big.Int).Rsh(nm1, s)
	hi := new(big.Int).Sub(n, bigTwo)

	x := new(big.Int)
	for i := 0; i < rounds; i++ {
		a, err := utils.RandomRange(r, bigTwo, hi)
		if err != nil {
			return false, err
		}

		x.Exp(a, d, n)
		if x.Cmp(bigOne) == 0 || x.Cmp(nm1) == 0 {
			continue
		}

		witness := true
		for j := uint(1); j < s; j++ {
			x.Mul(x, x).Mod(x, n)
			if x.Cmp(nm1) == 0 {
				witness = false
				break
			}
		}
		if witness {
			return false, nil
		}
	}
	return true, nil
}
