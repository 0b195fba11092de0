package numtheory

import (
	"context"
	"io"
	"math/big"

	"github.com/samber/oops"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// IsGenerator reports whether g generates the full multiplicative group
// modulo the prime p, given the distinct prime factors of p-1 in f.
// g has order p-1 iff g^((p-1)/q) != 1 (mod p) for every prime q | p-1.
// It returns false for a nil or out-of-range g, p < 3, an empty f, or a
// factor below 2.
func IsGenerator(g, p *big.Int, f elgamal.Factorization) bool {
	if p == nil || g == nil || len(f) == 0 || p.Cmp(bigThree) < 0 {
		return false
	}
	if g.Sign() <= 0 || g.Cmp(p) >= 0 {
		return false
	}
	pm1 := new(big.Int).Sub(p, bigOne)
	e := new(big.Int)
	x := new(big.Int)
	for _, factor := range f {
		if factor.Q == nil || factor.Q.Cmp(bigTwo) < 0 {
			return false
		}
		e.Quo(pm1, factor.Q)
		if x.Exp(g, e, p).Cmp(bigOne) == 0 {
			return false
		}
	}
	return true
}

// FindGenerator draws random candidates in [2, p-2] until one is a primitive
// root modulo p. f must list every distinct prime factor of p-1; exponents
// are not used. maxAttempts > 0 bounds the search with elgamal.ErrRetryExhausted.
func FindGenerator(ctx context.Context, r io.Reader, p *big.Int, f elgamal.Factorization, maxAttempts int) (*big.Int, error) {
	if p == nil || p.Cmp(big.NewInt(5)) < 0 {
		return nil, oops.
			In("numtheory").
			Code("domain").
			With("p", p).
			Wrapf(elgamal.ErrDomain, "generator search requires p >= 5")
	}
	if len(f) == 0 {
		return nil, oops.
			In("numtheory").
			Code("domain").
			Wrapf(elgamal.ErrDomain, "generator search requires the factors of p-1")
	}
	pm1 := new(big.Int).Sub(p, bigOne)
	rem := new(big.Int)
	for _, factor := range f {
		if factor.Q == nil || factor.Q.Cmp(bigTwo) < 0 || rem.Rem(pm1, factor.Q).Sign() != 0 {
			return nil, oops.
				In("numtheory").
				Code("domain").
				With("p", p).
				With("q", factor.Q).
				Wrapf(elgamal.ErrDomain, "factor does not divide p-1")
		}
	}

	hi := new(big.Int).Sub(p, bigTwo)
	for attempt := 1; maxAttempts <= 0 || attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := utils.RandomRange(r, bigTwo, hi)
		if err != nil {
			return nil, err
		}
		if IsGenerator(g, p, f) {
			return g, nil
		}
	}

	log.WithField("max_attempts", maxAttempts).
		WithField("bits", p.BitLen()).
		Warn("generator search exhausted its attempts")
	return nil, oops.
		In("numtheory").
		Code("retry_exhausted").
		With("max_attempts", maxAttempts).
		Wrapf(elgamal.ErrRetryExhausted, "no generator after %d candidates", maxAttempts)
}
