package numtheory

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sort"
	"sync/atomic"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// errFound stops sibling workers once one of them has a prime.
var errFound = errors.New("prime found")

type constructed struct {
	p *big.Int
	f elgamal.Factorization
}

// ConstructPrime builds a prime p together with the exact factorization of p-1.
//
// Each candidate multiplies FactorCount primes drawn with repetition from the
// primes <= SieveLimit, plus one factor of 2 so that p-1 is even, and adds 1.
// The factorization is exact by construction; only the primality of the
// candidate is tested. MaxAttempts > 0 bounds the number of candidates and
// yields elgamal.ErrRetryExhausted when reached.
func ConstructPrime(ctx context.Context, r io.Reader, params elgamal.ConstructParams) (*big.Int, elgamal.Factorization, error) {
	primes, err := prepareConstruction(params)
	if err != nil {
		return nil, nil, err
	}

	var attempts atomic.Int64
	res, err := searchPrime(ctx, r, primes, params, &attempts)
	if err != nil {
		return nil, nil, err
	}
	return res.p, res.f, nil
}

// ConstructPrimeConcurrent runs the ConstructPrime search on several workers
// and returns the first prime found. The workers share r through a
// utils.LockedReader, so results are not reproducible even with a seeded reader.
// MaxAttempts bounds the total number of candidates across all workers.
func ConstructPrimeConcurrent(ctx context.Context, r io.Reader, params elgamal.ConstructParams, workers int) (*big.Int, elgamal.Factorization, error) {
	if workers <= 1 {
		return ConstructPrime(ctx, r, params)
	}
	primes, err := prepareConstruction(params)
	if err != nil {
		return nil, nil, err
	}

	lr := utils.NewLockedReader(r)
	found := make(chan constructed, 1)
	var attempts atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			res, err := searchPrime(gctx, lr, primes, params, &attempts)
			if err != nil {
				if gctx.Err() != nil && errors.Is(err, gctx.Err()) {
					return nil
				}
				return err
			}
			select {
			case found <- res:
				return errFound
			default:
				return nil
			}
		})
	}
	err = g.Wait()

	select {
	case res := <-found:
		log.WithField("workers", workers).
			WithField("attempts", attempts.Load()).
			Debug("concurrent prime construction finished")
		return res.p, res.f, nil
	default:
	}
	if err != nil {
		return nil, nil, err
	}
	return nil, nil, ctx.Err()
}

func prepareConstruction(params elgamal.ConstructParams) ([]int, error) {
	if params.FactorCount < 1 || params.FactorCount > utils.MaxFactorCount {
		return nil, oops.
			In("numtheory").
			Code("domain").
			With("factor_count", params.FactorCount).
			Wrapf(elgamal.ErrDomain, "factor count must be in [1, %d]", utils.MaxFactorCount)
	}
	if params.Rounds < 1 {
		return nil, oops.
			In("numtheory").
			Code("domain").
			With("rounds", params.Rounds).
			Wrapf(elgamal.ErrDomain, "Miller-Rabin rounds must be positive")
	}
	return FindPrimes(params.SieveLimit)
}

// searchPrime draws candidates until one is prime, the shared attempt
// counter passes MaxAttempts, or ctx is done.
func searchPrime(ctx context.Context, r io.Reader, primes []int, params elgamal.ConstructParams, attempts *atomic.Int64) (constructed, error) {
	for {
		if err := ctx.Err(); err != nil {
			return constructed{}, err
		}
		n := attempts.Add(1)
		if params.MaxAttempts > 0 && n > int64(params.MaxAttempts) {
			log.WithField("max_attempts", params.MaxAttempts).
				WithField("sieve_limit", params.SieveLimit).
				WithField("factor_count", params.FactorCount).
				Warn("prime construction exhausted its attempts")
			return constructed{}, oops.
				In("numtheory").
				Code("retry_exhausted").
				With("max_attempts", params.MaxAttempts).
				Wrapf(elgamal.ErrRetryExhausted, "no prime after %d candidates", params.MaxAttempts)
		}

		f, err := drawFactorization(r, primes, params.FactorCount)
		if err != nil {
			return constructed{}, err
		}
		p := f.Product()
		p.Add(p, bigOne)

		ok, err := IsProbablyPrime(r, p, params.Rounds)
		if err != nil {
			return constructed{}, err
		}
		if ok {
			log.WithField("attempt", n).
				WithField("bits", p.BitLen()).
				WithField("factors", len(f)).
				Debug("constructed prime with known factorization")
			return constructed{p: p, f: f}, nil
		}
	}
}

// drawFactorization picks count primes with repetition, always adding one
// factor of 2, and folds repeats into exponents.
func drawFactorization(r io.Reader, primes []int, count int) (elgamal.Factorization, error) {
	exponents := map[int]int{2: 1}
	for i := 0; i < count; i++ {
		idx, err := utils.RandomInt(r, len(primes))
		if err != nil {
			return nil, err
		}
		exponents[primes[idx]]++
	}

	qs := make([]int, 0, len(exponents))
	for q := range exponents {
		qs = append(qs, q)
	}
	sort.Ints(qs)

	f := make(elgamal.Factorization, len(qs))
	for i, q := range qs {
		f[i] = elgamal.Factor{Q: big.NewInt(int64(q)), E: exponents[q]}
	}
	return f, nil
}
