// Package numtheory implements the number-theoretic engine behind ElGamal:
// Miller-Rabin primality testing, construction of primes p whose p-1 has a
// known factorization, primitive-root search and modular inversion.
//
// Every function takes its random source as an io.Reader. Passing nil uses
// crypto/rand; passing a utils.ShakeReader gives reproducible results.
package numtheory

import (
	"math/big"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

var (
	bigOne   = big.NewInt(1)
	bigTwo   = big.NewInt(2)
	bigThree = big.NewInt(3)
)

// DefaultRounds is the Miller-Rabin round count used by every parameter set.
// A composite survives all rounds with probability at most 4^-40.
const DefaultRounds = 40
