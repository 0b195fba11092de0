// Package core provides parameter sets and validation for ElGamal key generation.
package core

import (
	"errors"
	"fmt"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/numtheory"
	"github.com/BackendStack21/elgamal-go/utils"
)

// EGToyParams reproduces the small primes of the reference driver: ten draws
// from the primes below 100. Keys are breakable; use only in tests and demos.
var EGToyParams = elgamal.Params{
	Level: elgamal.EGToy,
	Construct: elgamal.ConstructParams{
		SieveLimit:  100,
		FactorCount: 10,
		Rounds:      numtheory.DefaultRounds,
		MaxAttempts: 100000,
	},
	GeneratorAttempts: 10000,
	Workers:           1,
}

// EG512Params builds primes of roughly 512 bits.
var EG512Params = elgamal.Params{
	Level: elgamal.EG512,
	Construct: elgamal.ConstructParams{
		SieveLimit:  1 << 16,
		FactorCount: 35,
		Rounds:      numtheory.DefaultRounds,
	},
	GeneratorAttempts: 10000,
}

// EG1024Params builds primes of roughly 1024 bits.
var EG1024Params = elgamal.Params{
	Level: elgamal.EG1024,
	Construct: elgamal.ConstructParams{
		SieveLimit:  1 << 16,
		FactorCount: 70,
		Rounds:      numtheory.DefaultRounds,
	},
	GeneratorAttempts: 10000,
}

// EG2048Params builds primes of roughly 2048 bits.
var EG2048Params = elgamal.Params{
	Level: elgamal.EG2048,
	Construct: elgamal.ConstructParams{
		SieveLimit:  1 << 16,
		FactorCount: 140,
		Rounds:      numtheory.DefaultRounds,
	},
	GeneratorAttempts: 10000,
}

// GetParams returns the parameter set for the given security level.
func GetParams(level elgamal.SecurityLevel) (elgamal.Params, error) {
	switch level {
	case elgamal.EGToy:
		return EGToyParams, nil
	case elgamal.EG512:
		return EG512Params, nil
	case elgamal.EG1024:
		return EG1024Params, nil
	case elgamal.EG2048:
		return EG2048Params, nil
	default:
		return elgamal.Params{}, fmt.Errorf("unknown security level: %s", level)
	}
}

// ValidateParams validates the parameter set for consistency.
func ValidateParams(params elgamal.Params) error {
	c := params.Construct
	if c.SieveLimit < 2 {
		return errors.New("sieve limit must be at least 2")
	}
	if c.SieveLimit > utils.MaxSieveLimit {
		return fmt.Errorf("sieve limit %d exceeds %d", c.SieveLimit, utils.MaxSieveLimit)
	}
	if err := utils.CheckPositive(c.FactorCount, "factor count"); err != nil {
		return err
	}
	if c.FactorCount > utils.MaxFactorCount {
		return fmt.Errorf("factor count %d exceeds %d", c.FactorCount, utils.MaxFactorCount)
	}
	if err := utils.CheckPositive(c.Rounds, "Miller-Rabin rounds"); err != nil {
		return err
	}
	if c.Rounds > utils.MaxRounds {
		return fmt.Errorf("Miller-Rabin rounds %d exceeds %d", c.Rounds, utils.MaxRounds)
	}
	if c.MaxAttempts < 0 || params.GeneratorAttempts < 0 {
		return errors.New("attempt bounds must not be negative")
	}
	if params.Workers < 0 {
		return errors.New("worker count must not be negative")
	}
	return nil
}
