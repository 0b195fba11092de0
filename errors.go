package elgamal

import "errors"

var (
	// ErrDomain indicates a modulus, exponent or limit outside its valid range.
	ErrDomain = errors.New("elgamal: argument out of domain")

	// ErrNoInverse indicates gcd(a, m) != 1, so a has no inverse modulo m.
	// It usually means a malformed key or modulus.
	ErrNoInverse = errors.New("elgamal: modular inverse does not exist")

	// ErrMessageRange indicates a plaintext unit outside [0, p).
	ErrMessageRange = errors.New("elgamal: message out of range for modulus")

	// ErrRetryExhausted indicates a search loop hit its attempt bound.
	// Callers may retry with a larger sieve limit or more factors.
	ErrRetryExhausted = errors.New("elgamal: retry attempts exhausted")
)
