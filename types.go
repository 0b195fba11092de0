package elgamal

import (
	"fmt"
	"math/big"
	"strings"
)

// SecurityLevel names a parameter set for prime construction.
type SecurityLevel string

const (
	// EGToy builds primes of roughly 40-70 bits. Only suitable for tests and demos.
	EGToy SecurityLevel = "EG-TOY"
	// EG512 builds primes of roughly 512 bits.
	EG512 SecurityLevel = "EG-512"
	// EG1024 builds primes of roughly 1024 bits.
	EG1024 SecurityLevel = "EG-1024"
	// EG2048 builds primes of roughly 2048 bits.
	EG2048 SecurityLevel = "EG-2048"
	// Aliases with underscore for convenience
	EG_TOY  SecurityLevel = EGToy
	EG_512  SecurityLevel = EG512
	EG_1024 SecurityLevel = EG1024
	EG_2048 SecurityLevel = EG2048
)

// =============================================================================
// Parameter Types
// =============================================================================

// ConstructParams controls the Prime Constructor.
type ConstructParams struct {
	SieveLimit  int `json:"sieve_limit"`  // Largest candidate factor of p-1
	FactorCount int `json:"factor_count"` // Random factor draws per candidate
	Rounds      int `json:"rounds"`       // Miller-Rabin rounds
	MaxAttempts int `json:"max_attempts"` // Candidate bound, 0 means unbounded
}

// Params contains the complete parameter set for a security level.
type Params struct {
	Level             SecurityLevel   `json:"level"`
	Construct         ConstructParams `json:"construct"`
	GeneratorAttempts int             `json:"generator_attempts"` // 0 means unbounded
	Workers           int             `json:"workers"`            // Concurrent construction workers
}

// =============================================================================
// Factorization
// =============================================================================

// Factor is a prime power q^e dividing p-1.
type Factor struct {
	Q *big.Int
	E int
}

// Factorization is the exact factorization of p-1, ordered by ascending Q.
type Factorization []Factor

// Product returns the product of all prime powers.
func (f Factorization) Product() *big.Int {
	result := big.NewInt(1)
	pow := new(big.Int)
	for _, factor := range f {
		pow.Exp(factor.Q, big.NewInt(int64(factor.E)), nil)
		result.Mul(result, pow)
	}
	return result
}

// Primes returns the distinct prime factors.
func (f Factorization) Primes() []*big.Int {
	out := make([]*big.Int, len(f))
	for i, factor := range f {
		out[i] = new(big.Int).Set(factor.Q)
	}
	return out
}

// String renders the factorization as "2^3 * 5 * 7".
func (f Factorization) String() string {
	parts := make([]string, len(f))
	for i, factor := range f {
		if factor.E == 1 {
			parts[i] = factor.Q.String()
		} else {
			parts[i] = fmt.Sprintf("%s^%d", factor.Q, factor.E)
		}
	}
	return strings.Join(parts, " * ")
}

// =============================================================================
// Key Types
// =============================================================================

// PublicKey is the shareable half of a key pair.
type PublicKey struct {
	G *big.Int // Generator of Z_p^*
	B *big.Int // G^K mod P
	P *big.Int // Prime modulus
}

// PrivateKey holds the secret exponent alongside the public values.
type PrivateKey struct {
	PublicKey
	K *big.Int // Secret exponent, 1 < K < P-1
}

// Equal reports whether both keys carry the same values.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	if pk == nil || other == nil {
		return pk == other
	}
	return eqInt(pk.G, other.G) && eqInt(pk.B, other.B) && eqInt(pk.P, other.P)
}

// Equal reports whether both keys carry the same values.
func (sk *PrivateKey) Equal(other *PrivateKey) bool {
	if sk == nil || other == nil {
		return sk == other
	}
	return sk.PublicKey.Equal(&other.PublicKey) && eqInt(sk.K, other.K)
}

// Public returns a copy of the public half.
func (sk *PrivateKey) Public() *PublicKey {
	return &PublicKey{
		G: new(big.Int).Set(sk.G),
		B: new(big.Int).Set(sk.B),
		P: new(big.Int).Set(sk.P),
	}
}

func (pk *PublicKey) String() string {
	return fmt.Sprintf("g=%s, b=%s, p=%s", pk.G, pk.B, pk.P)
}

// String never prints K.
func (sk *PrivateKey) String() string {
	return fmt.Sprintf("%s, k=<redacted>", sk.PublicKey.String())
}

func eqInt(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

// =============================================================================
// Cipher and Signature Types
// =============================================================================

// Cryptogram is one encrypted message unit (c1, c2).
type Cryptogram struct {
	C1 *big.Int // G^x mod P
	C2 *big.Int // m * B^x mod P
}

// Signature is an ElGamal signature (y, s).
type Signature struct {
	Y *big.Int // G^r mod P
	S *big.Int // (H(m) - K*Y) * r^-1 mod (P-1)
}
