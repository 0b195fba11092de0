// Package keys implements ElGamal key generation and key serialization.
package keys

import (
	"context"
	"io"
	"math/big"
	"runtime"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/core"
	"github.com/BackendStack21/elgamal-go/numtheory"
	"github.com/BackendStack21/elgamal-go/utils"
)

const DomainFingerprint = "elgamal-pk-fingerprint-v1"

var log = logger.GetGoI2PLogger()

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// GenerateKeyPair generates a key pair for a security level using crypto/rand.
func GenerateKeyPair(level elgamal.SecurityLevel) (*elgamal.PrivateKey, *elgamal.PublicKey, error) {
	params, err := core.GetParams(level)
	if err != nil {
		return nil, nil, err
	}
	return GenerateKeys(context.Background(), nil, params)
}

// GenerateKeys constructs a fresh prime for params, finds a generator and
// draws the secret exponent. Prime construction runs on params.Workers
// goroutines; zero means one per available CPU.
func GenerateKeys(ctx context.Context, r io.Reader, params elgamal.Params) (*elgamal.PrivateKey, *elgamal.PublicKey, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, nil, oops.
			In("keys").
			Code("domain").
			With("level", params.Level).
			Wrapf(elgamal.ErrDomain, "invalid parameters: %v", err)
	}

	workers := params.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p, f, err := numtheory.ConstructPrimeConcurrent(ctx, r, params.Construct, workers)
	if err != nil {
		return nil, nil, err
	}

	sk, pk, err := generateForPrime(ctx, r, p, f, params.GeneratorAttempts)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("level", params.Level).
		WithField("bits", p.BitLen()).
		WithField("factors", len(f)).
		Debug("generated key pair")
	return sk, pk, nil
}

// GenerateKeysWithPrime builds a key pair over a caller-supplied prime p and
// the prime factors of p-1. The pair is used verbatim: primality of p and
// completeness of f are the caller's responsibility.
func GenerateKeysWithPrime(ctx context.Context, r io.Reader, p *big.Int, f elgamal.Factorization) (*elgamal.PrivateKey, *elgamal.PublicKey, error) {
	return generateForPrime(ctx, r, p, f, 0)
}

func generateForPrime(ctx context.Context, r io.Reader, p *big.Int, f elgamal.Factorization, generatorAttempts int) (*elgamal.PrivateKey, *elgamal.PublicKey, error) {
	g, err := numtheory.FindGenerator(ctx, r, p, f, generatorAttempts)
	if err != nil {
		return nil, nil, err
	}

	// k in [2, p-2]
	k, err := utils.RandomRange(r, bigTwo, new(big.Int).Sub(p, bigTwo))
	if err != nil {
		return nil, nil, err
	}
	b := new(big.Int).Exp(g, k, p)

	sk := &elgamal.PrivateKey{
		PublicKey: elgamal.PublicKey{
			G: g,
			B: b,
			P: new(big.Int).Set(p),
		},
		K: k,
	}
	return sk, sk.Public(), nil
}

// Fingerprint returns a SHA3-256 digest identifying a public key.
func Fingerprint(pk *elgamal.PublicKey) []byte {
	return utils.HashWithDomain(DomainFingerprint, SerializePublicKey(pk))
}

// ValidatePublicKey checks the structural ranges of a public key:
// p >= 5 and odd, 1 < g < p-1, 0 < b < p. Primality of p is not re-tested.
func ValidatePublicKey(pk *elgamal.PublicKey) error {
	if pk == nil || pk.G == nil || pk.B == nil || pk.P == nil {
		return oops.In("keys").Code("domain").Wrapf(elgamal.ErrDomain, "incomplete public key")
	}
	pm1 := new(big.Int).Sub(pk.P, bigOne)
	switch {
	case pk.P.Cmp(big.NewInt(5)) < 0 || pk.P.Bit(0) == 0:
		return oops.In("keys").Code("domain").With("p", pk.P).Wrapf(elgamal.ErrDomain, "modulus must be an odd prime >= 5")
	case pk.G.Cmp(bigOne) <= 0 || pk.G.Cmp(pm1) >= 0:
		return oops.In("keys").Code("domain").With("g", pk.G).Wrapf(elgamal.ErrDomain, "generator out of range")
	case pk.B.Sign() <= 0 || pk.B.Cmp(pk.P) >= 0:
		return oops.In("keys").Code("domain").With("b", pk.B).Wrapf(elgamal.ErrDomain, "public value out of range")
	}
	return nil
}

// ValidatePrivateKey checks the public ranges plus 1 < k < p-1 and b = g^k mod p.
func ValidatePrivateKey(sk *elgamal.PrivateKey) error {
	if sk == nil {
		return oops.In("keys").Code("domain").Wrapf(elgamal.ErrDomain, "nil private key")
	}
	if err := ValidatePublicKey(&sk.PublicKey); err != nil {
		return err
	}
	pm1 := new(big.Int).Sub(sk.P, bigOne)
	if sk.K == nil || sk.K.Cmp(bigOne) <= 0 || sk.K.Cmp(pm1) >= 0 {
		return oops.In("keys").Code("domain").Wrapf(elgamal.ErrDomain, "secret exponent out of range")
	}
	if new(big.Int).Exp(sk.G, sk.K, sk.P).Cmp(sk.B) != 0 {
		return oops.In("keys").Code("domain").Wrapf(elgamal.ErrDomain, "public value does not match secret exponent")
	}
	return nil
}

// Destroy overwrites the secret exponent. The key is unusable afterwards.
func Destroy(sk *elgamal.PrivateKey) {
	if sk == nil {
		return
	}
	utils.ZeroizeBigInt(sk.K)
}
