// Package cipher implements ElGamal encryption of integers in [0, p), of
// strings as one cryptogram per rune, and of padded byte messages.
package cipher

import (
	"io"
	"math/big"

	"github.com/samber/oops"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/numtheory"
)

var bigOne = big.NewInt(1)

// Encrypt encrypts m under pk with a fresh exponent x coprime to p-1:
// C1 = g^x mod p, C2 = m * b^x mod p.
// m outside [0, p) fails with elgamal.ErrMessageRange before any
// exponentiation is performed.
func Encrypt(r io.Reader, pk *elgamal.PublicKey, m *big.Int) (*elgamal.Cryptogram, error) {
	if err := checkMessage(pk, m); err != nil {
		return nil, err
	}
	x, err := numtheory.RandomCoprime(r, new(big.Int).Sub(pk.P, bigOne))
	if err != nil {
		return nil, err
	}
	return encrypt(pk, m, x), nil
}

// EncryptWithExponent encrypts m with a caller-chosen exponent x in [1, p-2].
// Reusing x across messages reveals their ratio; it exists for test vectors.
func EncryptWithExponent(pk *elgamal.PublicKey, m, x *big.Int) (*elgamal.Cryptogram, error) {
	if err := checkMessage(pk, m); err != nil {
		return nil, err
	}
	if x == nil || x.Sign() <= 0 || x.Cmp(new(big.Int).Sub(pk.P, bigOne)) >= 0 {
		return nil, oops.
			In("cipher").
			Code("domain").
			With("x", x).
			Wrapf(elgamal.ErrDomain, "exponent must lie in [1, p-2]")
	}
	return encrypt(pk, m, x), nil
}

func encrypt(pk *elgamal.PublicKey, m, x *big.Int) *elgamal.Cryptogram {
	c1 := new(big.Int).Exp(pk.G, x, pk.P)
	c2 := new(big.Int).Exp(pk.B, x, pk.P)
	c2.Mul(c2, m)
	c2.Mod(c2, pk.P)
	return &elgamal.Cryptogram{C1: c1, C2: c2}
}

// Decrypt recovers m = C2 * (C1^k)^-1 mod p.
// A component outside [0, p) fails with elgamal.ErrDomain; C1 = 0 has no
// shared secret to invert and fails with elgamal.ErrNoInverse.
func Decrypt(sk *elgamal.PrivateKey, c *elgamal.Cryptogram) (*big.Int, error) {
	if sk == nil || sk.P == nil || sk.K == nil {
		return nil, oops.In("cipher").Code("domain").Wrapf(elgamal.ErrDomain, "incomplete private key")
	}
	if c == nil || !inRange(c.C1, sk.P) || !inRange(c.C2, sk.P) {
		return nil, oops.
			In("cipher").
			Code("domain").
			With("p", sk.P).
			Wrapf(elgamal.ErrDomain, "cryptogram component outside [0, p)")
	}

	s := new(big.Int).Exp(c.C1, sk.K, sk.P)
	sInv, err := numtheory.ModInverse(s, sk.P)
	if err != nil {
		return nil, err
	}
	m := sInv.Mul(sInv, c.C2)
	return m.Mod(m, sk.P), nil
}

func checkMessage(pk *elgamal.PublicKey, m *big.Int) error {
	if pk == nil || pk.G == nil || pk.B == nil || pk.P == nil {
		return oops.In("cipher").Code("domain").Wrapf(elgamal.ErrDomain, "incomplete public key")
	}
	if !inRange(m, pk.P) {
		return oops.
			In("cipher").
			Code("message_range").
			With("m", m).
			With("p", pk.P).
			Wrapf(elgamal.ErrMessageRange, "message must lie in [0, p)")
	}
	return nil
}

// inRange reports 0 <= v < p.
func inRange(v, p *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(p) < 0
}
