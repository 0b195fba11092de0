// Package sign implements ElGamal signatures over a 256-bit message digest.
package sign

import (
	"crypto/sha256"
	"hash"
	"io"
	"math/big"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/crypto/sha3"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/numtheory"
)

// nonceAttempts bounds the redraws of Sign when a nonce yields s = 0.
const nonceAttempts = 64

var log = logger.GetGoI2PLogger()

var bigOne = big.NewInt(1)

// Signer signs and verifies with a fixed hash function.
type Signer struct {
	newHash func() hash.Hash
}

// NewSigner returns a Signer hashing messages with newHash.
// A nil newHash selects SHA-256.
func NewSigner(newHash func() hash.Hash) *Signer {
	if newHash == nil {
		newHash = sha256.New
	}
	return &Signer{newHash: newHash}
}

// NewSHA3Signer returns a Signer using SHA3-256.
func NewSHA3Signer() *Signer {
	return NewSigner(sha3.New256)
}

var defaultSigner = NewSigner(nil)

// Sign signs msg with SHA-256. See Signer.Sign.
func Sign(r io.Reader, sk *elgamal.PrivateKey, msg []byte) (*elgamal.Signature, error) {
	return defaultSigner.Sign(r, sk, msg)
}

// SignWithNonce signs msg with SHA-256 and a caller-chosen nonce.
func SignWithNonce(sk *elgamal.PrivateKey, msg []byte, nonce *big.Int) (*elgamal.Signature, error) {
	return defaultSigner.SignWithNonce(sk, msg, nonce)
}

// Verify checks a SHA-256 signature.
func Verify(pk *elgamal.PublicKey, msg []byte, sig *elgamal.Signature) bool {
	return defaultSigner.Verify(pk, msg, sig)
}

// Digest returns H(msg) as a big-endian integer.
func (s *Signer) Digest(msg []byte) *big.Int {
	h := s.newHash()
	h.Write(msg)
	return new(big.Int).SetBytes(h.Sum(nil))
}

// Sign draws a nonce r coprime to p-1 and returns (y, s) with y = g^r mod p
// and s = (H(msg) - k*y) * r^-1 mod (p-1). A nonce giving s = 0 would leak
// the relation between k and y, so it is discarded and redrawn.
func (s *Signer) Sign(r io.Reader, sk *elgamal.PrivateKey, msg []byte) (*elgamal.Signature, error) {
	if err := checkPrivateKey(sk); err != nil {
		return nil, err
	}
	pm1 := new(big.Int).Sub(sk.P, bigOne)
	h := s.Digest(msg)

	for i := 0; i < nonceAttempts; i++ {
		nonce, err := numtheory.RandomCoprime(r, pm1)
		if err != nil {
			return nil, err
		}
		sig, err := sign(sk, h, nonce)
		if err != nil {
			return nil, err
		}
		if sig.S.Sign() != 0 {
			return sig, nil
		}
		log.WithField("attempt", i+1).Debug("nonce produced s = 0, redrawing")
	}
	return nil, oops.
		In("sign").
		Code("retry_exhausted").
		Wrapf(elgamal.ErrRetryExhausted, "no usable nonce after %d draws", nonceAttempts)
}

// SignWithNonce signs with nonce, which must lie in [2, p-2] and be coprime
// to p-1 (elgamal.ErrNoInverse otherwise). A nonce giving s = 0 fails with
// elgamal.ErrDomain.
func (s *Signer) SignWithNonce(sk *elgamal.PrivateKey, msg []byte, nonce *big.Int) (*elgamal.Signature, error) {
	if err := checkPrivateKey(sk); err != nil {
		return nil, err
	}
	if nonce == nil || nonce.Cmp(bigOne) <= 0 || nonce.Cmp(new(big.Int).Sub(sk.P, bigOne)) >= 0 {
		return nil, oops.
			In("sign").
			Code("domain").
			With("nonce", nonce).
			Wrapf(elgamal.ErrDomain, "nonce must lie in [2, p-2]")
	}
	sig, err := sign(sk, s.Digest(msg), nonce)
	if err != nil {
		return nil, err
	}
	if sig.S.Sign() == 0 {
		return nil, oops.
			In("sign").
			Code("domain").
			Wrapf(elgamal.ErrDomain, "nonce yields s = 0")
	}
	return sig, nil
}

func sign(sk *elgamal.PrivateKey, h, nonce *big.Int) (*elgamal.Signature, error) {
	pm1 := new(big.Int).Sub(sk.P, bigOne)
	nonceInv, err := numtheory.ModInverse(nonce, pm1)
	if err != nil {
		return nil, err
	}

	y := new(big.Int).Exp(sk.G, nonce, sk.P)

	// s = (h - k*y) * r^-1 mod (p-1)
	sv := new(big.Int).Mul(sk.K, y)
	sv.Sub(h, sv)
	sv.Mul(sv, nonceInv)
	sv.Mod(sv, pm1)

	return &elgamal.Signature{Y: y, S: sv}, nil
}

// Verify reports whether sig is a valid signature of msg under pk:
// 0 < y < p, 0 <= s < p-1 and b^y * y^s = g^H(msg) (mod p).
func (s *Signer) Verify(pk *elgamal.PublicKey, msg []byte, sig *elgamal.Signature) bool {
	if pk == nil || pk.G == nil || pk.B == nil || pk.P == nil || pk.P.Sign() <= 0 {
		return false
	}
	if sig == nil || sig.Y == nil || sig.S == nil {
		return false
	}
	pm1 := new(big.Int).Sub(pk.P, bigOne)
	if sig.Y.Sign() <= 0 || sig.Y.Cmp(pk.P) >= 0 {
		return false
	}
	if sig.S.Sign() < 0 || sig.S.Cmp(pm1) >= 0 {
		return false
	}

	h := s.Digest(msg)
	h.Mod(h, pm1)

	lhs := new(big.Int).Exp(pk.B, sig.Y, pk.P)
	lhs.Mul(lhs, new(big.Int).Exp(sig.Y, sig.S, pk.P))
	lhs.Mod(lhs, pk.P)
	rhs := new(big.Int).Exp(pk.G, h, pk.P)
	return lhs.Cmp(rhs) == 0
}

func checkPrivateKey(sk *elgamal.PrivateKey) error {
	if sk == nil || sk.G == nil || sk.P == nil || sk.K == nil || sk.P.Cmp(big.NewInt(5)) < 0 {
		return oops.In("sign").Code("domain").Wrapf(elgamal.ErrDomain, "incomplete private key")
	}
	return nil
}
