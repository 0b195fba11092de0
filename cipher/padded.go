package cipher

import (
	"io"

	"github.com/samber/oops"
	pgpelgamal "golang.org/x/crypto/openpgp/elgamal"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// PaddingOverhead is the PKCS #1 v1.5 overhead of the padded byte mode.
const PaddingOverhead = 11

// MaxBytesMessage returns the longest message EncryptBytes accepts for pk.
// Toy keys are too small for any message.
func MaxBytesMessage(pk *elgamal.PublicKey) int {
	n := (pk.P.BitLen()+7)/8 - PaddingOverhead
	if n < 0 {
		return 0
	}
	return n
}

// EncryptBytes encrypts a short byte message as a single PKCS #1 v1.5 padded
// unit, in the format of the OpenPGP ElGamal implementation.
func EncryptBytes(r io.Reader, pk *elgamal.PublicKey, msg []byte) (*elgamal.Cryptogram, error) {
	if pk == nil || pk.G == nil || pk.B == nil || pk.P == nil {
		return nil, oops.In("cipher").Code("domain").Wrapf(elgamal.ErrDomain, "incomplete public key")
	}
	if len(msg) > MaxBytesMessage(pk) {
		return nil, oops.
			In("cipher").
			Code("message_range").
			With("length", len(msg)).
			With("max", MaxBytesMessage(pk)).
			Wrapf(elgamal.ErrMessageRange, "message too long for modulus")
	}
	c1, c2, err := pgpelgamal.Encrypt(utils.Reader(r), ToOpenPGPPublicKey(pk), msg)
	if err != nil {
		return nil, oops.In("cipher").Code("encrypt").Wrap(err)
	}
	return &elgamal.Cryptogram{C1: c1, C2: c2}, nil
}

// DecryptBytes inverts EncryptBytes.
func DecryptBytes(sk *elgamal.PrivateKey, c *elgamal.Cryptogram) ([]byte, error) {
	if sk == nil || sk.P == nil || sk.K == nil {
		return nil, oops.In("cipher").Code("domain").Wrapf(elgamal.ErrDomain, "incomplete private key")
	}
	if c == nil || !inRange(c.C1, sk.P) || !inRange(c.C2, sk.P) || c.C1.Sign() == 0 || c.C2.Sign() == 0 {
		return nil, oops.
			In("cipher").
			Code("domain").
			Wrapf(elgamal.ErrDomain, "cryptogram component outside [1, p)")
	}
	msg, err := pgpelgamal.Decrypt(ToOpenPGPPrivateKey(sk), c.C1, c.C2)
	if err != nil {
		return nil, oops.In("cipher").Code("decrypt").Wrap(err)
	}
	return msg, nil
}

// ToOpenPGPPublicKey converts pk to the x/crypto OpenPGP representation.
func ToOpenPGPPublicKey(pk *elgamal.PublicKey) *pgpelgamal.PublicKey {
	return &pgpelgamal.PublicKey{G: pk.G, P: pk.P, Y: pk.B}
}

// ToOpenPGPPrivateKey converts sk to the x/crypto OpenPGP representation.
func ToOpenPGPPrivateKey(sk *elgamal.PrivateKey) *pgpelgamal.PrivateKey {
	return &pgpelgamal.PrivateKey{
		PublicKey: *ToOpenPGPPublicKey(&sk.PublicKey),
		X:         sk.K,
	}
}

// FromOpenPGPPrivateKey converts an OpenPGP ElGamal key. The group
// parameters are taken as given.
func FromOpenPGPPrivateKey(k *pgpelgamal.PrivateKey) *elgamal.PrivateKey {
	return &elgamal.PrivateKey{
		PublicKey: elgamal.PublicKey{G: k.G, B: k.Y, P: k.P},
		K:         k.X,
	}
}
