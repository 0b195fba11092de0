package cipher

import (
	"io"
	"math/big"
	"unicode/utf8"

	"github.com/samber/oops"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// EncryptString encrypts each rune of s as its own cryptogram, with a fresh
// exponent per rune. s must be valid UTF-8 and every code point must be below p.
func EncryptString(r io.Reader, pk *elgamal.PublicKey, s string) ([]elgamal.Cryptogram, error) {
	if !utf8.ValidString(s) {
		return nil, oops.
			In("cipher").
			Code("domain").
			Wrapf(elgamal.ErrDomain, "text is not valid UTF-8")
	}
	n := utf8.RuneCountInString(s)
	if err := utils.CheckLength(n, utils.MaxSequenceLength); err != nil {
		return nil, oops.In("cipher").With("runes", n).Wrap(err)
	}
	out := make([]elgamal.Cryptogram, 0, n)
	m := new(big.Int)
	for _, ch := range s {
		c, err := Encrypt(r, pk, m.SetInt64(int64(ch)))
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// DecryptString inverts EncryptString. A unit that does not decrypt to a
// valid code point fails with elgamal.ErrDomain.
func DecryptString(sk *elgamal.PrivateKey, cs []elgamal.Cryptogram) (string, error) {
	runes := make([]rune, len(cs))
	for i := range cs {
		m, err := Decrypt(sk, &cs[i])
		if err != nil {
			return "", err
		}
		if !m.IsInt64() || m.Int64() > utf8.MaxRune || !utf8.ValidRune(rune(m.Int64())) {
			return "", oops.
				In("cipher").
				Code("domain").
				With("index", i).
				Wrapf(elgamal.ErrDomain, "unit %d is not a code point", i)
		}
		runes[i] = rune(m.Int64())
	}
	return string(runes), nil
}
