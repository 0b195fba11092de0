package numtheory

import (
	"io"
	"math/big"

	"github.com/samber/oops"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// coprimeAttempts bounds RandomCoprime. phi(m)/m is rarely below 1/10 for
// the moduli used here, so hitting it means a broken random source.
const coprimeAttempts = 1 << 16

// ExtendedGCD returns g = gcd(a, b) and Bezout coefficients x, y with
// a*x + b*y = g. a and b must be non-negative.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, oldR.Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, oldS.Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, oldT.Sub(oldT, tmp)
	}
	return oldR, oldS, oldT
}

// ModInverse returns x in [0, m) with a*x = 1 (mod m).
// It fails with elgamal.ErrNoInverse when gcd(a, m) != 1 and with
// elgamal.ErrDomain when m < 2.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m == nil || m.Cmp(bigTwo) < 0 {
		return nil, oops.
			In("numtheory").
			Code("domain").
			With("m", m).
			Wrapf(elgamal.ErrDomain, "modulus must be at least 2")
	}
	ar := new(big.Int).Mod(a, m)
	g, x, _ := ExtendedGCD(ar, m)
	if g.Cmp(bigOne) != 0 {
		return nil, oops.
			In("numtheory").
			Code("no_inverse").
			With("a", a).
			With("m", m).
			With("gcd", g).
			Wrapf(elgamal.ErrNoInverse, "gcd(a, m) = %s", g)
	}
	return x.Mod(x, m), nil
}

// RandomCoprime draws x in [2, m-1] with gcd(x, m) = 1.
func RandomCoprime(r io.Reader, m *big.Int) (*big.Int, error) {
	if m == nil || m.Cmp(bigThree) < 0 {
		return nil, oops.
			In("numtheory").
			Code("domain").
			With("m", m).
			Wrapf(elgamal.ErrDomain, "coprime search requires m >= 3")
	}
	hi := new(big.Int).Sub(m, bigOne)
	gcd := new(big.Int)
	for i := 0; i < coprimeAttempts; i++ {
		x, err := utils.RandomRange(r, bigTwo, hi)
		if err != nil {
			return nil, err
		}
		if gcd.GCD(nil, nil, x, m).Cmp(bigOne) == 0 {
			return x, nil
		}
	}
	return nil, oops.
		In("numtheory").
		Code("retry_exhausted").
		With("m", m).
		Wrapf(elgamal.ErrRetryExhausted, "no coprime value after %d draws", coprimeAttempts)
}
