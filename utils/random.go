package utils

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"runtime"
	"sync"
)

// RandReader is the default random source when a caller passes a nil reader.
var RandReader io.Reader = rand.Reader

var bigOne = big.NewInt(1)

// Reader returns r, or RandReader when r is nil.
func Reader(r io.Reader) io.Reader {
	if r == nil {
		return RandReader
	}
	return r
}

// SecureRandomBytes generates n random bytes from r.
func SecureRandomBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(Reader(r), buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// RandomInt generates a uniformly distributed integer in [0, max).
// It uses rejection sampling to ensure a uniform distribution.
func RandomInt(r io.Reader, max int) (int, error) {
	if max <= 0 {
		return 0, errors.New("max must be positive")
	}
	if max == 1 {
		return 0, nil
	}

	// Calculate number of bytes needed
	bitsNeeded := 0
	for m := max - 1; m > 0; m >>= 1 {
		bitsNeeded++
	}
	bytesNeeded := (bitsNeeded + 7) / 8
	mask := (1 << bitsNeeded) - 1

	buf := make([]byte, bytesNeeded)
	for {
		if _, err := io.ReadFull(Reader(r), buf); err != nil {
			return 0, err
		}

		var value int
		for i := 0; i < bytesNeeded; i++ {
			value = (value << 8) | int(buf[i])
		}
		value &= mask

		if value < max {
			return value, nil
		}
	}
}

// RandomRange returns a uniformly distributed integer in the closed range [lo, hi].
func RandomRange(r io.Reader, lo, hi *big.Int) (*big.Int, error) {
	if lo.Cmp(hi) > 0 {
		return nil, errors.New("empty random range")
	}
	span := new(big.Int).Sub(hi, lo)
	span.Add(span, bigOne)
	n, err := rand.Int(Reader(r), span)
	if err != nil {
		return nil, err
	}
	return n.Add(n, lo), nil
}

// LockedReader serializes reads so one source can feed several goroutines.
type LockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

// NewLockedReader wraps r, or RandReader when r is nil.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{r: Reader(r)}
}

func (l *LockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}

// Zeroize overwrites a byte slice with zeros.
// Uses runtime.KeepAlive to prevent compiler optimization from eliminating the stores.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// ZeroizeBigInt clears the words backing x and sets it to zero.
func ZeroizeBigInt(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	runtime.KeepAlive(words)
	x.SetInt64(0)
}
