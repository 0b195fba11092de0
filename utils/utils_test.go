package utils

import (
	"bytes"
	"errors"
	"math/big"
	"sync"
	"testing"
)

type errorReader struct{}

func (e *errorReader) Read(p []byte) (int, error) {
	return 0, errors.New("rand failure")
}

func TestRandomInt(t *testing.T) {
	// Test edge cases
	_, err := RandomInt(nil, 0)
	if err == nil {
		t.Error("RandomInt(0) should fail")
	}

	val, err := RandomInt(nil, 1)
	if err != nil {
		t.Errorf("RandomInt(1) failed: %v", err)
	}
	if val != 0 {
		t.Errorf("RandomInt(1) should return 0, got %d", val)
	}

	// Test range
	max := 100
	for i := 0; i < 1000; i++ {
		val, err := RandomInt(nil, max)
		if err != nil {
			t.Fatalf("RandomInt failed: %v", err)
		}
		if val < 0 || val >= max {
			t.Errorf("RandomInt returned value out of range: %d", val)
		}
	}

	if _, err := RandomInt(&errorReader{}, 100); err == nil {
		t.Error("expected error from rand failure")
	}
}

func TestRandomRange(t *testing.T) {
	lo, hi := big.NewInt(2), big.NewInt(9)
	seen := make(map[int64]bool)
	for i := 0; i < 2000; i++ {
		v, err := RandomRange(nil, lo, hi)
		if err != nil {
			t.Fatalf("RandomRange failed: %v", err)
		}
		if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
			t.Fatalf("RandomRange returned %s outside [2, 9]", v)
		}
		seen[v.Int64()] = true
	}
	if len(seen) != 8 {
		t.Errorf("expected all 8 values to appear, saw %d", len(seen))
	}

	v, err := RandomRange(nil, big.NewInt(5), big.NewInt(5))
	if err != nil || v.Int64() != 5 {
		t.Errorf("RandomRange(5, 5) = %v, %v; want 5", v, err)
	}

	if _, err := RandomRange(nil, hi, lo); err == nil {
		t.Error("RandomRange should reject an empty range")
	}
}

func TestSecureRandomBytes(t *testing.T) {
	b, err := SecureRandomBytes(nil, 32)
	if err != nil {
		t.Fatalf("SecureRandomBytes failed: %v", err)
	}
	if len(b) != 32 {
		t.Errorf("Expected 32 bytes, got %d", len(b))
	}

	b2, _ := SecureRandomBytes(nil, 32)
	if bytes.Equal(b, b2) {
		t.Error("SecureRandomBytes returned duplicate values")
	}

	old := RandReader
	RandReader = &errorReader{}
	defer func() { RandReader = old }()
	if _, err := SecureRandomBytes(nil, 32); err == nil {
		t.Error("expected error from rand failure")
	}
}

func TestShakeReaderDeterministic(t *testing.T) {
	seed := []byte("seed")
	a, _ := SecureRandomBytes(NewShakeReader(seed), 64)
	b, _ := SecureRandomBytes(NewShakeReader(seed), 64)
	if !bytes.Equal(a, b) {
		t.Error("ShakeReader not deterministic")
	}

	c, _ := SecureRandomBytes(NewShakeReader([]byte("other")), 64)
	if bytes.Equal(a, c) {
		t.Error("different seeds produced the same stream")
	}

	x, _ := RandomRange(NewShakeReader(seed), big.NewInt(0), big.NewInt(1<<40))
	y, _ := RandomRange(NewShakeReader(seed), big.NewInt(0), big.NewInt(1<<40))
	if x.Cmp(y) != 0 {
		t.Error("RandomRange over a seeded reader not deterministic")
	}
}

func TestLockedReader(t *testing.T) {
	r := NewLockedReader(NewShakeReader([]byte("locked")))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := RandomInt(r, 1000); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestZeroize(t *testing.T) {
	b := []byte{1, 2, 3}
	Zeroize(b)
	for _, v := range b {
		if v != 0 {
			t.Error("Zeroize failed")
		}
	}

	x, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	words := x.Bits()
	ZeroizeBigInt(x)
	if x.Sign() != 0 {
		t.Error("ZeroizeBigInt did not reset value")
	}
	for _, w := range words {
		if w != 0 {
			t.Error("ZeroizeBigInt left backing words")
		}
	}
	ZeroizeBigInt(nil)
}

func TestHashWithDomain(t *testing.T) {
	data := []byte("test")
	dHash := HashWithDomain("domain", data)
	if len(dHash) != 32 {
		t.Errorf("HashWithDomain returned wrong length: %d", len(dHash))
	}
	if !bytes.Equal(dHash, HashWithDomain("domain", data)) {
		t.Error("HashWithDomain not deterministic")
	}
	if bytes.Equal(dHash, HashWithDomain("other", data)) {
		t.Error("HashWithDomain should separate domains")
	}
	// length prefix keeps ("ab", "c") and ("a", "bc") apart
	if bytes.Equal(HashWithDomain("ab", []byte("c")), HashWithDomain("a", []byte("bc"))) {
		t.Error("HashWithDomain domain boundary is ambiguous")
	}
}
