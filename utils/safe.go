// Package utils provides utility functions for the ElGamal packages.
// This file contains bounds checks and the length-prefixed integer framing
// shared by every serializer, so hostile input cannot force huge allocations.

package utils

import (
	"encoding/binary"
	"errors"
	"math"
	"math/big"
)

// Maximum allowed sizes for parameters and serialized data.
const (
	// MaxSieveLimit is the largest sieve bound accepted by the Prime Constructor.
	MaxSieveLimit = 1 << 24

	// MaxFactorCount is the maximum number of factor draws per candidate.
	MaxFactorCount = 1000

	// MaxRounds is the maximum Miller-Rabin round count.
	MaxRounds = 256

	// MaxIntBytes is the maximum encoded size of one integer (256 Kbit).
	MaxIntBytes = 1 << 15

	// MaxSequenceLength is the maximum number of records in a cryptogram sequence.
	MaxSequenceLength = 1 << 20
)

var (
	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")

	// ErrTruncated indicates the input ended inside a field.
	ErrTruncated = errors.New("truncated input")
)

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}

// CheckPositive validates that value is > 0.
func CheckPositive(value int, name string) error {
	if value <= 0 {
		return errors.New(name + " must be positive")
	}
	return nil
}

// SafeReadLength reads a uint32 length from data at offset, validates it, and returns the value.
// Returns error if not enough bytes available or length exceeds maxAllowed.
func SafeReadLength(data []byte, offset, maxAllowed int) (length int, newOffset int, err error) {
	if offset < 0 || offset+4 > len(data) {
		return 0, offset, ErrTruncated
	}
	raw := binary.LittleEndian.Uint32(data[offset:])
	// Check against max allowed (also handles potential negative after int cast on 32-bit)
	if raw > uint32(maxAllowed) || (maxAllowed > math.MaxInt32 && int(raw) < 0) {
		return 0, offset, ErrExceedsLimit
	}
	return int(raw), offset + 4, nil
}

// ValidateSliceAccess checks that accessing data[offset:offset+size] is safe.
func ValidateSliceAccess(data []byte, offset, size int) error {
	if offset < 0 || size < 0 {
		return ErrInvalidLength
	}
	if offset+size < offset {
		return ErrInvalidLength
	}
	if offset+size > len(data) {
		return ErrTruncated
	}
	return nil
}

// AppendUint32 appends v in little-endian order.
func AppendUint32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// AppendBigInt appends a non-negative integer as a uint32 length followed by
// its big-endian magnitude. Zero encodes as an empty magnitude.
func AppendBigInt(dst []byte, x *big.Int) []byte {
	b := x.Bytes()
	dst = AppendUint32(dst, uint32(len(b)))
	return append(dst, b...)
}

// ReadBigInt decodes one integer written by AppendBigInt.
func ReadBigInt(data []byte, offset int) (*big.Int, int, error) {
	n, offset, err := SafeReadLength(data, offset, MaxIntBytes)
	if err != nil {
		return nil, offset, err
	}
	if err := ValidateSliceAccess(data, offset, n); err != nil {
		return nil, offset, err
	}
	return new(big.Int).SetBytes(data[offset : offset+n]), offset + n, nil
}
