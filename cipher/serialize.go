package cipher

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// SerializeCryptogram encodes (c1, c2) as length-prefixed integers.
func SerializeCryptogram(c *elgamal.Cryptogram) []byte {
	return appendCryptogram(nil, c)
}

// DeserializeCryptogram decodes a cryptogram. Ranges are checked by Decrypt,
// which knows the modulus.
func DeserializeCryptogram(data []byte) (*elgamal.Cryptogram, error) {
	c, offset, err := readCryptogram(data, 0)
	if err != nil {
		return nil, err
	}
	if offset != len(data) {
		return nil, errors.New("trailing bytes after cryptogram")
	}
	return c, nil
}

// SerializeCryptograms encodes a sequence as a uint32 count followed by the
// cryptograms.
func SerializeCryptograms(cs []elgamal.Cryptogram) []byte {
	result := utils.AppendUint32(nil, uint32(len(cs)))
	for i := range cs {
		result = appendCryptogram(result, &cs[i])
	}
	return result
}

// DeserializeCryptograms decodes a sequence written by SerializeCryptograms.
func DeserializeCryptograms(data []byte) ([]elgamal.Cryptogram, error) {
	count, offset, err := utils.SafeReadLength(data, 0, utils.MaxSequenceLength)
	if err != nil {
		return nil, err
	}
	// each cryptogram takes at least 8 bytes
	if err := utils.ValidateSliceAccess(data, offset, count*8); err != nil {
		return nil, err
	}
	out := make([]elgamal.Cryptogram, count)
	for i := range out {
		var c *elgamal.Cryptogram
		c, offset, err = readCryptogram(data, offset)
		if err != nil {
			return nil, fmt.Errorf("cryptogram %d: %w", i, err)
		}
		out[i] = *c
	}
	if offset != len(data) {
		return nil, errors.New("trailing bytes after cryptogram sequence")
	}
	return out, nil
}

// WriteCryptograms writes a sequence to w in the SerializeCryptograms format.
func WriteCryptograms(w io.Writer, cs []elgamal.Cryptogram) error {
	_, err := w.Write(SerializeCryptograms(cs))
	return err
}

// ReadCryptograms reads one sequence written by WriteCryptograms. It stops
// after the last cryptogram, so several sequences may share a stream.
func ReadCryptograms(r io.Reader) ([]elgamal.Cryptogram, error) {
	count, err := readLength(r, utils.MaxSequenceLength)
	if err != nil {
		return nil, err
	}
	out := make([]elgamal.Cryptogram, 0, min(count, 1024))
	for i := 0; i < count; i++ {
		c1, err := readStreamInt(r)
		if err != nil {
			return nil, fmt.Errorf("cryptogram %d: %w", i, err)
		}
		c2, err := readStreamInt(r)
		if err != nil {
			return nil, fmt.Errorf("cryptogram %d: %w", i, err)
		}
		out = append(out, elgamal.Cryptogram{C1: c1, C2: c2})
	}
	return out, nil
}

func appendCryptogram(dst []byte, c *elgamal.Cryptogram) []byte {
	dst = utils.AppendBigInt(dst, c.C1)
	return utils.AppendBigInt(dst, c.C2)
}

func readCryptogram(data []byte, offset int) (*elgamal.Cryptogram, int, error) {
	c1, offset, err := utils.ReadBigInt(data, offset)
	if err != nil {
		return nil, offset, err
	}
	c2, offset, err := utils.ReadBigInt(data, offset)
	if err != nil {
		return nil, offset, err
	}
	return &elgamal.Cryptogram{C1: c1, C2: c2}, offset, nil
}

func readLength(r io.Reader, maxAllowed int) (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, utils.ErrTruncated
		}
		return 0, err
	}
	n := binary.LittleEndian.Uint32(buf[:])
	if n > uint32(maxAllowed) {
		return 0, utils.ErrExceedsLimit
	}
	return int(n), nil
}

func readStreamInt(r io.Reader) (*big.Int, error) {
	n, err := readLength(r, utils.MaxIntBytes)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, utils.ErrTruncated
		}
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, utils.ErrTruncated
	}
	return new(big.Int).SetBytes(buf), nil
}
