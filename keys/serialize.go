package keys

import (
	"errors"
	"math/big"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// SerializePublicKey encodes (g, b, p) as length-prefixed integers.
func SerializePublicKey(pk *elgamal.PublicKey) []byte {
	result := make([]byte, 0, 12+len(pk.P.Bytes())*3)
	result = utils.AppendBigInt(result, pk.G)
	result = utils.AppendBigInt(result, pk.B)
	result = utils.AppendBigInt(result, pk.P)
	return result
}

// DeserializePublicKey decodes and validates a public key.
func DeserializePublicKey(data []byte) (*elgamal.PublicKey, error) {
	ints, err := readInts(data, 3)
	if err != nil {
		return nil, err
	}
	pk := &elgamal.PublicKey{G: ints[0], B: ints[1], P: ints[2]}
	if err := ValidatePublicKey(pk); err != nil {
		return nil, err
	}
	return pk, nil
}

// SerializePrivateKey encodes (g, b, p, k) as length-prefixed integers.
func SerializePrivateKey(sk *elgamal.PrivateKey) []byte {
	result := SerializePublicKey(&sk.PublicKey)
	return utils.AppendBigInt(result, sk.K)
}

// DeserializePrivateKey decodes and validates a private key.
func DeserializePrivateKey(data []byte) (*elgamal.PrivateKey, error) {
	ints, err := readInts(data, 4)
	if err != nil {
		return nil, err
	}
	sk := &elgamal.PrivateKey{
		PublicKey: elgamal.PublicKey{G: ints[0], B: ints[1], P: ints[2]},
		K:         ints[3],
	}
	if err := ValidatePrivateKey(sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func readInts(data []byte, count int) ([]*big.Int, error) {
	out := make([]*big.Int, count)
	offset := 0
	for i := range out {
		v, next, err := utils.ReadBigInt(data, offset)
		if err != nil {
			return nil, err
		}
		out[i] = v
		offset = next
	}
	if offset != len(data) {
		return nil, errors.New("trailing bytes after key")
	}
	return out, nil
}
