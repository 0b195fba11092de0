package sign

import (
	"errors"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/utils"
)

// SerializeSignature encodes (y, s) as length-prefixed integers.
func SerializeSignature(sig *elgamal.Signature) []byte {
	result := utils.AppendBigInt(nil, sig.Y)
	return utils.AppendBigInt(result, sig.S)
}

// DeserializeSignature decodes a signature. Ranges are checked by Verify.
func DeserializeSignature(data []byte) (*elgamal.Signature, error) {
	y, offset, err := utils.ReadBigInt(data, 0)
	if err != nil {
		return nil, err
	}
	s, offset, err := utils.ReadBigInt(data, offset)
	if err != nil {
		return nil, err
	}
	if offset != len(data) {
		return nil, errors.New("trailing bytes after signature")
	}
	return &elgamal.Signature{Y: y, S: s}, nil
}
