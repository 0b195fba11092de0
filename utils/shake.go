package utils

import (
	"golang.org/x/crypto/sha3"
)

// ShakeReader is a deterministic random source: the SHAKE256 stream of a seed.
// It is not safe for concurrent use; wrap it in a LockedReader for that.
type ShakeReader struct {
	h sha3.ShakeHash
}

// NewShakeReader returns a reader producing the SHAKE256 output stream of
// the domain-separated seed.
func NewShakeReader(seed []byte) *ShakeReader {
	h := sha3.NewShake256()
	h.Write([]byte{byte(len(DomainRandom))})
	h.Write([]byte(DomainRandom))
	h.Write(seed)
	return &ShakeReader{h: h}
}

func (s *ShakeReader) Read(p []byte) (int, error) {
	return s.h.Read(p)
}

// DomainRandom separates seeded random streams from every other SHAKE use.
const DomainRandom = "elgamal-rand-v1"

// HashWithDomain computes a domain-separated SHA3-256 hash.
// It prefixes the data with the length of the domain string and the domain string itself.
// Panics if domain is longer than 255 bytes.
func HashWithDomain(domain string, data []byte) []byte {
	domainBytes := []byte(domain)
	if len(domainBytes) > 255 {
		panic("domain string must be at most 255 bytes")
	}
	h := sha3.New256()
	h.Write([]byte{byte(len(domainBytes))})
	h.Write(domainBytes)
	h.Write(data)
	return h.Sum(nil)
}
