// Package elgamal implements the ElGamal public-key cryptosystem over the
// multiplicative group of a constructed prime field.
// This package holds the shared data model; the operations live in sub-packages
// so callers can import only what they use.
package elgamal

// Version of the ElGamal Go implementation.
const Version = "1.0.0"

// API summary:
//
// Number theory:
//   - numtheory.IsProbablyPrime(r, n, rounds) - Miller-Rabin primality test
//   - numtheory.FindPrimes(limit) - Sieve of Eratosthenes
//   - numtheory.ConstructPrime(ctx, r, params) - Prime p with known factorization of p-1
//   - numtheory.FindGenerator(ctx, r, p, f, maxAttempts) - Primitive root modulo p
//   - numtheory.ModInverse(a, m) - Inverse via the extended Euclidean algorithm
//
// Keys:
//   - keys.GenerateKeys(ctx, r, params) - Generate a key pair for a parameter set
//   - keys.GenerateKeysWithPrime(ctx, r, p, f) - Generate a key pair for a fixed modulus
//   - keys.SerializePublicKey / keys.DeserializePublicKey, keys.Fingerprint
//
// Encryption:
//   - cipher.Encrypt(r, pk, m) - Encrypt one message unit m < p
//   - cipher.Decrypt(sk, c) - Decrypt a cryptogram
//   - cipher.EncryptString / cipher.DecryptString - Per-symbol string encryption
//   - cipher.EncryptBytes / cipher.DecryptBytes - Padded byte messages (OpenPGP format)
//   - cipher.WriteCryptograms / cipher.ReadCryptograms - Cryptogram streams
//
// Signatures:
//   - sign.Sign(r, sk, message) - Sign a message
//   - sign.Verify(pk, message, sig) - Verify a signature
//   - sign.NewSigner(hash) - Signer with a different 256-bit hash
//
// Storage:
//   - store.Open(ctx, path) - SQLite store for key pairs and cryptogram sequences
//
// Parameters:
//   - core.GetParams(level) - Get parameters for a security level
//   - EG_TOY, EG_512, EG_1024, EG_2048
