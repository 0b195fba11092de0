package store

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/cipher"
	"github.com/BackendStack21/elgamal-go/core"
	"github.com/BackendStack21/elgamal-go/keys"
	"github.com/BackendStack21/elgamal-go/utils"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "keys.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func toyKey(t *testing.T, seed string) *elgamal.PrivateKey {
	t.Helper()
	sk, _, err := keys.GenerateKeys(context.Background(), utils.NewShakeReader([]byte(seed)), core.EGToyParams)
	require.NoError(t, err)
	return sk
}

func TestKeyPairRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	sk := toyKey(t, "store-roundtrip")

	id, err := s.PutKeyPair(ctx, "alice", sk)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	got, err := s.PrivateKey(ctx, id)
	require.NoError(t, err)
	assert.True(t, sk.Equal(got))

	pk, err := s.PublicKey(ctx, id)
	require.NoError(t, err)
	assert.True(t, pk.Equal(&sk.PublicKey))

	rec, err := s.FindKey(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.True(t, rec.HasPrivate)
	assert.Equal(t, sk.P.BitLen(), rec.Bits)
	assert.Equal(t, hex.EncodeToString(keys.Fingerprint(&sk.PublicKey)), rec.Fingerprint)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestPublicKeyOnly(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	sk := toyKey(t, "store-public")

	id, err := s.PutPublicKey(ctx, "bob", sk.Public())
	require.NoError(t, err)

	_, err = s.PrivateKey(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	rec, err := s.FindKey(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, rec.HasPrivate)
}

func TestDuplicateName(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	sk := toyKey(t, "store-dup")

	_, err := s.PutKeyPair(ctx, "carol", sk)
	require.NoError(t, err)
	_, err = s.PutPublicKey(ctx, "carol", sk.Public())
	assert.Error(t, err)
}

func TestInvalidKeyRejected(t *testing.T) {
	s := openStore(t)
	sk := toyKey(t, "store-invalid")
	sk.K = nil

	_, err := s.PutKeyPair(context.Background(), "broken", sk)
	assert.ErrorIs(t, err, elgamal.ErrDomain)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.PublicKey(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindKey(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = s.Cryptograms(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteKey(ctx, uuid.New()), ErrNotFound)
}

func TestListKeys(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	empty, err := s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.PutKeyPair(ctx, "k1", toyKey(t, "list-1"))
	require.NoError(t, err)
	_, err = s.PutPublicKey(ctx, "k2", toyKey(t, "list-2").Public())
	require.NoError(t, err)

	recs, err := s.ListKeys(ctx)
	require.NoError(t, err)
	names := make([]string, len(recs))
	for i, rec := range recs {
		names[i] = rec.Name
	}
	assert.ElementsMatch(t, []string{"k1", "k2"}, names)
}

func TestCryptograms(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	sk := toyKey(t, "store-cryptograms")

	keyID, err := s.PutKeyPair(ctx, "dave", sk)
	require.NoError(t, err)

	cs, err := cipher.EncryptString(nil, &sk.PublicKey, "Top secret message.")
	require.NoError(t, err)
	seqID, err := s.PutCryptograms(ctx, keyID, cs)
	require.NoError(t, err)

	gotKey, got, err := s.Cryptograms(ctx, seqID)
	require.NoError(t, err)
	assert.Equal(t, keyID, gotKey)

	loaded, err := s.PrivateKey(ctx, gotKey)
	require.NoError(t, err)
	msg, err := cipher.DecryptString(loaded, got)
	require.NoError(t, err)
	assert.Equal(t, "Top secret message.", msg)
}

func TestCryptograms_UnknownKey(t *testing.T) {
	s := openStore(t)
	cs := []elgamal.Cryptogram{}
	_, err := s.PutCryptograms(context.Background(), uuid.New(), cs)
	assert.Error(t, err)
}

func TestDeleteKeyCascades(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	sk := toyKey(t, "store-delete")

	keyID, err := s.PutKeyPair(ctx, "erin", sk)
	require.NoError(t, err)
	cs, err := cipher.EncryptString(nil, &sk.PublicKey, "bye")
	require.NoError(t, err)
	seqID, err := s.PutCryptograms(ctx, keyID, cs)
	require.NoError(t, err)

	require.NoError(t, s.DeleteKey(ctx, keyID))

	_, err = s.PublicKey(ctx, keyID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.Cryptograms(ctx, seqID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")
	sk := toyKey(t, "store-reopen")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	id, err := s.PutKeyPair(ctx, "frank", sk)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.PrivateKey(ctx, id)
	require.NoError(t, err)
	assert.True(t, sk.Equal(got))
}
