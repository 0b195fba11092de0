// Package store persists key pairs and cryptogram sequences in SQLite.
//
// Private keys are stored unencrypted. The database file must be protected
// by the file system.
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/go-i2p/logger"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/oops"

	elgamal "github.com/BackendStack21/elgamal-go"
	"github.com/BackendStack21/elgamal-go/cipher"
	"github.com/BackendStack21/elgamal-go/keys"
)

var log = logger.GetGoI2PLogger()

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("store: record not found")

const schema = `
CREATE TABLE IF NOT EXISTS keys (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	fingerprint TEXT NOT NULL,
	bits INTEGER NOT NULL,
	public_key BLOB NOT NULL,
	private_key BLOB,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS cryptograms (
	id TEXT PRIMARY KEY,
	key_id TEXT NOT NULL,
	units INTEGER NOT NULL,
	data BLOB NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(key_id) REFERENCES keys(id) ON DELETE CASCADE
);`

// KeyRecord describes a stored key without its key material.
type KeyRecord struct {
	ID          uuid.UUID
	Name        string
	Fingerprint string // hex SHA3-256 of the serialized public key
	Bits        int
	HasPrivate  bool
	CreatedAt   time.Time
}

// Store is a SQLite-backed key and cryptogram store. It is safe for
// concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, oops.In("store").With("path", path).Wrap(err)
	}
	// one writer at a time; SQLite serializes them anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, oops.In("store").With("path", path).Wrapf(err, "apply schema")
	}
	log.WithField("path", path).Debug("opened key store")
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutKeyPair stores a private key under a unique name.
func (s *Store) PutKeyPair(ctx context.Context, name string, sk *elgamal.PrivateKey) (uuid.UUID, error) {
	if err := keys.ValidatePrivateKey(sk); err != nil {
		return uuid.Nil, err
	}
	return s.putKey(ctx, name, &sk.PublicKey, keys.SerializePrivateKey(sk))
}

// PutPublicKey stores a public key under a unique name.
func (s *Store) PutPublicKey(ctx context.Context, name string, pk *elgamal.PublicKey) (uuid.UUID, error) {
	if err := keys.ValidatePublicKey(pk); err != nil {
		return uuid.Nil, err
	}
	return s.putKey(ctx, name, pk, nil)
}

func (s *Store) putKey(ctx context.Context, name string, pk *elgamal.PublicKey, private []byte) (uuid.UUID, error) {
	id := uuid.New()
	fp := hex.EncodeToString(keys.Fingerprint(pk))
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO keys (id, name, fingerprint, bits, public_key, private_key, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id.String(), name, fp, pk.P.BitLen(), keys.SerializePublicKey(pk), private, time.Now().UTC())
	if err != nil {
		return uuid.Nil, oops.In("store").With("name", name).Wrapf(err, "insert key")
	}
	log.WithField("id", id).
		WithField("name", name).
		WithField("private", private != nil).
		Debug("stored key")
	return id, nil
}

// PrivateKey loads the private key with the given id.
func (s *Store) PrivateKey(ctx context.Context, id uuid.UUID) (*elgamal.PrivateKey, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT private_key FROM keys WHERE id = ?", id.String()).Scan(&data)
	if err != nil {
		return nil, notFound(err, id)
	}
	if data == nil {
		return nil, oops.In("store").With("id", id).Wrapf(ErrNotFound, "key has no private half")
	}
	return keys.DeserializePrivateKey(data)
}

// PublicKey loads the public key with the given id.
func (s *Store) PublicKey(ctx context.Context, id uuid.UUID) (*elgamal.PublicKey, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT public_key FROM keys WHERE id = ?", id.String()).Scan(&data)
	if err != nil {
		return nil, notFound(err, id)
	}
	return keys.DeserializePublicKey(data)
}

// FindKey looks a key up by name.
func (s *Store) FindKey(ctx context.Context, name string) (KeyRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, fingerprint, bits, private_key IS NOT NULL, created_at FROM keys WHERE name = ?", name)
	rec, err := scanKey(row)
	if err != nil {
		return KeyRecord{}, notFound(err, name)
	}
	return rec, nil
}

// ListKeys returns all key records, oldest first.
func (s *Store) ListKeys(ctx context.Context) ([]KeyRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, fingerprint, bits, private_key IS NOT NULL, created_at FROM keys ORDER BY created_at, name")
	if err != nil {
		return nil, oops.In("store").Wrap(err)
	}
	defer rows.Close()

	var out []KeyRecord
	for rows.Next() {
		rec, err := scanKey(rows)
		if err != nil {
			return nil, oops.In("store").Wrap(err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteKey removes a key and every cryptogram sequence stored for it.
func (s *Store) DeleteKey(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM keys WHERE id = ?", id.String())
	if err != nil {
		return oops.In("store").With("id", id).Wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return oops.In("store").With("id", id).Wrap(ErrNotFound)
	}
	log.WithField("id", id).Debug("deleted key")
	return nil
}

// PutCryptograms stores a cryptogram sequence encrypted under keyID.
func (s *Store) PutCryptograms(ctx context.Context, keyID uuid.UUID, cs []elgamal.Cryptogram) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO cryptograms (id, key_id, units, data, created_at) VALUES (?, ?, ?, ?, ?)",
		id.String(), keyID.String(), len(cs), cipher.SerializeCryptograms(cs), time.Now().UTC())
	if err != nil {
		return uuid.Nil, oops.In("store").With("key_id", keyID).Wrapf(err, "insert cryptograms")
	}
	log.WithField("id", id).
		WithField("key_id", keyID).
		WithField("units", len(cs)).
		Debug("stored cryptogram sequence")
	return id, nil
}

// Cryptograms loads a stored sequence and the id of the key it was
// encrypted under.
func (s *Store) Cryptograms(ctx context.Context, id uuid.UUID) (uuid.UUID, []elgamal.Cryptogram, error) {
	var (
		keyID string
		data  []byte
	)
	err := s.db.QueryRowContext(ctx, "SELECT key_id, data FROM cryptograms WHERE id = ?", id.String()).Scan(&keyID, &data)
	if err != nil {
		return uuid.Nil, nil, notFound(err, id)
	}
	kid, err := uuid.Parse(keyID)
	if err != nil {
		return uuid.Nil, nil, oops.In("store").With("id", id).Wrap(err)
	}
	cs, err := cipher.DeserializeCryptograms(data)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return kid, cs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKey(row scanner) (KeyRecord, error) {
	var (
		rec KeyRecord
		id  string
	)
	if err := row.Scan(&id, &rec.Name, &rec.Fingerprint, &rec.Bits, &rec.HasPrivate, &rec.CreatedAt); err != nil {
		return KeyRecord{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return KeyRecord{}, err
	}
	rec.ID = parsed
	return rec, nil
}

func notFound(err error, key any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return oops.In("store").With("key", key).Wrap(ErrNotFound)
	}
	return oops.In("store").With("key", key).Wrap(err)
}
