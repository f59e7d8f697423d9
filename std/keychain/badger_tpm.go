package keychain

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/ndnph-go/ndnph/std/log"
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/sig"
)

// BadgerTpm is the private-key half of a KeyChain: an on-disk badger KV
// store keyed by key name, replacing the teacher's filesystem-per-key
// FileTpm with a single embedded database.
type BadgerTpm struct {
	db *badger.DB
}

// OpenBadgerTpm opens (creating if absent) a badger database at dir.
func OpenBadgerTpm(dir string) (*BadgerTpm, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerTpm{db: db}, nil
}

func (t *BadgerTpm) String() string { return "badger-tpm" }

// Close releases the underlying database.
func (t *BadgerTpm) Close() error { return t.db.Close() }

// Get implements KeyChain.
func (t *BadgerTpm) Get(name string) ([]byte, bool) {
	var out []byte
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			out = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, false
	}
	return out, true
}

// Set implements KeyChain.
func (t *BadgerTpm) Set(name string, value []byte) error {
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(name), value)
	})
}

// Del implements KeyChain.
func (t *BadgerTpm) Del(name string) error {
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(name))
	})
}

// GetSigner loads the private key stored under keyName and returns a
// Signer for it with keyLocatorName as its KeyLocator (normally the
// matching certificate's name, not the bare key name).
func (t *BadgerTpm) GetSigner(keyName ndn.Name, keyLocatorName ndn.Name) (ndn.Signer, error) {
	value, ok := t.Get(keyName.String())
	if !ok {
		return nil, ndn.ErrInvalidValue{Item: "key name", Value: keyName.String()}
	}
	key, _, err := DecodeKeyEntry(value)
	if err != nil {
		log.Error(t, "corrupt key entry", "name", keyName.String(), "err", err)
		return nil, err
	}
	return sig.NewEcdsaSigner(key, keyLocatorName), nil
}
