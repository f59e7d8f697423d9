package keychain

import (
	"crypto/ecdsa"
	"time"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/sig"
)

// Identity composes a BadgerTpm (private keys) with a SqlitePib
// (certificates) into the single object an application holds to sign
// outgoing packets and fetch its own certificate, mirroring how the
// teacher's SqlitePib.GetSignerForCert reaches into its paired Tpm.
type Identity struct {
	Tpm *BadgerTpm
	Pib *SqlitePib
}

// OpenIdentity opens (or creates) the badger and sqlite stores at the
// given paths.
func OpenIdentity(tpmDir, pibPath string) (*Identity, error) {
	tpm, err := OpenBadgerTpm(tpmDir)
	if err != nil {
		return nil, err
	}
	pib, err := OpenSqlitePib(pibPath)
	if err != nil {
		tpm.Close()
		return nil, err
	}
	return &Identity{Tpm: tpm, Pib: pib}, nil
}

// Close releases both underlying stores.
func (id *Identity) Close() error {
	err1 := id.Tpm.Close()
	err2 := id.Pib.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// GenerateKey creates a fresh P-256 key pair, stores its private scalar
// under keyName, and returns the key for immediate use (e.g. to
// self-sign a first certificate).
func (id *Identity) GenerateKey(keyName ndn.Name) (*ecdsa.PrivateKey, error) {
	key, err := sig.GenerateEcdsaKey()
	if err != nil {
		return nil, err
	}
	if err := id.Tpm.Set(keyName.String(), EncodeKeyEntry(key, keyName)); err != nil {
		return nil, err
	}
	return key, nil
}

// Signer returns a Signer for the private key stored under keyName,
// using certName as the SignatureInfo KeyLocator.
func (id *Identity) Signer(keyName, certName ndn.Name) (ndn.Signer, error) {
	return id.Tpm.GetSigner(keyName, certName)
}

// SelfSign builds and stores a self-signed certificate for keyName's
// already-generated key, valid for the given duration starting now.
func (id *Identity) SelfSign(keyName ndn.Name, certName ndn.Name, validFor time.Duration) (*ndn.Data, error) {
	value, ok := id.Tpm.Get(keyName.String())
	if !ok {
		return nil, ndn.ErrInvalidValue{Item: "key name", Value: keyName.String()}
	}
	key, _, err := DecodeKeyEntry(value)
	if err != nil {
		return nil, err
	}
	signer := sig.NewEcdsaSigner(key, certName)
	now := uint64(time.Now().Unix())
	cert, err := BuildCertificate(certName, &key.PublicKey, now, now+uint64(validFor/time.Second), signer)
	if err != nil {
		return nil, err
	}
	if err := id.Pib.PutCertificate(cert); err != nil {
		return nil, err
	}
	return cert, nil
}
