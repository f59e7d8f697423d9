// Package keychain stores the private keys and certificates an NDN
// identity needs: a KeyChain is a pair of named-blob stores (keys,
// certificates), backed by badger for the private-key TPM and sqlite for
// the certificate PIB, mirroring the teacher's sqlite-pib.go split
// between a Tpm and a Pib.
package keychain

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"math/big"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/sig"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// KeyChain is a named-blob store: Get/Set/Del on byte values identified
// by a string name. BadgerTpm and SqlitePib accept any string and do not
// check the name's characters; this package keys entries by the Name's
// URI form (e.g. "/example/alice/KEY/1"). Certificate entries store
// the Data packet encoding; key entries store a 32-byte private scalar
// followed by the encoded key-name TLV.
type KeyChain interface {
	Get(name string) ([]byte, bool)
	Set(name string, value []byte) error
	Del(name string) error
}

// EncodeKeyEntry lays out a KeyChain key-store value: the P-256 private
// scalar (32 bytes, big-endian) followed by the TLV encoding of the
// key's Name.
func EncodeKeyEntry(key *ecdsa.PrivateKey, keyName ndn.Name) []byte {
	scalar := key.D.FillBytes(make([]byte, 32))
	r := region.New(keyName.Size() + 8)
	e := tlv.NewEncoder(r)
	keyName.EncodeTo(e)
	nameWire := e.Bytes()
	out := make([]byte, 0, len(scalar)+len(nameWire))
	out = append(out, scalar...)
	out = append(out, nameWire...)
	return out
}

// DecodeKeyEntry parses a value produced by EncodeKeyEntry back into a
// private key and its name.
func DecodeKeyEntry(value []byte) (*ecdsa.PrivateKey, ndn.Name, error) {
	if len(value) <= 32 {
		return nil, nil, ndn.ErrInvalidValue{Item: "key entry", Value: len(value)}
	}
	scalar := value[:32]
	d := tlv.NewDecoder(value[32:])
	el, ok := d.Next()
	if !ok {
		return nil, nil, d.Err()
	}
	name, err := ndn.ParseNameElement(el)
	if err != nil {
		return nil, nil, err
	}

	key := new(ecdsa.PrivateKey)
	key.Curve = elliptic.P256()
	key.D = new(big.Int).SetBytes(scalar)
	key.PublicKey.X, key.PublicKey.Y = key.Curve.ScalarBaseMult(scalar)
	return key, name, nil
}

// BuildCertificate signs a new certificate Data: name carries the
// subject's key name plus issuer/version suffix components, Content is
// the DER-encoded SubjectPublicKeyInfo of pub, and SignatureInfo carries
// a ValidityPeriod [notBefore, notAfter] (Unix seconds).
func BuildCertificate(name ndn.Name, pub *ecdsa.PublicKey, notBefore, notAfter uint64, signer ndn.Signer) (*ndn.Data, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	d := ndn.NewData(name, der)
	d.SigInfo = &ndn.SigInfo{HasValidity: true, NotBefore: notBefore, NotAfter: notAfter}
	if _, err := d.Sign(signer); err != nil {
		return nil, err
	}
	return d, nil
}

// VerifierFromCertificate extracts the ECDSA verifier embedded in a
// certificate Data's Content.
func VerifierFromCertificate(cert *ndn.Data) (sig.Verifier, error) {
	return sig.ParseEcdsaPublicKey(cert.Content)
}
