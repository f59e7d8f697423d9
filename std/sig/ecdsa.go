package sig

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"

	"github.com/ndnph-go/ndnph/std/ndn"
)

// ecdsaSigner signs with ECDSA over P-256, DER-encoded per RFC 5480 /
// SEC1, matching the SignatureSha256WithEcdsa type used for NDN
// certificates and signed Interests.
type ecdsaSigner struct {
	key        *ecdsa.PrivateKey
	keyName    ndn.Name
	keyLocator ndn.Name
}

// NewEcdsaSigner returns a Signer for an already-loaded P-256 private
// key, identified in SignatureInfo by keyName.
func NewEcdsaSigner(key *ecdsa.PrivateKey, keyName ndn.Name) Signer {
	return ecdsaSigner{key: key, keyName: keyName, keyLocator: keyName}
}

// GenerateEcdsaKey creates a fresh P-256 key pair for a new identity or
// NDNCERT ECDH exchange.
func GenerateEcdsaKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

func (s ecdsaSigner) Type() Type           { return TypeSha256WithEcdsa }
func (s ecdsaSigner) KeyName() ndn.Name    { return s.keyName }
func (s ecdsaSigner) KeyLocator() ndn.Name { return s.keyLocator }

// EstimateSize returns the maximum DER signature size for a P-256 key:
// two 32-byte integers plus ASN.1 overhead, rounded up.
func (s ecdsaSigner) EstimateSize() int { return 72 }

func (s ecdsaSigner) Sign(covered [][]byte) ([]byte, error) {
	h := sha256.Sum256(concat(covered))
	return ecdsa.SignASN1(rand.Reader, s.key, h[:])
}

// PublicKeyBytes returns the DER-encoded SubjectPublicKeyInfo of the
// signer's public key, for embedding in an NDN certificate's content.
func (s ecdsaSigner) PublicKeyBytes() ([]byte, error) {
	return x509.MarshalPKIXPublicKey(&s.key.PublicKey)
}

type ecdsaVerifier struct {
	pub  *ecdsa.PublicKey
	typ  Type
}

// NewEcdsaVerifier returns a Verifier for a P-256 public key, typically
// extracted from the signing certificate's Content.
func NewEcdsaVerifier(pub *ecdsa.PublicKey) Verifier {
	return ecdsaVerifier{pub: pub, typ: TypeSha256WithEcdsa}
}

// ParseEcdsaPublicKey decodes a DER SubjectPublicKeyInfo into a usable
// Verifier.
func ParseEcdsaPublicKey(der []byte) (Verifier, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, ndn.ErrInvalidValue{Item: "public key algorithm", Value: pub}
	}
	return NewEcdsaVerifier(ecPub), nil
}

func (v ecdsaVerifier) Type() Type { return v.typ }

func (v ecdsaVerifier) Verify(covered [][]byte, sigValue []byte) error {
	h := sha256.Sum256(concat(covered))
	if !ecdsa.VerifyASN1(v.pub, h[:], sigValue) {
		return ndn.ErrSignatureInvalid
	}
	return nil
}
