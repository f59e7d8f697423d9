package sig

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/ndnph-go/ndnph/std/ndn"
)

type hmacSigner struct{ key []byte }

// NewHmacSigner returns a Signer that computes HMAC-SHA-256 over the
// signed portion using a pre-shared key, as used by NDNCERT's symmetric
// Interest/Data exchanges.
func NewHmacSigner(key []byte) Signer { return hmacSigner{key: key} }

func (hmacSigner) Type() Type           { return TypeHmacWithSha256 }
func (hmacSigner) KeyName() ndn.Name    { return nil }
func (hmacSigner) KeyLocator() ndn.Name { return nil }
func (hmacSigner) EstimateSize() int    { return sha256.Size }

func (s hmacSigner) Sign(covered [][]byte) ([]byte, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(concat(covered))
	return mac.Sum(nil), nil
}

type hmacVerifier struct{ key []byte }

// NewHmacVerifier returns a Verifier matching NewHmacSigner.
func NewHmacVerifier(key []byte) Verifier { return hmacVerifier{key: key} }

func (hmacVerifier) Type() Type { return TypeHmacWithSha256 }

func (v hmacVerifier) Verify(covered [][]byte, sigValue []byte) error {
	mac := hmac.New(sha256.New, v.key)
	mac.Write(concat(covered))
	if !hmac.Equal(mac.Sum(nil), sigValue) {
		return ndn.ErrSignatureInvalid
	}
	return nil
}
