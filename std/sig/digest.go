package sig

import (
	"bytes"
	"crypto/sha256"

	"github.com/ndnph-go/ndnph/std/ndn"
)

type digestSigner struct{}

// NewDigestSigner returns a Signer that produces an unkeyed SHA-256
// digest over the signed portion, for integrity-only (not authenticated)
// packets.
func NewDigestSigner() Signer { return digestSigner{} }

func (digestSigner) Type() Type            { return TypeDigestSha256 }
func (digestSigner) KeyName() ndn.Name     { return nil }
func (digestSigner) KeyLocator() ndn.Name  { return nil }
func (digestSigner) EstimateSize() int     { return sha256.Size }

func (digestSigner) Sign(covered [][]byte) ([]byte, error) {
	h := sha256.New()
	for _, b := range covered {
		h.Write(b)
	}
	return h.Sum(nil), nil
}

type digestVerifier struct{}

// NewDigestVerifier returns a Verifier matching NewDigestSigner.
func NewDigestVerifier() Verifier { return digestVerifier{} }

func (digestVerifier) Type() Type { return TypeDigestSha256 }

func (digestVerifier) Verify(covered [][]byte, sigValue []byte) error {
	h := sha256.New()
	for _, b := range covered {
		h.Write(b)
	}
	if !bytes.Equal(h.Sum(nil), sigValue) {
		return ndn.ErrSignatureInvalid
	}
	return nil
}
