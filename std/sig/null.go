package sig

import "github.com/ndnph-go/ndnph/std/ndn"

type nullSigner struct{}

// NewNullSigner returns a Signer that emits an empty SignatureValue under
// the NDNph-specific "no signature" SignatureType, for packets that carry
// a SignatureInfo placeholder but are not cryptographically protected
// (e.g. the conventional "unsigned" default used by some test fixtures).
func NewNullSigner() Signer { return nullSigner{} }

func (nullSigner) Type() Type           { return TypeNull }
func (nullSigner) KeyName() ndn.Name    { return nil }
func (nullSigner) KeyLocator() ndn.Name { return nil }
func (nullSigner) EstimateSize() int    { return 0 }
func (nullSigner) Sign([][]byte) ([]byte, error) { return nil, nil }

type nullVerifier struct{}

// NewNullVerifier accepts any packet signed with NewNullSigner.
func NewNullVerifier() Verifier { return nullVerifier{} }

func (nullVerifier) Type() Type                        { return TypeNull }
func (nullVerifier) Verify([][]byte, []byte) error { return nil }
