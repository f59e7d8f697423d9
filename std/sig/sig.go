// Package sig implements the Signer/Verifier abstraction used to produce
// and check NDN SignatureInfo/SignatureValue pairs: SHA-256 digest,
// HMAC-SHA-256, and ECDSA over P-256.
package sig

import "github.com/ndnph-go/ndnph/std/ndn"

// Type is the NDN SignatureType assigned number. It is a plain alias for
// uint64, not a distinct type, so that concrete Signer/Verifier values
// from this package satisfy the ndn.Signer/ndn.Verifier interfaces
// (which cannot themselves import this package, since this package
// depends on ndn for Name) without any adapter shim.
type Type = uint64

const (
	TypeDigestSha256   Type = 0
	TypeSha256WithRsa  Type = 1
	TypeSha256WithEcdsa Type = 3
	TypeHmacWithSha256 Type = 4
	TypeNull           Type = 200
)

// Signer produces a signature over the bytes that make up a packet's
// signed portion. Covered is passed as a slice of byte ranges rather than
// one concatenated buffer, mirroring how the Interest/Data encoders stage
// their SignatureValue computation without an extra copy.
type Signer interface {
	Type() Type
	KeyName() ndn.Name
	KeyLocator() ndn.Name
	EstimateSize() int
	Sign(covered [][]byte) ([]byte, error)
}

// Verifier checks a signature produced by the matching Signer family.
type Verifier interface {
	Type() Type
	Verify(covered [][]byte, sigValue []byte) error
}

// concat flattens covered into one buffer for algorithms (HMAC, ECDSA)
// that need a single io.Writer-style hash but are handed discontiguous
// signed ranges.
func concat(covered [][]byte) []byte {
	n := 0
	for _, b := range covered {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range covered {
		out = append(out, b...)
	}
	return out
}
