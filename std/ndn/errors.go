// Package ndn implements the NDN packet format: names, Interest, Data,
// Nack, and the signature/verification plumbing shared by all of them.
package ndn

import (
	"errors"
	"fmt"
)

// ErrInvalidValue reports a field that failed validation during encode or
// decode.
type ErrInvalidValue struct {
	Item  string
	Value any
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("ndn: invalid value for %s: %v", e.Item, e.Value)
}

// ErrNotSupported reports a field or combination of fields this
// implementation deliberately does not handle.
type ErrNotSupported struct {
	Item string
}

func (e ErrNotSupported) Error() string {
	return fmt.Sprintf("ndn: not supported: %s", e.Item)
}

var (
	// ErrFailedToEncode is returned when encoding fails despite valid
	// arguments, almost always because the destination Region ran out of
	// space.
	ErrFailedToEncode = errors.New("ndn: failed to encode packet")

	// ErrWrongType is returned when a decoded TLV's outermost type is not
	// the one a Parse function expects.
	ErrWrongType = errors.New("ndn: packet is not of expected type")

	// ErrParamsDigestNotLast is returned when a signed Interest's
	// ParametersSha256DigestComponent is not the final name component.
	ErrParamsDigestNotLast = errors.New("ndn: ParametersSha256DigestComponent must be the last name component")

	// ErrSignatureInvalid is returned by Verify when a signature fails to
	// validate against the signed portion of a packet.
	ErrSignatureInvalid = errors.New("ndn: signature is invalid")

	// ErrNoSignature is returned when a signing or verification operation
	// is attempted on a packet that carries no SignatureInfo.
	ErrNoSignature = errors.New("ndn: packet carries no signature")

	// ErrDigestMismatch is returned by CheckDigest when a parameterized or
	// signed Interest's ParametersSha256DigestComponent does not match the
	// SHA-256 digest recomputed from its AppParameters (and, if signed, its
	// SignatureInfo/SignatureValue).
	ErrDigestMismatch = errors.New("ndn: ParametersSha256DigestComponent does not match AppParameters")
)
