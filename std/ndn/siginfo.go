package ndn

import (
	"time"

	"github.com/ndnph-go/ndnph/std/tlv"
)

const iso8601Basic = "20060102T150405"

// SigInfo is the SignatureInfo carried by a Data's DSigInfo or a signed
// Interest's ISigInfo: the signature algorithm plus an optional key
// locator. The locator is either a Name or a raw KeyDigest, never both.
type SigInfo struct {
	Type       uint64
	KeyLocator Name
	KeyDigest  []byte

	// HasValidity, NotBefore, and NotAfter encode a ValidityPeriod nested
	// inside SignatureInfo, as used by NDN certificates (Data packets
	// whose content is a public key). NotBefore/NotAfter are Unix
	// seconds, encoded on the wire as 15-octet ISO 8601 basic-format
	// timestamps. Plain signed Data leaves HasValidity false.
	HasValidity bool
	NotBefore   uint64
	NotAfter    uint64
}

func (s SigInfo) encodeTo(e *tlv.Encoder, outer tlv.VarNum) {
	// Items are listed in wire order: SignatureType, KeyLocator,
	// ValidityPeriod.
	e.PrependTLV(outer, false,
		func(e *tlv.Encoder) { e.PrependTLV(TypeSigType, false, tlv.NNI(s.Type)) },
		func(e *tlv.Encoder) {
			if s.KeyLocator == nil && s.KeyDigest == nil {
				return
			}
			e.PrependTLV(TypeKeyLocator, false,
				func(e *tlv.Encoder) {
					if s.KeyDigest != nil {
						e.PrependTLV(TypeKeyDigest, false, s.KeyDigest)
						return
					}
					s.KeyLocator.EncodeTo(e)
				},
			)
		},
		func(e *tlv.Encoder) {
			if !s.HasValidity {
				return
			}
			e.PrependTLV(TypeValidityPeriod, false,
				func(e *tlv.Encoder) {
					e.PrependTLV(TypeNotBefore, false, []byte(formatISO8601(s.NotBefore)))
				},
				func(e *tlv.Encoder) {
					e.PrependTLV(TypeNotAfter, false, []byte(formatISO8601(s.NotAfter)))
				},
			)
		},
	)
}

func formatISO8601(unixSeconds uint64) string {
	return time.Unix(int64(unixSeconds), 0).UTC().Format(iso8601Basic)
}

func parseISO8601(s string) (uint64, error) {
	t, err := time.Parse(iso8601Basic, s)
	if err != nil {
		return 0, err
	}
	return uint64(t.Unix()), nil
}

// EncodeDSigInfoTo appends a Data SignatureInfo (type DSigInfo).
func (s SigInfo) EncodeDSigInfoTo(e *tlv.Encoder) { s.encodeTo(e, TypeDSigInfo) }

// EncodeISigInfoTo appends an Interest SignatureInfo (type ISigInfo).
func (s SigInfo) EncodeISigInfoTo(e *tlv.Encoder) { s.encodeTo(e, TypeISigInfo) }

func parseSigInfo(el tlv.Element) (SigInfo, error) {
	var s SigInfo
	ev := tlv.NewEvDecoder().
		Rule(TypeSigType, false, 1, func(e tlv.Element) error {
			v, err := tlv.ParseNNI(e.Value)
			s.Type = uint64(v)
			return err
		}).
		Rule(TypeKeyLocator, false, 2, func(e tlv.Element) error {
			inner := tlv.NewDecoder(e.Value)
			sub, ok := inner.Next()
			if !ok {
				return inner.Err()
			}
			if sub.Type == TypeKeyDigest {
				s.KeyDigest = sub.Value
				return nil
			}
			n, err := ParseNameElement(sub)
			if err != nil {
				return err
			}
			s.KeyLocator = n
			return nil
		}).
		Rule(TypeValidityPeriod, false, 3, func(e tlv.Element) error {
			s.HasValidity = true
			inner := tlv.NewEvDecoder(TypeValidityPeriod)
			return inner.
				Rule(TypeNotBefore, false, 1, func(e tlv.Element) error {
					v, err := parseISO8601(string(e.Value))
					s.NotBefore = v
					return err
				}).
				Rule(TypeNotAfter, false, 2, func(e tlv.Element) error {
					v, err := parseISO8601(string(e.Value))
					s.NotAfter = v
					return err
				}).DecodeValue(e.Value)
		})
	if err := ev.DecodeValue(el.Value); err != nil {
		return SigInfo{}, err
	}
	return s, nil
}

// ParseDSigInfo decodes a Data SignatureInfo element.
func ParseDSigInfo(el tlv.Element) (SigInfo, error) {
	if el.Type != TypeDSigInfo {
		return SigInfo{}, ErrWrongType
	}
	return parseSigInfo(el)
}

// ParseISigInfo decodes an Interest SignatureInfo element.
func ParseISigInfo(el tlv.Element) (SigInfo, error) {
	if el.Type != TypeISigInfo {
		return SigInfo{}, ErrWrongType
	}
	return parseSigInfo(el)
}
