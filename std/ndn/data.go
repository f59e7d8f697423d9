package ndn

import (
	"crypto/sha256"

	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// Data is an NDN Data packet.
type Data struct {
	Name Name

	ContentType      uint64
	FreshnessPeriod  uint64 // milliseconds; 0 means absent
	FinalBlock       *Component
	Content          []byte
	ValidityNotBefore uint64 // unix seconds; not read by Sign or set by ParseData (see SigInfo.NotBefore)
	ValidityNotAfter  uint64 // unix seconds; not read by Sign or set by ParseData (see SigInfo.NotAfter)

	SigInfo  *SigInfo
	SigValue []byte

	wire []byte // the bytes this Data was parsed from, or last produced by Sign
}

// NewData constructs an unsigned Data with the given name and content.
func NewData(name Name, content []byte) *Data {
	return &Data{Name: name, Content: content}
}

func (d *Data) encodeMetaInfo(e *tlv.Encoder) {
	// Items are listed in the order they must appear on the wire:
	// PrependTLV's variadic form preserves declaration order regardless
	// of its own back-to-front prepending.
	e.PrependTLV(TypeMetaInfo, true,
		func(e *tlv.Encoder) {
			if d.ContentType != 0 {
				e.PrependTLV(TypeContentType, false, tlv.NNI(d.ContentType))
			}
		},
		func(e *tlv.Encoder) {
			if d.FreshnessPeriod != 0 {
				e.PrependTLV(TypeFreshnessPeriod, false, tlv.NNI(d.FreshnessPeriod))
			}
		},
		func(e *tlv.Encoder) {
			if d.FinalBlock != nil {
				e.PrependTLV(TypeFinalBlock, false, func(e *tlv.Encoder) { d.FinalBlock.EncodeTo(e) })
			}
		},
	)
}

// Sign computes SignatureInfo+SignatureValue over
// {Name, MetaInfo, Content, DSigInfo} and produces the full wire
// encoding. The ValidityPeriod, if set, is carried inside SigInfo's
// certificate-only fields by the caller composing a certificate (see
// keychain.BuildCertificate); plain Data never encodes ValidityPeriod.
func (d *Data) Sign(signer Signer) ([]byte, error) {
	info := SigInfo{Type: signer.Type(), KeyLocator: signer.KeyLocator()}
	if d.SigInfo != nil {
		info.HasValidity = d.SigInfo.HasValidity
		info.NotBefore = d.SigInfo.NotBefore
		info.NotAfter = d.SigInfo.NotAfter
	}
	d.SigInfo = &info

	nameBytes, err := encodeNameValue(d.Name)
	if err != nil {
		return nil, err
	}

	rMeta := region.New(64)
	eMeta := tlv.NewEncoder(rMeta)
	d.encodeMetaInfo(eMeta)
	if eMeta.Failed() {
		return nil, ErrFailedToEncode
	}
	metaBytes := eMeta.Bytes()

	rContent := region.New(len(d.Content) + 16)
	eContent := tlv.NewEncoder(rContent)
	eContent.PrependTLV(TypeContent, len(d.Content) == 0, d.Content)
	if eContent.Failed() {
		return nil, ErrFailedToEncode
	}
	contentBytes := eContent.Bytes()

	rInfo := region.New(d.SigInfo.encodedSize() + 16)
	eInfo := tlv.NewEncoder(rInfo)
	d.SigInfo.EncodeDSigInfoTo(eInfo)
	if eInfo.Failed() {
		return nil, ErrFailedToEncode
	}
	infoBytes := eInfo.Bytes()

	sigValue, err := signer.Sign([][]byte{nameBytes, metaBytes, contentBytes, infoBytes})
	if err != nil {
		return nil, err
	}
	d.SigValue = sigValue

	r := region.New(d.Name.Size() + len(metaBytes) + len(contentBytes) + len(infoBytes) + len(sigValue) + 32)
	e := tlv.NewEncoder(r)
	e.PrependTLV(TypeData, false,
		func(e *tlv.Encoder) { d.Name.EncodeTo(e) },
		func(e *tlv.Encoder) { e.PrependBytes(metaBytes) },
		func(e *tlv.Encoder) { e.PrependBytes(contentBytes) },
		func(e *tlv.Encoder) { d.SigInfo.EncodeDSigInfoTo(e) },
		func(e *tlv.Encoder) { e.PrependTLV(TypeDSigValue, false, sigValue) },
	)
	if e.Failed() {
		return nil, ErrFailedToEncode
	}
	d.wire = e.Bytes()
	return d.wire, nil
}

// Wire returns the bytes this Data was parsed from or last signed into.
func (d *Data) Wire() []byte { return d.wire }

// ComputeImplicitDigest returns the SHA-256 digest of the Data's full
// wire encoding, used to build its FullName.
func (d *Data) ComputeImplicitDigest() [sha256.Size]byte {
	return sha256.Sum256(d.wire)
}

// FullName returns the Data's Name with an
// ImplicitSha256DigestComponent appended, computed over the wire
// encoding captured at parse or sign time.
func (d *Data) FullName() Name {
	digest := d.ComputeImplicitDigest()
	return d.Name.Append(Component{Type: TypeImplicitSha256DigestComponent, Value: digest[:]})
}

// ParseData decodes a Data packet from a TLV Element of type TypeData.
// The element's Wire bytes are retained for Wire, ComputeImplicitDigest
// and FullName; Verify re-encodes the signed portion from the parsed
// fields instead.
func ParseData(el tlv.Element) (*Data, error) {
	if el.Type != TypeData {
		return nil, ErrWrongType
	}
	d := &Data{wire: el.Wire}
	var metaBytes, contentBytes, infoBytes []byte

	ev := tlv.NewEvDecoder(TypeData).
		Rule(TypeName, false, 1, func(e tlv.Element) error {
			n, err := ParseNameElement(e)
			d.Name = n
			return err
		}).
		Rule(TypeMetaInfo, false, 2, func(e tlv.Element) error {
			metaBytes = e.Wire
			inner := tlv.NewEvDecoder(TypeMetaInfo).
				Rule(TypeContentType, false, 1, func(e tlv.Element) error {
					v, err := tlv.ParseNNI(e.Value)
					d.ContentType = uint64(v)
					return err
				}).
				Rule(TypeFreshnessPeriod, false, 2, func(e tlv.Element) error {
					v, err := tlv.ParseNNI(e.Value)
					d.FreshnessPeriod = uint64(v)
					return err
				}).
				Rule(TypeFinalBlock, false, 3, func(e tlv.Element) error {
					sub := tlv.NewDecoder(e.Value)
					el2, ok := sub.Next()
					if !ok {
						return sub.Err()
					}
					c := ParseComponent(el2)
					d.FinalBlock = &c
					return nil
				})
			return inner.Decode(e)
		}).
		Rule(TypeContent, false, 3, func(e tlv.Element) error {
			contentBytes = e.Wire
			d.Content = e.Value
			return nil
		}).
		Rule(TypeDSigInfo, false, 4, func(e tlv.Element) error {
			infoBytes = e.Wire
			info, err := parseSigInfo(e)
			if err != nil {
				return err
			}
			d.SigInfo = &info
			return nil
		}).
		Rule(TypeDSigValue, false, 5, func(e tlv.Element) error {
			d.SigValue = e.Value
			return nil
		})

	if err := ev.Decode(el); err != nil {
		return nil, err
	}
	_, _, _ = metaBytes, contentBytes, infoBytes
	return d, nil
}

// Verify checks a Data's signature against verifier.
func (d *Data) Verify(verifier Verifier) error {
	if d.SigInfo == nil || d.SigValue == nil {
		return ErrNoSignature
	}
	nameBytes, err := encodeNameValue(d.Name)
	if err != nil {
		return err
	}

	rMeta := region.New(64)
	eMeta := tlv.NewEncoder(rMeta)
	d.encodeMetaInfo(eMeta)
	if eMeta.Failed() {
		return ErrFailedToEncode
	}

	rContent := region.New(len(d.Content) + 16)
	eContent := tlv.NewEncoder(rContent)
	eContent.PrependTLV(TypeContent, len(d.Content) == 0, d.Content)
	if eContent.Failed() {
		return ErrFailedToEncode
	}

	rInfo := region.New(d.SigInfo.encodedSize() + 16)
	eInfo := tlv.NewEncoder(rInfo)
	d.SigInfo.EncodeDSigInfoTo(eInfo)
	if eInfo.Failed() {
		return ErrFailedToEncode
	}

	return verifier.Verify([][]byte{nameBytes, eMeta.Bytes(), eContent.Bytes(), eInfo.Bytes()}, d.SigValue)
}
