package ndn

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"

	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// Signer is implemented by any type that can produce a signature over a
// packet's signed portion. Concrete implementations live in package sig;
// this interface is declared here (rather than imported) so that Interest
// and Data can accept a signer without package ndn importing package sig.
type Signer interface {
	Type() uint64
	KeyLocator() Name
	EstimateSize() int
	Sign(covered [][]byte) ([]byte, error)
}

// Verifier is implemented by any type that can check a signature produced
// by the matching Signer.
type Verifier interface {
	Type() uint64
	Verify(covered [][]byte, sigValue []byte) error
}

// Interest is an NDN Interest packet.
type Interest struct {
	Name           Name
	CanBePrefix    bool
	MustBeFresh    bool
	ForwardingHint Name
	Nonce          uint32
	Lifetime       uint64 // milliseconds; 0 means DefaultInterestLifetime
	HopLimit       uint8  // MaxHopLimit means "field omitted"

	AppParameters []byte   // nil if the Interest carries no parameters
	SigInfo       *SigInfo // nil if the Interest is not signed
	SigValue      []byte   // populated by Sign, or by ParseInterest on a signed packet

	wire []byte // last encoding produced by Sign
}

// NewInterest constructs an Interest with a random Nonce and the default
// lifetime/hop-limit.
func NewInterest(name Name) *Interest {
	var nonceBuf [4]byte
	rand.Read(nonceBuf[:])
	return &Interest{
		Name:     name,
		Nonce:    binary.BigEndian.Uint32(nonceBuf[:]),
		Lifetime: DefaultInterestLifetime,
		HopLimit: MaxHopLimit,
	}
}

func (it *Interest) encodeMiddle(e *tlv.Encoder) {
	if it.HopLimit != MaxHopLimit {
		e.PrependTLV(TypeHopLimit, false, tlv.NNI(it.HopLimit))
	}
	if it.Lifetime != 0 && it.Lifetime != DefaultInterestLifetime {
		e.PrependTLV(TypeInterestLifetime, false, tlv.NNI(it.Lifetime))
	}
	e.PrependTLV(TypeNonce, false, tlv.NNI(it.Nonce))
	if it.ForwardingHint != nil {
		e.PrependTLV(TypeForwardingHint, false, func(e *tlv.Encoder) { it.ForwardingHint.EncodeTo(e) })
	}
	if it.MustBeFresh {
		e.PrependTLV(TypeMustBeFresh, false)
	}
	if it.CanBePrefix {
		e.PrependTLV(TypeCanBePrefix, false)
	}
}

// findParamsDigest returns the index of the name's
// ParametersSha256DigestComponent, or -1 if absent.
func findParamsDigest(n Name) int { return n.hasParamsDigest() }

// EncodeTo appends the plain (no AppParameters) encoding of the Interest.
// Use Parameterize or Sign to build a packet carrying AppParameters.
func (it *Interest) EncodeTo(e *tlv.Encoder) {
	e.PrependTLV(TypeInterest, false,
		func(e *tlv.Encoder) { it.Name.EncodeTo(e) },
		func(e *tlv.Encoder) { it.encodeMiddle(e) },
	)
}

// Encode renders the Interest into a freshly sized Region.
func (it *Interest) Encode() ([]byte, error) {
	r := region.New(it.Name.Size() + len(it.AppParameters) + len(it.SigValue) + 256)
	e := tlv.NewEncoder(r)
	it.EncodeTo(e)
	if e.Failed() {
		return nil, ErrFailedToEncode
	}
	return e.Bytes(), nil
}

// Parameterize attaches appParameters to the Interest. It does not touch
// the Name: EncodeParameterized or Sign rewrites (or appends) the Name's
// ParametersSha256DigestComponent to cover it. The caller must not have
// more than one such component already present.
func (it *Interest) Parameterize(appParameters []byte) {
	it.AppParameters = appParameters
}

func (it *Interest) nameWithDigest(digest [sha256.Size]byte) Name {
	pos := findParamsDigest(it.Name)
	comp := Component{Type: TypeParametersSha256DigestComponent, Value: digest[:]}
	if pos < 0 {
		return it.Name.Append(comp)
	}
	out := make(Name, 0, len(it.Name))
	out = append(out, it.Name[:pos]...)
	out = append(out, comp)
	out = append(out, it.Name[pos+1:]...)
	return out
}

// EncodeParameterized builds the full encoding of a parameterized (but
// unsigned) Interest: AppParameters are hashed and the digest placed into
// the Name's ParametersSha256DigestComponent.
func (it *Interest) EncodeParameterized() ([]byte, error) {
	digest := sha256.Sum256(it.AppParameters)
	name := it.nameWithDigest(digest)

	r := region.New(name.Size() + len(it.AppParameters) + 64)
	e := tlv.NewEncoder(r)
	e.PrependTLV(TypeInterest, false,
		func(e *tlv.Encoder) { name.EncodeTo(e) },
		func(e *tlv.Encoder) { it.encodeMiddle(e) },
		func(e *tlv.Encoder) { e.PrependTLV(TypeAppParameters, false, it.AppParameters) },
	)
	if e.Failed() {
		return nil, ErrFailedToEncode
	}
	it.Name = name
	return e.Bytes(), nil
}

// Sign builds the full encoding of a signed Interest: AppParameters,
// SignatureInfo, and SignatureValue are all appended and digested into
// the Name's ParametersSha256DigestComponent, per the constraint that the
// component must be the last one (or absent) in the input Name.
//
// This reproduces the reference implementation's simplified signed-
// Interest scheme: the covered buffers are the Name (without the trailing
// digest component) and the concatenation of AppParameters+ISigInfo. It
// omits the newer SigNonce/SigTime/SigSeqNum replay-protection fields
// from NDN packet format v0.3, which are outside this implementation's
// scope.
func (it *Interest) Sign(signer Signer) error {
	pos := findParamsDigest(it.Name)
	var signedName Name
	switch {
	case pos < 0:
		signedName = it.Name
	case pos == len(it.Name)-1:
		signedName = it.Name[:pos]
	default:
		return ErrParamsDigestNotLast
	}

	info := &SigInfo{Type: signer.Type(), KeyLocator: signer.KeyLocator()}

	rInfo := region.New(info.encodedSize() + 16)
	eInfo := tlv.NewEncoder(rInfo)
	info.EncodeISigInfoTo(eInfo)
	if eInfo.Failed() {
		return ErrFailedToEncode
	}
	infoBytes := eInfo.Bytes()

	rParams := region.New(len(it.AppParameters) + 16)
	eParams := tlv.NewEncoder(rParams)
	eParams.PrependTLV(TypeAppParameters, false, it.AppParameters)
	if eParams.Failed() {
		return ErrFailedToEncode
	}
	paramsBytes := eParams.Bytes()

	nameBytes, err := encodeNameValue(signedName)
	if err != nil {
		return err
	}

	sigValue, err := signer.Sign([][]byte{nameBytes, paramsBytes, infoBytes})
	if err != nil {
		return err
	}

	it.SigInfo = info
	it.SigValue = sigValue

	digest, err := it.computeParamsDigest()
	if err != nil {
		return err
	}
	it.Name = it.nameWithDigest(digest)

	r := region.New(it.Name.Size() + len(paramsBytes) + len(infoBytes) + len(sigValue) + 64)
	e := tlv.NewEncoder(r)
	e.PrependTLV(TypeInterest, false,
		func(e *tlv.Encoder) { it.Name.EncodeTo(e) },
		func(e *tlv.Encoder) { it.encodeMiddle(e) },
		func(e *tlv.Encoder) { e.PrependTLV(TypeAppParameters, false, it.AppParameters) },
		func(e *tlv.Encoder) { info.EncodeISigInfoTo(e) },
		func(e *tlv.Encoder) { e.PrependTLV(TypeISigValue, false, sigValue) },
	)
	if e.Failed() {
		return ErrFailedToEncode
	}
	it.wire = e.Bytes()
	return nil
}

// Wire returns the last encoding produced by Sign, or nil if the Interest
// has not been signed.
func (it *Interest) Wire() []byte { return it.wire }

// computeParamsDigest recomputes the digest that belongs in the Name's
// ParametersSha256DigestComponent, the same way EncodeParameterized and
// Sign do: over AppParameters alone when the Interest carries no
// signature, or over AppParameters+ISigInfo+ISigValue when it does.
func (it *Interest) computeParamsDigest() ([sha256.Size]byte, error) {
	if it.SigInfo == nil || it.SigValue == nil {
		return sha256.Sum256(it.AppParameters), nil
	}

	rParams := region.New(len(it.AppParameters) + 16)
	eParams := tlv.NewEncoder(rParams)
	eParams.PrependTLV(TypeAppParameters, false, it.AppParameters)
	if eParams.Failed() {
		return [sha256.Size]byte{}, ErrFailedToEncode
	}

	rInfo := region.New(it.SigInfo.encodedSize() + 16)
	eInfo := tlv.NewEncoder(rInfo)
	it.SigInfo.EncodeISigInfoTo(eInfo)
	if eInfo.Failed() {
		return [sha256.Size]byte{}, ErrFailedToEncode
	}

	digestInput := make([]byte, 0, len(eParams.Bytes())+len(eInfo.Bytes())+len(it.SigValue)+8)
	digestInput = append(digestInput, eParams.Bytes()...)
	digestInput = append(digestInput, eInfo.Bytes()...)
	sv := region.New(len(it.SigValue) + 8)
	svEnc := tlv.NewEncoder(sv)
	svEnc.PrependTLV(TypeISigValue, false, it.SigValue)
	if svEnc.Failed() {
		return [sha256.Size]byte{}, ErrFailedToEncode
	}
	digestInput = append(digestInput, svEnc.Bytes()...)

	return sha256.Sum256(digestInput), nil
}

// CheckDigest recomputes this Interest's ParametersSha256DigestComponent
// the way Sign/EncodeParameterized do and compares it in constant time
// against the Name's actual digest component, per spec.md §4.5's
// decode-side digest verification requirement. It returns nil for an
// Interest whose Name carries no ParametersSha256DigestComponent at all.
func (it *Interest) CheckDigest() error {
	pos := findParamsDigest(it.Name)
	if pos < 0 {
		return nil
	}
	digest, err := it.computeParamsDigest()
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(it.Name[pos].Value, digest[:]) != 1 {
		return ErrDigestMismatch
	}
	return nil
}

func (s *SigInfo) encodedSize() int {
	size := tlv.VarNum(TypeSigType).Size() + tlv.VarNum(tlv.NNI(s.Type).Size()).Size() + tlv.NNI(s.Type).Size()
	if s.KeyLocator != nil || s.KeyDigest != nil {
		size += 32
	}
	if s.HasValidity {
		size += 48
	}
	return size + 8
}

// encodeNameValue encodes n's components only (no enclosing Name TLV),
// matching what a signed Interest's "signed name" covers.
func encodeNameValue(n Name) ([]byte, error) {
	r := region.New(n.Size() + 8)
	e := tlv.NewEncoder(r)
	for i := len(n) - 1; i >= 0; i-- {
		n[i].EncodeTo(e)
	}
	if e.Failed() {
		return nil, ErrFailedToEncode
	}
	return e.Bytes(), nil
}

// ParseInterest decodes an Interest from a TLV Element of type
// TypeInterest.
func ParseInterest(el tlv.Element) (*Interest, error) {
	if el.Type != TypeInterest {
		return nil, ErrWrongType
	}
	it := &Interest{HopLimit: MaxHopLimit, Lifetime: DefaultInterestLifetime}
	var haveAppParams bool
	var sigInfoEl, sigValueEl *tlv.Element

	ev := tlv.NewEvDecoder(TypeInterest).
		Rule(TypeName, false, 1, func(e tlv.Element) error {
			n, err := ParseNameElement(e)
			it.Name = n
			return err
		}).
		Rule(TypeCanBePrefix, false, 2, func(tlv.Element) error { it.CanBePrefix = true; return nil }).
		Rule(TypeMustBeFresh, false, 3, func(tlv.Element) error { it.MustBeFresh = true; return nil }).
		Rule(TypeForwardingHint, false, 4, func(e tlv.Element) error {
			inner := tlv.NewDecoder(e.Value)
			sub, ok := inner.Next()
			if !ok {
				return inner.Err()
			}
			n, err := ParseNameElement(sub)
			it.ForwardingHint = n
			return err
		}).
		Rule(TypeNonce, false, 5, func(e tlv.Element) error {
			v, err := tlv.ParseNNI(e.Value)
			it.Nonce = uint32(v)
			return err
		}).
		Rule(TypeInterestLifetime, false, 6, func(e tlv.Element) error {
			v, err := tlv.ParseNNI(e.Value)
			it.Lifetime = uint64(v)
			return err
		}).
		Rule(TypeHopLimit, false, 7, func(e tlv.Element) error {
			v, err := tlv.ParseNNI(e.Value)
			it.HopLimit = uint8(v)
			return err
		}).
		Rule(TypeAppParameters, false, 8, func(e tlv.Element) error {
			haveAppParams = true
			it.AppParameters = e.Value
			return nil
		}).
		Rule(TypeISigInfo, false, 9, func(e tlv.Element) error {
			cp := e
			sigInfoEl = &cp
			return nil
		}).
		Rule(TypeISigValue, false, 10, func(e tlv.Element) error {
			cp := e
			sigValueEl = &cp
			return nil
		})

	if err := ev.Decode(el); err != nil {
		return nil, err
	}

	if haveAppParams && sigInfoEl != nil && sigValueEl != nil {
		info, err := parseSigInfo(*sigInfoEl)
		if err != nil {
			return nil, err
		}
		it.SigInfo = &info
		it.SigValue = sigValueEl.Value
	}
	return it, nil
}

// Verify checks a signed Interest's SignatureValue using verifier. It
// fails with ErrNoSignature if the Interest is not signed.
func (it *Interest) Verify(verifier Verifier) error {
	if it.SigInfo == nil || it.SigValue == nil {
		return ErrNoSignature
	}
	pos := findParamsDigest(it.Name)
	if pos != len(it.Name)-1 {
		return ErrParamsDigestNotLast
	}
	signedName, err := encodeNameValue(it.Name[:pos])
	if err != nil {
		return err
	}

	rParams := region.New(len(it.AppParameters) + 16)
	eParams := tlv.NewEncoder(rParams)
	eParams.PrependTLV(TypeAppParameters, false, it.AppParameters)
	if eParams.Failed() {
		return ErrFailedToEncode
	}

	rInfo := region.New(it.SigInfo.encodedSize() + 16)
	eInfo := tlv.NewEncoder(rInfo)
	it.SigInfo.EncodeISigInfoTo(eInfo)
	if eInfo.Failed() {
		return ErrFailedToEncode
	}

	return verifier.Verify([][]byte{signedName, eParams.Bytes(), eInfo.Bytes()}, it.SigValue)
}
