package ndn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ndnph-go/ndnph/std/tlv"
)

// Name component TLV-TYPE assignments, from the NDN packet format spec.
const (
	TypeInvalidComponent                tlv.VarNum = 0x00
	TypeImplicitSha256DigestComponent   tlv.VarNum = 0x01
	TypeParametersSha256DigestComponent tlv.VarNum = 0x02
	TypeGenericNameComponent            tlv.VarNum = 0x08
	TypeKeywordNameComponent            tlv.VarNum = 0x20
	TypeSegmentNameComponent            tlv.VarNum = 0x32
	TypeByteOffsetNameComponent         tlv.VarNum = 0x34
	TypeVersionNameComponent            tlv.VarNum = 0x36
	TypeTimestampNameComponent          tlv.VarNum = 0x38
	TypeSequenceNumNameComponent        tlv.VarNum = 0x3a
)

// Component is one TLV-encoded name component. Its Value aliases whatever
// buffer it was decoded from; callers that need an independent copy must
// clone it themselves.
type Component struct {
	Type  tlv.VarNum
	Value []byte
}

// Generic constructs a GenericNameComponent from raw bytes.
func Generic(v []byte) Component { return Component{Type: TypeGenericNameComponent, Value: v} }

// Keyword constructs a KeywordNameComponent from a UTF-8 string, per the
// "32=" naming convention used by NDNCERT and segmented-object fetching.
func Keyword(s string) Component {
	return Component{Type: TypeKeywordNameComponent, Value: []byte(s)}
}

// Segment constructs a segment-number marked component (type 0x32).
func Segment(n uint64) Component { return nniComponent(TypeSegmentNameComponent, n) }

// Version constructs a version-number marked component (type 0x36).
func Version(n uint64) Component { return nniComponent(TypeVersionNameComponent, n) }

// Timestamp constructs a timestamp marked component (type 0x38).
func Timestamp(n uint64) Component { return nniComponent(TypeTimestampNameComponent, n) }

// SequenceNum constructs a sequence-number marked component (type 0x3a).
func SequenceNum(n uint64) Component { return nniComponent(TypeSequenceNumNameComponent, n) }

func nniComponent(t tlv.VarNum, n uint64) Component {
	v := tlv.NNI(n)
	buf := make([]byte, v.Size())
	v.EncodeInto(buf)
	return Component{Type: t, Value: buf}
}

// NNI parses the component's Value as a marked NonNegativeInteger. It
// fails if the component is not one of the numeric-marker types or its
// Value is not a valid NNI encoding.
func (c Component) NNI() (uint64, error) {
	switch c.Type {
	case TypeSegmentNameComponent, TypeByteOffsetNameComponent,
		TypeVersionNameComponent, TypeTimestampNameComponent, TypeSequenceNumNameComponent:
		v, err := tlv.ParseNNI(c.Value)
		return uint64(v), err
	default:
		return 0, ErrInvalidValue{Item: "component.Type", Value: c.Type}
	}
}

// IsDigest reports whether c is an ImplicitSha256Digest or
// ParametersSha256Digest component.
func (c Component) IsDigest() bool {
	return c.Type == TypeImplicitSha256DigestComponent || c.Type == TypeParametersSha256DigestComponent
}

// Equal reports whether two components have the same type and value.
func (c Component) Equal(o Component) bool {
	return c.Type == o.Type && string(c.Value) == string(o.Value)
}

// Compare implements NDN's canonical ordering over components: by TLV
// type, then by value length, then lexicographically by value.
func (c Component) Compare(o Component) int {
	if c.Type != o.Type {
		if c.Type < o.Type {
			return -1
		}
		return 1
	}
	if len(c.Value) != len(o.Value) {
		if len(c.Value) < len(o.Value) {
			return -1
		}
		return 1
	}
	return strings.Compare(string(c.Value), string(o.Value))
}

// Size returns the total encoded size of the component (type+length+value).
func (c Component) Size() int {
	return tlv.VarNum(c.Type).Size() + tlv.VarNum(len(c.Value)).Size() + len(c.Value)
}

// EncodeTo implements tlv.Appendable.
func (c Component) EncodeTo(e *tlv.Encoder) {
	e.PrependTLV(c.Type, false, c.Value)
}

// ParseComponent decodes a single component from a TLV Element.
func ParseComponent(el tlv.Element) Component {
	return Component{Type: el.Type, Value: el.Value}
}

// String renders the component using the ndn: URI component syntax:
// "type=value" for non-generic components and the bare value for generic
// components. For either kind, a value containing a byte outside
// 0x20-0x7e is written as lowercase hex; otherwise it is written as text,
// with bytes outside the URI unreserved set percent-escaped.
func (c Component) String() string {
	var sb strings.Builder
	if c.Type != TypeGenericNameComponent {
		sb.WriteString(strconv.FormatUint(uint64(c.Type), 10))
		sb.WriteByte('=')
	}
	if isPrintableURI(c.Value) {
		for _, b := range c.Value {
			if needsEscape(b) {
				fmt.Fprintf(&sb, "%%%02X", b)
			} else {
				sb.WriteByte(b)
			}
		}
	} else {
		for _, b := range c.Value {
			fmt.Fprintf(&sb, "%02x", b)
		}
	}
	return sb.String()
}

func isPrintableURI(v []byte) bool {
	for _, b := range v {
		if b < 0x20 || b >= 0x7f {
			return false
		}
	}
	return true
}

func needsEscape(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return false
	case b == '-' || b == '.' || b == '_' || b == '~':
		return false
	default:
		return true
	}
}
