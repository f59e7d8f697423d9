package ndn

import (
	"crypto/sha256"
	"strings"

	"github.com/ndnph-go/ndnph/std/tlv"
)

// TypeName is the TLV-TYPE of a Name.
const TypeName tlv.VarNum = 0x07

// Name is an ordered sequence of Components. The zero value is the empty
// name (ndn:/).
type Name []Component

// ParseName parses a Name from a string using the simplified "/"-segment,
// "type=value" URI syntax understood by Component.String's inverse. Percent
// escapes are decoded; a bare segment is treated as a GenericNameComponent.
func ParseName(s string) (Name, error) {
	s = strings.TrimPrefix(s, "ndn:")
	s = strings.Trim(s, "/")
	if s == "" {
		return Name{}, nil
	}
	segs := strings.Split(s, "/")
	name := make(Name, 0, len(segs))
	for _, seg := range segs {
		c, err := parseComponentURI(seg)
		if err != nil {
			return nil, err
		}
		name = append(name, c)
	}
	return name, nil
}

func parseComponentURI(seg string) (Component, error) {
	typ := TypeGenericNameComponent
	val := seg
	if i := strings.IndexByte(seg, '='); i >= 0 {
		if n, err := parseUintStrict(seg[:i]); err == nil {
			typ = tlv.VarNum(n)
			val = seg[i+1:]
		}
	}
	raw, err := unescapeURI(val)
	if err != nil {
		return Component{}, err
	}
	return Component{Type: typ, Value: raw}, nil
}

func parseUintStrict(s string) (uint64, error) {
	var n uint64
	if s == "" {
		return 0, ErrInvalidValue{Item: "component type", Value: s}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidValue{Item: "component type", Value: s}
		}
		n = n*10 + uint64(r-'0')
	}
	return n, nil
}

func unescapeURI(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			if i+2 >= len(s) {
				return nil, ErrInvalidValue{Item: "percent escape", Value: s}
			}
			hi, ok1 := hexVal(s[i+1])
			lo, ok2 := hexVal(s[i+2])
			if !ok1 || !ok2 {
				return nil, ErrInvalidValue{Item: "percent escape", Value: s}
			}
			out = append(out, byte(hi<<4|lo))
			i += 2
			continue
		}
		out = append(out, s[i])
	}
	return out, nil
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

// String renders the Name in URI syntax.
func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, c := range n {
		sb.WriteByte('/')
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Append returns a new Name with extra components appended.
func (n Name) Append(extra ...Component) Name {
	out := make(Name, 0, len(n)+len(extra))
	out = append(out, n...)
	out = append(out, extra...)
	return out
}

// Prefix returns the first k components of n. It panics if k is out of
// range, matching slice semantics.
func (n Name) Prefix(k int) Name {
	return n[:k]
}

// Clone returns a deep copy of n, including independent Value slices.
func (n Name) Clone() Name {
	out := make(Name, len(n))
	for i, c := range n {
		v := make([]byte, len(c.Value))
		copy(v, c.Value)
		out[i] = Component{Type: c.Type, Value: v}
	}
	return out
}

// Equal reports whether n and o have the same components in the same
// order.
func (n Name) Equal(o Name) bool {
	if len(n) != len(o) {
		return false
	}
	for i := range n {
		if !n[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Compare implements canonical name ordering: shorter prefixes sort
// before their extensions, otherwise components are compared pairwise.
func (n Name) Compare(o Name) int {
	for i := 0; i < len(n) && i < len(o); i++ {
		if c := n[i].Compare(o[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n) < len(o):
		return -1
	case len(n) > len(o):
		return 1
	default:
		return 0
	}
}

// IsPrefixOf reports whether n is a prefix of o (including n == o).
func (n Name) IsPrefixOf(o Name) bool {
	if len(n) > len(o) {
		return false
	}
	for i := range n {
		if !n[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Size returns the total encoded size of the Name TLV, including its own
// type+length header.
func (n Name) Size() int {
	inner := 0
	for _, c := range n {
		inner += c.Size()
	}
	return int(TypeName.Size()) + tlv.VarNum(inner).Size() + inner
}

// EncodeTo implements tlv.Appendable.
func (n Name) EncodeTo(e *tlv.Encoder) {
	e.PrependTLV(TypeName, false, func(e *tlv.Encoder) {
		for i := len(n) - 1; i >= 0; i-- {
			n[i].EncodeTo(e)
		}
	})
}

// ParseNameElement decodes a Name from a TLV Element of type TypeName.
func ParseNameElement(el tlv.Element) (Name, error) {
	if el.Type != TypeName {
		return nil, ErrWrongType
	}
	dec := tlv.NewDecoder(el.Value)
	var n Name
	for {
		sub, ok := dec.Next()
		if !ok {
			break
		}
		n = append(n, ParseComponent(sub))
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}
	return n, nil
}

// lastIsParamsDigest reports whether the final component of n is a
// ParametersSha256DigestComponent.
func (n Name) lastIsParamsDigest() bool {
	return len(n) > 0 && n[len(n)-1].Type == TypeParametersSha256DigestComponent
}

// hasParamsDigest returns the index of the first
// ParametersSha256DigestComponent in n, or -1 if there is none.
func (n Name) hasParamsDigest() int {
	for i, c := range n {
		if c.Type == TypeParametersSha256DigestComponent {
			return i
		}
	}
	return -1
}

// withParamsDigestPlaceholder returns a copy of n with a zero-filled
// ParametersSha256DigestComponent appended, used while the real digest
// over AppParameters has not yet been computed.
func (n Name) withParamsDigestPlaceholder() Name {
	return n.Append(Component{Type: TypeParametersSha256DigestComponent, Value: make([]byte, sha256.Size)})
}
