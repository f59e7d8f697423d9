package tlv

import "fmt"

// Rule describes how EvDecoder should handle one sub-TLV type: whether it
// may repeat, its declared position among the other rules (Order), and
// the callback invoked with each matching Element.
type Rule struct {
	Type       VarNum
	Repeatable bool
	Order      int
	Handle     func(Element) error
}

// EvDecoder is an evolvability-aware TLV dispatcher: given a set of
// per-type Rules, it walks a TLV's sub-elements in order and dispatches
// each to its matching rule. Unknown non-critical elements are ignored;
// unknown critical elements (type <= 31, or odd) fail decoding unless an
// UnknownCb is installed to consume them. A rule whose declared Order has
// already been passed is treated as if it did not match at all — this is
// what lets newer, reordered fields stay forward-compatible with older
// decoders and vice versa.
type EvDecoder struct {
	topTypes   []VarNum
	rules      map[VarNum]Rule
	unknownCb  func(Element) error
	isCritical func(VarNum) bool
}

// NewEvDecoder constructs an EvDecoder. If topTypes is non-empty, Decode
// rejects any input element whose Type is not among them.
func NewEvDecoder(topTypes ...VarNum) *EvDecoder {
	return &EvDecoder{
		topTypes: topTypes,
		rules:    make(map[VarNum]Rule),
	}
}

// Rule registers a handler for one sub-TLV type and returns the receiver
// for chaining.
func (d *EvDecoder) Rule(t VarNum, repeatable bool, order int, fn func(Element) error) *EvDecoder {
	d.rules[t] = Rule{Type: t, Repeatable: repeatable, Order: order, Handle: fn}
	return d
}

// UnknownCb installs a callback invoked for every element that does not
// match a registered (and positionally valid) rule, in place of the
// default criticality check. Returning an error fails the decode;
// returning nil consumes the element silently.
func (d *EvDecoder) UnknownCb(fn func(Element) error) *EvDecoder {
	d.unknownCb = fn
	return d
}

// CriticalityFunc overrides the default criticality predicate
// (type <= 31 or odd type).
func (d *EvDecoder) CriticalityFunc(fn func(VarNum) bool) *EvDecoder {
	d.isCritical = fn
	return d
}

func (d *EvDecoder) critical(t VarNum) bool {
	if d.isCritical != nil {
		return d.isCritical(t)
	}
	return t <= 31 || t%2 == 1
}

// Decode checks el's type (if topTypes was given) and decodes its VALUE
// as a sequence of sub-TLVs.
func (d *EvDecoder) Decode(el Element) error {
	if len(d.topTypes) > 0 {
		ok := false
		for _, t := range d.topTypes {
			if t == el.Type {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("tlv: unexpected top-level type %d", el.Type)
		}
	}
	return d.DecodeValue(el.Value)
}

// DecodeValue decodes value directly as a sequence of sub-TLVs, without
// checking an enclosing type.
func (d *EvDecoder) DecodeValue(value []byte) error {
	dec := NewDecoder(value)
	currentOrder := 0
	seen := make(map[VarNum]bool, len(d.rules))

	for {
		el, ok := dec.Next()
		if !ok {
			break
		}

		if rule, found := d.rules[el.Type]; found && rule.Order >= currentOrder {
			if !rule.Repeatable && seen[el.Type] {
				return fmt.Errorf("tlv: duplicate non-repeatable element %d", el.Type)
			}
			seen[el.Type] = true
			if err := rule.Handle(el); err != nil {
				return err
			}
			currentOrder = rule.Order
			continue
		}

		if d.unknownCb != nil {
			if err := d.unknownCb(el); err != nil {
				return err
			}
			continue
		}

		if d.critical(el.Type) {
			return fmt.Errorf("tlv: unrecognized critical element %d", el.Type)
		}
		// non-critical and unrecognized: ignore
	}

	return dec.Err()
}
