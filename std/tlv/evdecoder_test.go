package tlv_test

import (
	"testing"

	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeSimpleTLVs(t *testing.T, pairs ...struct {
	typ tlv.VarNum
	val []byte
}) []byte {
	t.Helper()
	r := region.New(256)
	e := tlv.NewEncoder(r)
	for i := len(pairs) - 1; i >= 0; i-- {
		e.PrependTLV(pairs[i].typ, false, pairs[i].val)
	}
	require.False(t, e.Failed())
	return e.Bytes()
}

func TestEvDecoderDispatchesByType(t *testing.T) {
	buf := encodeSimpleTLVs(t,
		struct {
			typ tlv.VarNum
			val []byte
		}{20, []byte("a")},
		struct {
			typ tlv.VarNum
			val []byte
		}{22, []byte("b")},
	)

	var gotA, gotB string
	ev := tlv.NewEvDecoder().
		Rule(20, false, 1, func(el tlv.Element) error { gotA = string(el.Value); return nil }).
		Rule(22, false, 2, func(el tlv.Element) error { gotB = string(el.Value); return nil })

	require.NoError(t, ev.DecodeValue(buf))
	assert.Equal(t, "a", gotA)
	assert.Equal(t, "b", gotB)
}

func TestEvDecoderUnknownCriticalFails(t *testing.T) {
	buf := encodeSimpleTLVs(t, struct {
		typ tlv.VarNum
		val []byte
	}{21, []byte("x")}) // 21 <= 31: critical

	ev := tlv.NewEvDecoder()
	err := ev.DecodeValue(buf)
	assert.Error(t, err)
}

func TestEvDecoderUnknownNonCriticalIgnored(t *testing.T) {
	buf := encodeSimpleTLVs(t, struct {
		typ tlv.VarNum
		val []byte
	}{32, []byte("x")}) // 32: >31 and even, non-critical

	ev := tlv.NewEvDecoder()
	require.NoError(t, ev.DecodeValue(buf))
}

func TestEvDecoderUnknownCbConsumes(t *testing.T) {
	buf := encodeSimpleTLVs(t, struct {
		typ tlv.VarNum
		val []byte
	}{21, []byte("x")})

	var seen tlv.VarNum
	ev := tlv.NewEvDecoder().UnknownCb(func(el tlv.Element) error {
		seen = el.Type
		return nil
	})
	require.NoError(t, ev.DecodeValue(buf))
	assert.Equal(t, tlv.VarNum(21), seen)
}

func TestEvDecoderOutOfOrderTreatedAsUnknown(t *testing.T) {
	// rule for type 22 has order 1, rule for type 20 has order 2; input
	// presents 22 (order 1) after 20 (order 2) has already advanced the
	// cursor, so the second element no longer matches its own rule.
	buf := encodeSimpleTLVs(t,
		struct {
			typ tlv.VarNum
			val []byte
		}{20, []byte("a")},
		struct {
			typ tlv.VarNum
			val []byte
		}{22, []byte("b")},
	)

	var calledB bool
	ev := tlv.NewEvDecoder().
		Rule(20, false, 2, func(tlv.Element) error { return nil }).
		Rule(22, false, 1, func(tlv.Element) error { calledB = true; return nil })

	err := ev.DecodeValue(buf)
	assert.Error(t, err) // type 22 <= 31 => critical, falls through as unknown
	assert.False(t, calledB)
}

func TestEvDecoderDuplicateNonRepeatableFails(t *testing.T) {
	buf := encodeSimpleTLVs(t,
		struct {
			typ tlv.VarNum
			val []byte
		}{24, []byte("a")},
		struct {
			typ tlv.VarNum
			val []byte
		}{24, []byte("b")},
	)

	ev := tlv.NewEvDecoder().Rule(24, false, 1, func(tlv.Element) error { return nil })
	assert.Error(t, ev.DecodeValue(buf))
}

func TestEvDecoderRepeatableAllowsMultiple(t *testing.T) {
	buf := encodeSimpleTLVs(t,
		struct {
			typ tlv.VarNum
			val []byte
		}{24, []byte("a")},
		struct {
			typ tlv.VarNum
			val []byte
		}{24, []byte("b")},
	)

	var got []string
	ev := tlv.NewEvDecoder().Rule(24, true, 1, func(el tlv.Element) error {
		got = append(got, string(el.Value))
		return nil
	})
	require.NoError(t, ev.DecodeValue(buf))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestEvDecoderTopTypeMismatch(t *testing.T) {
	r := region.New(64)
	e := tlv.NewEncoder(r)
	e.PrependTLV(5, false, []byte("x"))
	el := tlv.Element{Type: 5, Value: e.Bytes()[2:], Wire: e.Bytes()}

	ev := tlv.NewEvDecoder(6, 7)
	assert.Error(t, ev.Decode(el))
}
