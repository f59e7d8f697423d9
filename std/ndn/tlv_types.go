package ndn

import "github.com/ndnph-go/ndnph/std/tlv"

// Packet format TLV-TYPE assigned numbers, from the NDN packet format
// spec. Name-component types live in component.go.
const (
	TypeInterest         tlv.VarNum = 0x05
	TypeCanBePrefix      tlv.VarNum = 0x21
	TypeMustBeFresh      tlv.VarNum = 0x12
	TypeForwardingHint   tlv.VarNum = 0x1e
	TypeNonce            tlv.VarNum = 0x0a
	TypeInterestLifetime tlv.VarNum = 0x0c
	TypeHopLimit         tlv.VarNum = 0x22
	TypeAppParameters    tlv.VarNum = 0x24
	TypeISigInfo         tlv.VarNum = 0x2c
	TypeISigValue        tlv.VarNum = 0x2e

	TypeData            tlv.VarNum = 0x06
	TypeMetaInfo        tlv.VarNum = 0x14
	TypeContentType     tlv.VarNum = 0x18
	TypeFreshnessPeriod tlv.VarNum = 0x19
	TypeFinalBlock      tlv.VarNum = 0x1a
	TypeContent         tlv.VarNum = 0x15
	TypeDSigInfo        tlv.VarNum = 0x16
	TypeDSigValue       tlv.VarNum = 0x17

	TypeSigType    tlv.VarNum = 0x1b
	TypeKeyLocator tlv.VarNum = 0x1c
	TypeKeyDigest  tlv.VarNum = 0x1d

	TypeValidityPeriod tlv.VarNum = 0xfd
	TypeNotBefore      tlv.VarNum = 0xfe
	TypeNotAfter       tlv.VarNum = 0xff

	TypeLpPacket    tlv.VarNum = 0x64
	TypeLpPayload   tlv.VarNum = 0x50
	TypeLpSeqNum    tlv.VarNum = 0x51
	TypeFragIndex   tlv.VarNum = 0x52
	TypeFragCount   tlv.VarNum = 0x53
	TypePitToken    tlv.VarNum = 0x62
	TypeNack        tlv.VarNum = 0x320
	TypeNackReason  tlv.VarNum = 0x321
	TypeCongestion  tlv.VarNum = 0x340
)

// ContentType assigned numbers.
const (
	ContentTypeBlob     = 0x00
	ContentTypeLink     = 0x01
	ContentTypeKey      = 0x02
	ContentTypeNack     = 0x03
	ContentTypePrefixAnn = 0x05
)

// NackReason assigned numbers.
const (
	NackReasonNone        = 0
	NackReasonCongestion  = 50
	NackReasonDuplicate   = 100
	NackReasonNoRoute     = 150
)

const (
	// DefaultInterestLifetime is used when Interest.Lifetime is zero.
	DefaultInterestLifetime = 4000
	// MaxHopLimit is the HopLimit value meaning "field omitted".
	MaxHopLimit = 0xff
)
