// Package ndncert implements the NDNCERT v0.3 certificate issuance
// protocol: the CA profile advertisement, the NEW/CHALLENGE Interest
// exchange, and the ECDH+HKDF+AES-GCM encrypted session that carries
// challenge parameters. Subpackages client and server hold the two
// sides' state machines; this package holds what both share.
package ndncert

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// TLV-TYPE assigned numbers for the NDNCERT packet elements.
const (
	TypeCaPrefix          tlv.VarNum = 0x81
	TypeCaInfo            tlv.VarNum = 0x83
	TypeParameterKey      tlv.VarNum = 0x85
	TypeParameterValue    tlv.VarNum = 0x87
	TypeCaCertificate     tlv.VarNum = 0x89
	TypeMaxValidityPeriod tlv.VarNum = 0x8B
	TypeProbeResponse     tlv.VarNum = 0x8D
	TypeMaxSuffixLength   tlv.VarNum = 0x8F
	TypeEcdhPub           tlv.VarNum = 0x91
	TypeCertRequest       tlv.VarNum = 0x93
	TypeSalt              tlv.VarNum = 0x95
	TypeRequestId         tlv.VarNum = 0x97
	TypeChallenge         tlv.VarNum = 0x99
	TypeStatus            tlv.VarNum = 0x9B
	TypeInitVector        tlv.VarNum = 0x9D
	TypeEncryptedPayload  tlv.VarNum = 0x9F
	TypeSelectedChallenge tlv.VarNum = 0xA1
	TypeChallengeStatus   tlv.VarNum = 0xA3
	TypeRemainingTries    tlv.VarNum = 0xA5
	TypeRemainingTime     tlv.VarNum = 0xA7
	TypeIssuedCertName    tlv.VarNum = 0xA9
	TypeErrorCode         tlv.VarNum = 0xAB
	TypeErrorInfo         tlv.VarNum = 0xAD
	TypeAuthenticationTag tlv.VarNum = 0xAF
	TypeCertToRevoke      tlv.VarNum = 0xB1
	TypeProbeRedirect     tlv.VarNum = 0xB3
)

// Status assigned numbers.
const (
	StatusBeforeChallenge = 0
	StatusChallenge       = 1
	StatusPending         = 2
	StatusSuccess         = 3
	StatusFailure         = 4
)

// ErrorCode assigned numbers.
const (
	ErrorBadInterestFormat = 1
	ErrorBadParameterFormat = 2
	ErrorBadSignature      = 3
	ErrorInvalidParameters = 4
	ErrorNameNotAllowed    = 5
	ErrorBadValidityPeriod = 6
	ErrorOutOfTries        = 7
	ErrorOutOfTime         = 8
	ErrorNoAvailableName   = 9
)

// Well-known challenge identifiers, carried as the raw TLV-VALUE of a
// Challenge/SelectedChallenge element (not as Name components).
var (
	ChallengeNop        = []byte("nop")
	ChallengePossession = []byte("possession")
)

// Well-known challenge parameter keys.
var (
	ParamKeyIssuedCert = []byte("issued-cert")
	ParamKeyNonce      = []byte("nonce")
	ParamKeyProof      = []byte("proof")
)

// RequestIDLen is the fixed length of a CA-assigned RequestId.
const RequestIDLen = 8

// SaltLen is the fixed length of the ECDH salt used in key derivation.
const SaltLen = 32

const authTagLen = 16
const ivLen = 12

// Name components used to build NDNCERT Interest/Data names.
func caComponent() ndn.Component        { return ndn.Generic([]byte("CA")) }
func infoComponent() ndn.Component      { return ndn.Generic([]byte("INFO")) }
func probeComponent() ndn.Component     { return ndn.Generic([]byte("PROBE")) }
func newComponent() ndn.Component       { return ndn.Generic([]byte("NEW")) }
func challengeComponent() ndn.Component { return ndn.Generic([]byte("CHALLENGE")) }

// CaComponent, InfoComponent, ProbeComponent, NewComponent, and
// ChallengeComponent expose the well-known name components for building
// or matching NDNCERT Interest/Data names outside this package.
func CaComponent() ndn.Component        { return caComponent() }
func InfoComponent() ndn.Component      { return infoComponent() }
func ProbeComponent() ndn.Component     { return probeComponent() }
func NewComponent() ndn.Component       { return newComponent() }
func ChallengeComponent() ndn.Component { return challengeComponent() }

// sessionRole distinguishes which side of an ECDH exchange this
// SessionKey instance belongs to. MakeSessionKey writes it into the top
// bit of the IV header (0 for the requester, 1 for the issuer); it is not
// otherwise used.
type sessionRole int

const (
	roleRequester sessionRole = 0
	roleIssuer    sessionRole = 1
)

// SessionKey is the symmetric key negotiated between an NDNCERT
// requester and the CA for one certificate-issuance session: an
// ECDH(P-256)+HKDF-SHA256-derived AES-128-GCM key, with a counter-based
// IV scheme that avoids needing a random IV per message.
type SessionKey struct {
	aead   cipher.AEAD
	ivHead [8]byte
	ivTail uint32

	haveSeenPeer    bool
	lastPeerCounter uint32
}

// MakeSessionKey derives a SessionKey from one side's ECDH private key,
// the peer's ECDH public key, the exchange's salt, and the session's
// RequestId (used as HKDF info, binding the key to this session).
func MakeSessionKey(pvt *ecdh.PrivateKey, peerPub *ecdh.PublicKey, salt, requestID []byte, role sessionRole) (*SessionKey, error) {
	shared, err := pvt.ECDH(peerPub)
	if err != nil {
		return nil, err
	}

	okm := make([]byte, 16)
	kdf := hkdf.New(sha256.New, shared, salt, requestID)
	if _, err := io.ReadFull(kdf, okm); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(okm)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	sk := &SessionKey{aead: aead}
	if _, err := rand.Read(sk.ivHead[:]); err != nil {
		return nil, err
	}
	sk.ivHead[0] &= 0x7F
	sk.ivHead[0] |= byte(role) << 7
	return sk, nil
}

// advanceIV reproduces the reference implementation's counter-advance
// arithmetic exactly: it steps the IV tail by ceil(size/8) "blocks" of 8
// octets, not AES's actual 16-octet block size. This is an inherited
// defect from the certificate's original mbedTLS-based implementation,
// reproduced here rather than corrected: correcting it would make this
// implementation's IV sequence diverge from any session whose peer
// follows the original arithmetic, and either side can legitimately be
// the peer.
func (k *SessionKey) advanceIV(size int) {
	nBlocks := size / 8
	if size%8 != 0 {
		nBlocks++
	}
	k.ivTail += uint32(nBlocks)
}

func (k *SessionKey) nextIV(size int) []byte {
	iv := make([]byte, ivLen)
	copy(iv, k.ivHead[:])
	binary.BigEndian.PutUint32(iv[8:], k.ivTail)
	k.advanceIV(size)
	return iv
}

// ParseEcdhPub decodes an uncompressed P-256 point, as carried in an
// EcdhPub TLV.
func ParseEcdhPub(value []byte) (*ecdh.PublicKey, error) {
	return ecdh.P256().NewPublicKey(value)
}

// EncryptTo seals plaintext, using requestID as additional authenticated
// data, and appends the result as an EncryptedPayload TLV (preceded by
// InitializationVector and AuthenticationTag TLVs) via e.
func (k *SessionKey) EncryptTo(e *tlv.Encoder, plaintext, requestID []byte) {
	iv := k.nextIV(len(plaintext))
	sealed := k.aead.Seal(nil, iv, plaintext, requestID)
	ciphertext := sealed[:len(plaintext)]
	tag := sealed[len(plaintext):]

	e.PrependTLV(TypeEncryptedPayload, false, ciphertext)
	e.PrependTLV(TypeAuthenticationTag, false, tag)
	e.PrependTLV(TypeInitVector, false, iv)
}

// Decrypt opens an EncryptedPayload element (the sibling
// InitializationVector and AuthenticationTag TLVs must appear alongside
// it in value, in any order relative to each other). It rejects any
// frame whose IV counter is not strictly greater than the highest
// counter seen so far from this peer, refusing replayed or reordered
// frames even though they carry a validly-sealed ciphertext.
func (k *SessionKey) Decrypt(value, requestID []byte) ([]byte, error) {
	var iv, tag, ciphertext []byte
	ev := tlv.NewEvDecoder().
		Rule(TypeInitVector, false, 1, func(e tlv.Element) error { iv = e.Value; return nil }).
		Rule(TypeAuthenticationTag, false, 1, func(e tlv.Element) error { tag = e.Value; return nil }).
		Rule(TypeEncryptedPayload, false, 1, func(e tlv.Element) error { ciphertext = e.Value; return nil })
	if err := ev.DecodeValue(value); err != nil {
		return nil, err
	}
	if len(iv) != ivLen || len(tag) != authTagLen {
		return nil, fmt.Errorf("ndncert: malformed encrypted payload")
	}

	counter := binary.BigEndian.Uint32(iv[8:])
	if k.haveSeenPeer && counter <= k.lastPeerCounter {
		return nil, fmt.Errorf("ndncert: rejecting replayed or reordered IV counter %d (last seen %d)", counter, k.lastPeerCounter)
	}

	sealed := append(append([]byte(nil), ciphertext...), tag...)
	plaintext, err := k.aead.Open(nil, iv, sealed, requestID)
	if err != nil {
		return nil, err
	}
	k.haveSeenPeer = true
	k.lastPeerCounter = counter
	return plaintext, nil
}
