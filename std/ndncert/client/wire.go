package client

import (
	"crypto/ecdh"
	"fmt"
	"sort"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/ndncert"
	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// encodeNewRequestParams builds the AppParameters value of a NEW
// Interest: EcdhPub, CertRequest, in that wire order.
func encodeNewRequestParams(pub *ecdh.PublicKey, certRequest *ndn.Data) []byte {
	certWire := certRequest.Wire()
	r := region.New(len(certWire) + 96)
	e := tlv.NewEncoder(r)
	e.PrependTLV(ndncert.TypeCertRequest, false, certWire)
	e.PrependTLV(ndncert.TypeEcdhPub, false, pub.Bytes())
	return e.Bytes()
}

// parseNewResponseContent parses a NEW response Data's Content: EcdhPub,
// Salt, RequestId, Challenge* (repeated, offered challenge identifiers).
func parseNewResponseContent(content []byte) (peerPub *ecdh.PublicKey, salt, requestID []byte, offered [][]byte, err error) {
	var pubBytes []byte
	ev := tlv.NewEvDecoder().
		Rule(ndncert.TypeEcdhPub, false, 1, func(e tlv.Element) error {
			pubBytes = e.Value
			return nil
		}).
		Rule(ndncert.TypeSalt, false, 2, func(e tlv.Element) error {
			salt = e.Value
			return nil
		}).
		Rule(ndncert.TypeRequestId, false, 3, func(e tlv.Element) error {
			requestID = e.Value
			return nil
		}).
		Rule(ndncert.TypeChallenge, true, 4, func(e tlv.Element) error {
			offered = append(offered, e.Value)
			return nil
		})
	if err = ev.DecodeValue(content); err != nil {
		return nil, nil, nil, nil, err
	}
	if len(salt) != ndncert.SaltLen || len(requestID) != ndncert.RequestIDLen {
		return nil, nil, nil, nil, fmt.Errorf("ndncert/client: malformed NEW response")
	}
	peerPub, err = ndncert.ParseEcdhPub(pubBytes)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return peerPub, salt, requestID, offered, nil
}

// encodeChallengeRequestParams builds the plaintext later AES-GCM sealed
// into a CHALLENGE Interest's AppParameters: SelectedChallenge followed
// by (ParameterKey, ParameterValue) pairs, one pair per map entry, keys
// sorted for a deterministic wire encoding.
func encodeChallengeRequestParams(challengeID []byte, params map[string][]byte) []byte {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	size := len(challengeID) + 32
	for k, v := range params {
		size += len(k) + len(v) + 16
	}
	r := region.New(size)
	e := tlv.NewEncoder(r)
	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		e.PrependTLV(ndncert.TypeParameterValue, false, params[k])
		e.PrependTLV(ndncert.TypeParameterKey, false, []byte(k))
	}
	e.PrependTLV(ndncert.TypeSelectedChallenge, false, challengeID)
	return e.Bytes()
}

// encryptChallengeParams seals plaintext with sessionKey and returns the
// resulting InitializationVector/AuthenticationTag/EncryptedPayload TLV
// sequence, ready to serve directly as an Interest's AppParameters.
func encryptChallengeParams(sessionKey *ndncert.SessionKey, plaintext, requestID []byte) []byte {
	r := region.New(len(plaintext) + 64)
	e := tlv.NewEncoder(r)
	sessionKey.EncryptTo(e, plaintext, requestID)
	return e.Bytes()
}

// parseChallengeResponseContent decrypts and parses a CHALLENGE response
// Data's Content: Status, ChallengeStatus, RemainingTries, RemainingTime,
// IssuedCertName (only present on success).
func parseChallengeResponseContent(sessionKey *ndncert.SessionKey, requestID, content []byte) (*challengeResponse, error) {
	plaintext, err := sessionKey.Decrypt(content, requestID)
	if err != nil {
		return nil, err
	}

	resp := &challengeResponse{}
	ev := tlv.NewEvDecoder().
		Rule(ndncert.TypeStatus, false, 1, func(e tlv.Element) error {
			v, err := tlv.ParseNNI(e.Value)
			resp.status = uint8(v)
			return err
		}).
		Rule(ndncert.TypeChallengeStatus, false, 2, func(e tlv.Element) error {
			resp.challengeStatus = append([]byte(nil), e.Value...)
			return nil
		}).
		Rule(ndncert.TypeRemainingTries, false, 3, func(tlv.Element) error { return nil }).
		Rule(ndncert.TypeRemainingTime, false, 4, func(tlv.Element) error { return nil }).
		Rule(ndncert.TypeIssuedCertName, false, 5, func(e tlv.Element) error {
			inner := tlv.NewDecoder(e.Value)
			sub, ok := inner.Next()
			if !ok {
				return inner.Err()
			}
			n, err := ndn.ParseNameElement(sub)
			resp.issuedCertName = n
			return err
		})
	if err := ev.DecodeValue(plaintext); err != nil {
		return nil, err
	}
	return resp, nil
}
