package server

import (
	"crypto/ecdh"
	"fmt"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/ndncert"
	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// parseNewRequestParams parses a NEW Interest's AppParameters: EcdhPub
// followed by CertRequest (a nested self-signed Data carrying the new
// public key).
func parseNewRequestParams(content []byte) (pub *ecdh.PublicKey, certRequest *ndn.Data, err error) {
	var pubBytes, certWire []byte
	ev := tlv.NewEvDecoder().
		Rule(ndncert.TypeEcdhPub, false, 1, func(e tlv.Element) error {
			pubBytes = e.Value
			return nil
		}).
		Rule(ndncert.TypeCertRequest, false, 2, func(e tlv.Element) error {
			certWire = e.Value
			return nil
		})
	if err = ev.DecodeValue(content); err != nil {
		return nil, nil, err
	}
	if pubBytes == nil || certWire == nil {
		return nil, nil, fmt.Errorf("ndncert/server: malformed NEW request")
	}
	pub, err = ndncert.ParseEcdhPub(pubBytes)
	if err != nil {
		return nil, nil, err
	}
	dec := tlv.NewDecoder(certWire)
	el, ok := dec.Next()
	if !ok {
		return nil, nil, dec.Err()
	}
	certRequest, err = ndn.ParseData(el)
	if err != nil {
		return nil, nil, err
	}
	return pub, certRequest, nil
}

// encodeNewResponseContent builds a NEW response Data's Content: EcdhPub,
// Salt, RequestId, Challenge* (one element per offered challenge id).
func encodeNewResponseContent(pub *ecdh.PublicKey, salt, requestID []byte, challengeIDs [][]byte) []byte {
	size := len(salt) + len(requestID) + 96
	for _, id := range challengeIDs {
		size += len(id) + 8
	}
	r := region.New(size)
	e := tlv.NewEncoder(r)
	for i := len(challengeIDs) - 1; i >= 0; i-- {
		e.PrependTLV(ndncert.TypeChallenge, false, challengeIDs[i])
	}
	e.PrependTLV(ndncert.TypeRequestId, false, requestID)
	e.PrependTLV(ndncert.TypeSalt, false, salt)
	e.PrependTLV(ndncert.TypeEcdhPub, false, pub.Bytes())
	return e.Bytes()
}

// parseChallengeRequestPlaintext parses a decrypted CHALLENGE request:
// SelectedChallenge followed by (ParameterKey, ParameterValue) pairs.
func parseChallengeRequestPlaintext(plaintext []byte) (selected string, params map[string][]byte, err error) {
	params = map[string][]byte{}
	var selectedBytes []byte
	var pendingKey string
	var havePending bool

	ev := tlv.NewEvDecoder().
		Rule(ndncert.TypeSelectedChallenge, false, 1, func(e tlv.Element) error {
			selectedBytes = append([]byte(nil), e.Value...)
			return nil
		}).
		Rule(ndncert.TypeParameterKey, true, 2, func(e tlv.Element) error {
			pendingKey = string(e.Value)
			havePending = true
			return nil
		}).
		Rule(ndncert.TypeParameterValue, true, 2, func(e tlv.Element) error {
			if !havePending {
				return fmt.Errorf("ndncert/server: parameter value without a preceding key")
			}
			params[pendingKey] = append([]byte(nil), e.Value...)
			havePending = false
			return nil
		})
	if err = ev.DecodeValue(plaintext); err != nil {
		return "", nil, err
	}
	if selectedBytes == nil {
		return "", nil, fmt.Errorf("ndncert/server: missing SelectedChallenge")
	}
	return string(selectedBytes), params, nil
}

// encodeChallengeResponsePlaintext builds a CHALLENGE response's
// plaintext: Status, ChallengeStatus, RemainingTries, RemainingTime,
// IssuedCertName (only emitted when name is non-nil).
func encodeChallengeResponsePlaintext(status uint8, challengeStatus []byte, remainingTries, remainingTime uint32, issuedCertName ndn.Name) []byte {
	size := len(challengeStatus) + 64
	if issuedCertName != nil {
		size += issuedCertName.Size() + 8
	}
	r := region.New(size)
	e := tlv.NewEncoder(r)
	if issuedCertName != nil {
		e.PrependTLV(ndncert.TypeIssuedCertName, true, func(e *tlv.Encoder) { issuedCertName.EncodeTo(e) })
	}
	e.PrependTLV(ndncert.TypeRemainingTime, false, tlv.NNI(remainingTime))
	e.PrependTLV(ndncert.TypeRemainingTries, false, tlv.NNI(remainingTries))
	e.PrependTLV(ndncert.TypeChallengeStatus, true, challengeStatus)
	e.PrependTLV(ndncert.TypeStatus, false, tlv.NNI(status))
	return e.Bytes()
}

// encryptResponseContent seals plaintext for delivery as a CHALLENGE
// response Data's Content.
func encryptResponseContent(sessionKey *ndncert.SessionKey, plaintext, requestID []byte) []byte {
	r := region.New(len(plaintext) + 64)
	e := tlv.NewEncoder(r)
	sessionKey.EncryptTo(e, plaintext, requestID)
	return e.Bytes()
}
