package server

import (
	"crypto/rand"
	"fmt"

	"github.com/ndnph-go/ndnph/std/keychain"
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/ndncert"
	"github.com/ndnph-go/ndnph/std/sig"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// ChallengeState is the per-session, per-challenge scratch space a
// Challenge may use across its rounds (e.g. a nonce issued in round one
// and checked in round two). The CA discards it once the challenge
// reports success or failure.
type ChallengeState struct {
	Data map[string][]byte
}

func newChallengeState() *ChallengeState { return &ChallengeState{Data: map[string][]byte{}} }

// Challenge drives one issuer-side challenge protocol. Process is called
// once per CHALLENGE round with that round's parameters; it returns
// success once the requester has proven its claim, challengeStatus to
// carry to the next round otherwise, and a non-nil error only for a
// protocol violation (which costs the session a retry).
type Challenge interface {
	ID() []byte
	Process(params map[string][]byte, state *ChallengeState) (success bool, challengeStatus []byte, err error)
}

// NopChallenge grants unconditionally on its first round. It exists for
// tests and bootstrap CAs that trust every requester.
type NopChallenge struct{}

func (NopChallenge) ID() []byte { return ndncert.ChallengeNop }

func (NopChallenge) Process(map[string][]byte, *ChallengeState) (bool, []byte, error) {
	return true, nil, nil
}

// PossessionChallenge grants to a requester that can sign with the key
// of an existing, CA-recognized certificate: round one submits that
// certificate, the CA replies with a random nonce; round two must submit
// a signature over the nonce produced by the certificate's key.
type PossessionChallenge struct {
	// Trust reports whether cert is one this CA accepts as proof of prior
	// enrollment (e.g. issued by this same CA, or present in an
	// allowlist). A nil Trust accepts any well-formed certificate.
	Trust func(cert *ndn.Data) bool
}

func (PossessionChallenge) ID() []byte { return ndncert.ChallengePossession }

func (p PossessionChallenge) Process(params map[string][]byte, state *ChallengeState) (bool, []byte, error) {
	if proof, ok := params[string(ndncert.ParamKeyProof)]; ok {
		nonce := state.Data["nonce"]
		verifier, _ := sig.ParseEcdsaPublicKey(state.Data["pub"])
		if nonce == nil || verifier == nil {
			return false, nil, fmt.Errorf("ndncert/server: possession challenge out of order")
		}
		if err := verifier.Verify([][]byte{nonce}, proof); err != nil {
			return false, nil, err
		}
		return true, nil, nil
	}

	certWire, ok := params[string(ndncert.ParamKeyIssuedCert)]
	if !ok {
		return false, nil, fmt.Errorf("ndncert/server: possession challenge missing issued-cert")
	}
	dec := tlv.NewDecoder(certWire)
	el, ok := dec.Next()
	if !ok {
		return false, nil, dec.Err()
	}
	cert, err := ndn.ParseData(el)
	if err != nil {
		return false, nil, err
	}
	if p.Trust != nil && !p.Trust(cert) {
		return false, nil, fmt.Errorf("ndncert/server: certificate not trusted")
	}
	if _, err := keychain.VerifierFromCertificate(cert); err != nil {
		return false, nil, err
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return false, nil, err
	}
	state.Data["nonce"] = nonce
	state.Data["pub"] = append([]byte(nil), cert.Content...)
	return false, nonce, nil
}
