package client

import (
	"fmt"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/ndncert"
	"github.com/ndnph-go/ndnph/std/sig"
)

// Challenge drives one requester-side challenge protocol across however
// many CHALLENGE rounds it needs. Start produces the first round's
// parameters (sent alongside SelectedChallenge); Continue is invoked
// with the server's ChallengeStatus whenever the server reports another
// round is needed, and must produce the following round's parameters.
type Challenge interface {
	ID() []byte
	Start() (map[string][]byte, error)
	Continue(challengeStatus []byte, prevParams map[string][]byte) (map[string][]byte, error)
}

// NopChallenge accepts unconditionally; it exists for tests and bootstrap
// environments that trust any requester, never production CAs.
type NopChallenge struct{}

func (NopChallenge) ID() []byte { return ndncert.ChallengeNop }

func (NopChallenge) Start() (map[string][]byte, error) { return map[string][]byte{}, nil }

func (NopChallenge) Continue([]byte, map[string][]byte) (map[string][]byte, error) {
	return nil, fmt.Errorf("ndncert/client: nop challenge completes in one round")
}

// PossessionChallenge proves control of an existing certificate: the
// first round submits the certificate itself, the server replies with a
// nonce carried in ChallengeStatus, and the second round submits a
// signature over that nonce produced by the certified key.
type PossessionChallenge struct {
	Cert   *ndn.Data
	Signer sig.Signer
}

func (PossessionChallenge) ID() []byte { return ndncert.ChallengePossession }

func (p PossessionChallenge) Start() (map[string][]byte, error) {
	return map[string][]byte{string(ndncert.ParamKeyIssuedCert): p.Cert.Wire()}, nil
}

func (p PossessionChallenge) Continue(challengeStatus []byte, _ map[string][]byte) (map[string][]byte, error) {
	proof, err := p.Signer.Sign([][]byte{challengeStatus})
	if err != nil {
		return nil, err
	}
	return map[string][]byte{string(ndncert.ParamKeyProof): proof}, nil
}
