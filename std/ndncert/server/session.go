package server

import (
	"crypto/ecdh"
	"fmt"
	"time"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/ndncert"
)

// sessionState is the CA side of the issuance state machine: a session
// lives from the NEW request through however many CHALLENGE rounds its
// chosen Challenge needs, then is retired on success or failure.
type sessionState int

const (
	sessionAwaitingChallenge sessionState = iota
	sessionDone
)

// defaultRetryLimit and defaultTimeLimit bound a session's CHALLENGE
// rounds, per spec.md §5's deadline-based resource model: a session that
// never finishes is reclaimed rather than held forever.
const (
	defaultRetryLimit = 3
	defaultTimeLimit  = 60 * time.Second
)

type session struct {
	requestID  []byte
	sessionKey *ndncert.SessionKey
	ecdhPvt    *ecdh.PrivateKey

	certRequest *ndn.Data

	state         sessionState
	challenge     Challenge
	challengeID   string
	challengeData *ChallengeState
	remainingTry  int
	expireAt      time.Time

	issuedCertName ndn.Name
	issuedCert     *ndn.Data
}

func (s *session) expired() bool { return time.Now().After(s.expireAt) }

// selectChallenge commits the session to challenge for its first round,
// fixing its retry budget and deadline.
func (s *session) selectChallenge(c Challenge) {
	s.challenge = c
	s.challengeID = string(c.ID())
	s.challengeData = newChallengeState()
	s.remainingTry = defaultRetryLimit
	s.expireAt = time.Now().Add(defaultTimeLimit)
}

// runChallenge advances the session by one CHALLENGE round. A requester
// that picks a different SelectedChallenge than the one it started with
// has switched mid-session, which this CA treats as a protocol violation
// costing it a retry (rather than a fresh attempt at its full budget) so
// a requester cannot extend its effective try count by hopping
// challenges.
func (s *session) runChallenge(selectedID string, params map[string][]byte, pickChallenge func(string) Challenge) (success bool, challengeStatus []byte, err error) {
	if s.challenge != nil && s.expired() {
		s.state = sessionDone
		return false, nil, fmt.Errorf("ndncert/server: session expired")
	}

	if s.challenge == nil {
		c := pickChallenge(selectedID)
		if c == nil {
			return false, nil, fmt.Errorf("ndncert/server: challenge %q not offered", selectedID)
		}
		s.selectChallenge(c)
	} else if s.challengeID != selectedID {
		s.remainingTry--
		if s.remainingTry <= 0 {
			s.state = sessionDone
			return false, nil, fmt.Errorf("ndncert/server: out of tries")
		}
		return false, nil, fmt.Errorf("ndncert/server: cannot switch challenge mid-session")
	}

	success, challengeStatus, err = s.challenge.Process(params, s.challengeData)
	if err != nil {
		s.remainingTry--
		if s.remainingTry <= 0 {
			s.state = sessionDone
			return false, nil, fmt.Errorf("ndncert/server: out of tries")
		}
		return false, nil, err
	}
	if success {
		s.state = sessionDone
	}
	return success, challengeStatus, nil
}
