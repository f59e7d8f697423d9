// Package client implements the requester side of the NDNCERT v0.3
// issuance protocol: build the NEW Interest, negotiate a session key,
// run a Challenge to completion, and fetch the issued certificate.
package client

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/ndnph-go/ndnph/std/face"
	"github.com/ndnph-go/ndnph/std/log"
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/ndncert"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// State is one step of the client-side issuance state machine from
// spec.md §4.8: NEW_REQ -> NEW_RES -> CHALLENGE_EXEC <-> CHALLENGE_REQ ->
// CHALLENGE_RES -> (SUCCESS | FAILURE).
type State int

const (
	StateNewReq State = iota
	StateNewRes
	StateChallengeExec
	StateChallengeReq
	StateChallengeRes
	StateSuccess
	StateFailure
)

// StepDeadline is the per-operation timeout from spec.md §5: missing it
// fails the session.
const StepDeadline = 4 * time.Second

// Client is a face.PacketHandler that runs NDNCERT requester sessions
// against one CA profile.
type Client struct {
	face.BaseHandler

	Profile *ndncert.CaProfile

	pending chan *ndn.Data
}

// NewClient constructs a Client for profile and attaches it to f.
func NewClient(f *face.Face, profile *ndncert.CaProfile) *Client {
	c := &Client{Profile: profile, pending: make(chan *ndn.Data, 8)}
	f.AddHandler(c, 0)
	return c
}

func (c *Client) String() string { return "ndncert-client" }

// ProcessData implements face.PacketHandler: every Data this client's
// Face receives is queued (up to 8 pending) for the next Session call
// that reads it in waitFor; when the queue is full the Data is dropped.
func (c *Client) ProcessData(d *ndn.Data) bool {
	select {
	case c.pending <- d:
	default:
		log.Warn(c, "dropping data, no session waiting", "name", d.Name.String())
	}
	return true
}

func (c *Client) waitFor(name ndn.Name) (*ndn.Data, error) {
	deadline := time.After(StepDeadline)
	for {
		select {
		case d := <-c.pending:
			if d.Name.Equal(name) {
				return d, nil
			}
		case <-deadline:
			return nil, fmt.Errorf("ndncert/client: timed out waiting for %s", name.String())
		}
	}
}

// Session is one issuance attempt: a self-signed CertRequest, a
// requester signer for NEW/CHALLENGE Interests, and the Challenge this
// attempt will run once the CA offers it.
type Session struct {
	client *Client

	CertRequest *ndn.Data
	Signer      ndn.Signer
	Challenges  []Challenge // in preference order

	state           State
	ecdhPvt         *ecdh.PrivateKey
	sessionKey      *ndncert.SessionKey
	requestID       []byte
	newInterestName ndn.Name

	IssuedCertName ndn.Name
	err            error
}

// NewSession starts an issuance attempt over c using certRequest (a
// self-signed Data carrying the new public key, per spec.md §4.8) and
// signer (the matching private key). challenges lists the Challenge
// implementations this client is willing to run, in preference order;
// the first one the CA also offers is selected.
func (c *Client) NewSession(certRequest *ndn.Data, signer ndn.Signer, challenges ...Challenge) *Session {
	return &Session{client: c, CertRequest: certRequest, Signer: signer, Challenges: challenges}
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Run drives the session through NEW and CHALLENGE rounds to completion,
// returning the issued certificate on success.
func (s *Session) Run() (*ndn.Data, error) {
	if err := s.sendNew(); err != nil {
		return nil, s.fail(err)
	}
	challenge, err := s.recvNewResponse()
	if err != nil {
		return nil, s.fail(err)
	}

	params, err := challenge.Start()
	if err != nil {
		return nil, s.fail(err)
	}

	for {
		resp, err := s.sendChallenge(challenge, params)
		if err != nil {
			return nil, s.fail(err)
		}
		switch resp.status {
		case ndncert.StatusSuccess:
			s.state = StateSuccess
			s.IssuedCertName = resp.issuedCertName
			return s.fetchIssuedCert(resp.issuedCertName)
		case ndncert.StatusChallenge:
			params, err = challenge.Continue(resp.challengeStatus, params)
			if err != nil {
				return nil, s.fail(err)
			}
			s.state = StateChallengeExec
		default:
			return nil, s.fail(fmt.Errorf("ndncert/client: CA reported failure (status %d)", resp.status))
		}
	}
}

func (s *Session) fail(err error) error {
	s.state = StateFailure
	s.err = err
	return err
}

func (s *Session) sendNew() error {
	s.state = StateNewReq
	pvt, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	s.ecdhPvt = pvt

	it := ndn.NewInterest(s.client.Profile.Prefix.Append(ndncert.NewComponent()))
	it.MustBeFresh = true
	it.Parameterize(encodeNewRequestParams(pvt.PublicKey(), s.CertRequest))
	if err := it.Sign(s.Signer); err != nil {
		return err
	}

	if !s.client.Send(tlv.RawWire(it.Wire())) {
		return fmt.Errorf("ndncert/client: failed to send NEW interest")
	}
	s.newInterestName = it.Name
	s.state = StateNewRes
	return nil
}

func (s *Session) recvNewResponse() (Challenge, error) {
	d, err := s.client.waitFor(s.newInterestName)
	if err != nil {
		return nil, err
	}
	if err := d.Verify(s.client.Profile.Verifier); err != nil {
		return nil, err
	}

	peerPub, salt, requestID, offered, err := parseNewResponseContent(d.Content)
	if err != nil {
		return nil, err
	}
	s.requestID = requestID

	sessionKey, err := ndncert.MakeSessionKey(s.ecdhPvt, peerPub, salt, requestID, 0)
	if err != nil {
		return nil, err
	}
	s.sessionKey = sessionKey

	for _, want := range s.Challenges {
		for _, id := range offered {
			if string(id) == string(want.ID()) {
				s.state = StateChallengeExec
				return want, nil
			}
		}
	}
	return nil, fmt.Errorf("ndncert/client: CA does not offer any configured challenge")
}

type challengeResponse struct {
	status          uint8
	challengeStatus []byte
	issuedCertName  ndn.Name
}

func (s *Session) sendChallenge(challenge Challenge, params map[string][]byte) (*challengeResponse, error) {
	s.state = StateChallengeReq
	requestIDComponent := ndn.Generic(s.requestID)
	name := s.client.Profile.Prefix.Append(ndncert.ChallengeComponent(), requestIDComponent)

	it := ndn.NewInterest(name)
	it.MustBeFresh = true
	plaintext := encodeChallengeRequestParams(challenge.ID(), params)
	it.Parameterize(encryptChallengeParams(s.sessionKey, plaintext, s.requestID))
	if err := it.Sign(s.Signer); err != nil {
		return nil, err
	}

	if !s.client.Send(tlv.RawWire(it.Wire())) {
		return nil, fmt.Errorf("ndncert/client: failed to send CHALLENGE interest")
	}
	s.state = StateChallengeRes

	d, err := s.client.waitFor(it.Name)
	if err != nil {
		return nil, err
	}
	if err := d.Verify(s.client.Profile.Verifier); err != nil {
		return nil, err
	}
	return parseChallengeResponseContent(s.sessionKey, s.requestID, d.Content)
}

func (s *Session) fetchIssuedCert(name ndn.Name) (*ndn.Data, error) {
	it := ndn.NewInterest(name)
	if !s.client.Send(it) {
		return nil, fmt.Errorf("ndncert/client: failed to send issued-cert fetch interest")
	}
	d, err := s.client.waitFor(name)
	if err != nil {
		return nil, err
	}
	return d, nil
}
