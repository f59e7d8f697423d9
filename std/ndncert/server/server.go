// Package server implements the issuer side of the NDNCERT v0.3
// issuance protocol: publish a CA profile, negotiate a session key per
// requester, run a configurable Challenge, and issue the resulting
// certificate. Unlike a single-session reference CA, this Server serves
// arbitrarily many concurrent sessions, keyed by an xxhash of each
// session's CA-assigned RequestId.
package server

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/ndnph-go/ndnph/std/face"
	"github.com/ndnph-go/ndnph/std/keychain"
	"github.com/ndnph-go/ndnph/std/log"
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/ndncert"
	"github.com/ndnph-go/ndnph/std/sig"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// Server is a face.PacketHandler implementing one CA's NDNCERT endpoint.
type Server struct {
	face.BaseHandler

	Profile    *ndncert.CaProfile
	Signer     sig.Signer
	Challenges []Challenge

	profileData *ndn.Data
	newName     ndn.Name
	challengeName ndn.Name

	mu       sync.Mutex
	sessions map[uint64]*session
	certs    map[string]*ndn.Data
}

// NewServer builds and signs the CA profile Data for prefix (version
// stamped at construction time) and returns a Server ready to be
// attached to a Face via f.AddHandler.
func NewServer(prefix ndn.Name, maxValidityPeriod uint32, caCert *ndn.Data, signer sig.Signer, challenges ...Challenge) (*Server, error) {
	version := uint64(time.Now().UnixNano())
	profileData, err := ndncert.BuildProfileData(prefix, maxValidityPeriod, caCert, version, signer)
	if err != nil {
		return nil, err
	}
	verifier, err := keychain.VerifierFromCertificate(caCert)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Profile: &ndncert.CaProfile{
			Prefix:            prefix,
			MaxValidityPeriod: maxValidityPeriod,
			Cert:              caCert,
			Verifier:          verifier,
		},
		Signer:        signer,
		Challenges:    challenges,
		profileData:   profileData,
		newName:       prefix.Append(ndncert.NewComponent()),
		challengeName: prefix.Append(ndncert.ChallengeComponent()),
		sessions:      make(map[uint64]*session),
		certs:         make(map[string]*ndn.Data),
	}
	return s, nil
}

func (s *Server) String() string { return "ndncert-server" }

// ProfileData returns the signed CA profile Data this Server publishes,
// for callers that distribute it out of band (e.g. over HTTPS, or a
// test fixture) rather than by Interest/Data exchange.
func (s *Server) ProfileData() *ndn.Data { return s.profileData }

func stripParamsDigest(n ndn.Name) ndn.Name {
	if len(n) > 0 && n[len(n)-1].Type == ndn.TypeParametersSha256DigestComponent {
		return n[:len(n)-1]
	}
	return n
}

// ProcessInterest implements face.PacketHandler.
func (s *Server) ProcessInterest(it *ndn.Interest) bool {
	if s.profileData != nil && it.Name.Equal(s.profileData.Name) {
		return s.Reply(rawData(s.profileData))
	}

	bare := stripParamsDigest(it.Name)
	switch {
	case len(bare) == len(s.newName) && s.newName.Equal(bare):
		s.handleNew(it)
		return true
	case len(bare) == len(s.challengeName)+1 && s.challengeName.Equal(bare[:len(s.challengeName)]):
		s.handleChallenge(it, bare[len(s.challengeName)].Value)
		return true
	}

	if cert := s.lookupIssuedCert(it.Name); cert != nil {
		return s.Reply(rawData(cert))
	}
	return false
}

func rawData(d *ndn.Data) tlv.RawWire { return tlv.RawWire(d.Wire()) }

func (s *Server) lookupIssuedCert(name ndn.Name) *ndn.Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.certs[name.String()]
}

func (s *Server) findChallenge(id string) Challenge {
	for _, c := range s.Challenges {
		if string(c.ID()) == id {
			return c
		}
	}
	return nil
}

func (s *Server) handleNew(it *ndn.Interest) {
	pub, certRequest, err := parseNewRequestParams(it.AppParameters)
	if err != nil {
		log.Warn(s, "malformed NEW request", "err", err)
		return
	}

	_, _, verifier, err := parseCertRequestSubject(certRequest)
	if err != nil {
		log.Warn(s, "invalid cert request", "err", err)
		return
	}
	if err := certRequest.Verify(verifier); err != nil {
		log.Warn(s, "cert request not self-signed", "err", err)
		return
	}
	if err := it.Verify(verifier); err != nil {
		log.Warn(s, "NEW interest signature invalid", "err", err)
		return
	}

	serverPvt, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		log.Error(s, "failed to generate ECDH key", "err", err)
		return
	}
	salt := make([]byte, ndncert.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		log.Error(s, "failed to generate salt", "err", err)
		return
	}
	requestID := make([]byte, ndncert.RequestIDLen)
	if _, err := rand.Read(requestID); err != nil {
		log.Error(s, "failed to generate request id", "err", err)
		return
	}

	sessionKey, err := ndncert.MakeSessionKey(serverPvt, pub, salt, requestID, 1)
	if err != nil {
		log.Error(s, "failed to derive session key", "err", err)
		return
	}

	sess := &session{
		requestID:   requestID,
		sessionKey:  sessionKey,
		ecdhPvt:     serverPvt,
		certRequest: certRequest,
	}
	s.mu.Lock()
	s.sessions[xxhash.Sum64(requestID)] = sess
	s.mu.Unlock()

	ids := make([][]byte, len(s.Challenges))
	for i, c := range s.Challenges {
		ids[i] = c.ID()
	}
	content := encodeNewResponseContent(serverPvt.PublicKey(), salt, requestID, ids)

	d := ndn.NewData(it.Name, content)
	d.FreshnessPeriod = 4000
	if _, err := d.Sign(s.Signer); err != nil {
		log.Error(s, "failed to sign NEW response", "err", err)
		return
	}
	s.Reply(rawData(d))
}

func (s *Server) handleChallenge(it *ndn.Interest, requestID []byte) {
	s.mu.Lock()
	sess := s.sessions[xxhash.Sum64(requestID)]
	s.mu.Unlock()
	if sess == nil {
		log.Warn(s, "challenge interest for unknown session")
		return
	}

	_, _, verifier, err := parseCertRequestSubject(sess.certRequest)
	if err != nil {
		log.Warn(s, "session cert request corrupt", "err", err)
		return
	}
	if err := it.Verify(verifier); err != nil {
		log.Warn(s, "CHALLENGE interest signature invalid", "err", err)
		return
	}

	plaintext, err := sess.sessionKey.Decrypt(it.AppParameters, requestID)
	if err != nil {
		log.Warn(s, "failed to decrypt challenge parameters", "err", err)
		return
	}
	selected, params, err := parseChallengeRequestPlaintext(plaintext)
	if err != nil {
		log.Warn(s, "malformed challenge parameters", "err", err)
		return
	}

	success, challengeStatus, runErr := sess.runChallenge(selected, params, s.findChallenge)

	var status uint8
	var issuedCertName ndn.Name
	switch {
	case runErr != nil && sess.state == sessionDone:
		status = ndncert.StatusFailure
	case success:
		status = ndncert.StatusSuccess
		cert, err := s.issueCertificate(sess)
		if err != nil {
			log.Error(s, "failed to issue certificate", "err", err)
			return
		}
		issuedCertName = cert.Name
	default:
		status = ndncert.StatusChallenge
		if runErr != nil && challengeStatus == nil && sess.challengeData != nil {
			// A failed round (wrong proof, retries remain) does not issue
			// a fresh nonce; resend the one already in play.
			challengeStatus = sess.challengeData.Data["nonce"]
		}
	}

	content := encodeChallengeResponsePlaintext(status, challengeStatus, uint32(sess.remainingTry), 60, issuedCertName)
	sealed := encryptResponseContent(sess.sessionKey, content, requestID)

	d := ndn.NewData(it.Name, sealed)
	d.FreshnessPeriod = 4000
	if _, err := d.Sign(s.Signer); err != nil {
		log.Error(s, "failed to sign challenge response", "err", err)
		return
	}
	s.Reply(rawData(d))

	if status != ndncert.StatusChallenge {
		s.mu.Lock()
		delete(s.sessions, xxhash.Sum64(requestID))
		s.mu.Unlock()
	}
}

func (s *Server) issueCertificate(sess *session) (*ndn.Data, error) {
	_, subjectPub, _, err := parseCertRequestSubject(sess.certRequest)
	if err != nil {
		return nil, err
	}
	name := sess.certRequest.Name.Append(ndn.Generic([]byte("NDNCERT")), ndn.Version(uint64(time.Now().UnixNano())))
	now := uint64(time.Now().Unix())
	cert, err := keychain.BuildCertificate(name, subjectPub, now, now+uint64(s.Profile.MaxValidityPeriod), s.Signer)
	if err != nil {
		return nil, err
	}
	sess.issuedCertName = cert.Name
	sess.issuedCert = cert

	s.mu.Lock()
	s.certs[cert.Name.String()] = cert
	s.mu.Unlock()
	return cert, nil
}

// parseCertRequestSubject extracts the subject's DER-encoded public key,
// ecdsa.PublicKey, and verifier from a self-signed cert-request Data.
func parseCertRequestSubject(certRequest *ndn.Data) (der []byte, pub *ecdsa.PublicKey, verifier sig.Verifier, err error) {
	der = certRequest.Content
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, nil, nil, err
	}
	ecPub, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, nil, nil, ndn.ErrInvalidValue{Item: "cert request public key", Value: parsed}
	}
	verifier = sig.NewEcdsaVerifier(ecPub)
	return der, ecPub, verifier, nil
}
