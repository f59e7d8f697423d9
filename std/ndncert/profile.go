package ndncert

import (
	"fmt"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/sig"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// CaProfile is the parsed form of the CA profile Data a client fetches
// before starting issuance: the CA's name prefix, the maximum validity
// period it will grant, and its own certificate (from which the client
// extracts the verifier used for every later NDNCERT Data in the
// session).
type CaProfile struct {
	Prefix            ndn.Name
	MaxValidityPeriod uint32
	Cert              *ndn.Data
	Verifier          sig.Verifier
}

// ProfileName returns the Data name a CA publishes its profile at:
// <prefix>/CA/INFO/<version>/<segment=0>.
func ProfileName(prefix ndn.Name, version uint64) ndn.Name {
	return prefix.Append(caComponent(), infoComponent(), ndn.Version(version), ndn.Segment(0))
}

// BuildProfileData encodes and signs the CA profile Data packet.
func BuildProfileData(prefix ndn.Name, maxValidityPeriod uint32, caCert *ndn.Data, version uint64, signer ndn.Signer) (*ndn.Data, error) {
	rValue := region.New(len(caCert.Wire()) + prefix.Size() + 64)
	e := tlv.NewEncoder(rValue)
	// Sequential top-level PrependTLV statements build back-to-front, so
	// they are issued here in the reverse of the wire order they must
	// produce: CaPrefix, MaxValidityPeriod, CaCertificate.
	e.PrependTLV(TypeCaCertificate, false, caCert.Wire())
	e.PrependTLV(TypeMaxValidityPeriod, false, tlv.NNI(maxValidityPeriod))
	e.PrependTLV(TypeCaPrefix, false, func(e *tlv.Encoder) { prefix.EncodeTo(e) })
	if e.Failed() {
		return nil, ndn.ErrFailedToEncode
	}

	d := ndn.NewData(ProfileName(prefix, version), e.Bytes())
	d.FreshnessPeriod = 30000
	final := ndn.Segment(0)
	d.FinalBlock = &final
	if _, err := d.Sign(signer); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseProfileData verifies and parses a CA profile Data packet. caVerifier
// must come from an already-trusted copy of the CA certificate (e.g.
// fetched out of band); if nil, the embedded CaCertificate's own key is
// used to verify instead (trust-on-first-use, matching a bare client
// bootstrap).
func ParseProfileData(d *ndn.Data, caVerifier sig.Verifier) (*CaProfile, error) {
	p := &CaProfile{}
	var caCertWire []byte

	ev := tlv.NewEvDecoder().
		Rule(TypeCaPrefix, false, 1, func(e tlv.Element) error {
			inner := tlv.NewDecoder(e.Value)
			sub, ok := inner.Next()
			if !ok {
				return inner.Err()
			}
			n, err := ndn.ParseNameElement(sub)
			p.Prefix = n
			return err
		}).
		Rule(TypeCaInfo, false, 2, func(tlv.Element) error { return nil }).
		Rule(TypeParameterKey, true, 3, func(tlv.Element) error { return nil }).
		Rule(TypeMaxValidityPeriod, false, 4, func(e tlv.Element) error {
			v, err := tlv.ParseNNI(e.Value)
			p.MaxValidityPeriod = uint32(v)
			return err
		}).
		Rule(TypeCaCertificate, false, 5, func(e tlv.Element) error {
			caCertWire = append([]byte(nil), e.Value...)
			return nil
		})
	if err := ev.DecodeValue(d.Content); err != nil {
		return nil, err
	}
	if caCertWire == nil {
		return nil, fmt.Errorf("ndncert: profile missing CaCertificate")
	}

	dec := tlv.NewDecoder(caCertWire)
	el, ok := dec.Next()
	if !ok {
		return nil, dec.Err()
	}
	cert, err := ndn.ParseData(el)
	if err != nil {
		return nil, err
	}
	p.Cert = cert

	verifier, err := extractCertVerifier(cert)
	if err != nil {
		return nil, err
	}
	p.Verifier = verifier

	if caVerifier == nil {
		caVerifier = verifier
	}
	if err := d.Verify(caVerifier); err != nil {
		return nil, err
	}
	if !p.Prefix.IsPrefixOf(d.Name) {
		return nil, fmt.Errorf("ndncert: profile name does not extend CaPrefix")
	}
	return p, nil
}

// extractCertVerifier parses the ECDSA public key out of a certificate
// Data's Content and returns a Verifier for it.
func extractCertVerifier(cert *ndn.Data) (sig.Verifier, error) {
	return sig.ParseEcdsaPublicKey(cert.Content)
}
