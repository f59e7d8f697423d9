// Command ndncertclient runs one NDNCERT v0.3 issuance session against a
// CA profile fetched out of band, using the nop challenge, and prints
// the issued certificate's name.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndnph-go/ndnph/std/face"
	"github.com/ndnph-go/ndnph/std/keychain"
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/ndncert"
	ndncertclient "github.com/ndnph-go/ndnph/std/ndncert/client"
	"github.com/ndnph-go/ndnph/std/sig"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// Exit codes from spec.md §6's NDNCERT CLI contract.
const (
	exitOK              = 0
	exitUsage           = 2
	exitProfileError    = 4
	exitProtocolFailure = 5
)

// requestValidity bounds the lifetime of the self-signed cert-request
// Data this CLI builds to carry its new key to the CA; it is not the
// issued certificate's own validity, which the CA sets from its
// configured MaxValidityPeriod.
const requestValidity = time.Hour

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ndncertclient:", err)
	}
	os.Exit(code)
}

func run(args []string, stdout io.Writer) (int, error) {
	var profilePath, suffix, connect string

	cmd := &cobra.Command{
		Use:           "ndncertclient",
		Short:         "enroll for an NDNCERT certificate",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			if profilePath == "" {
				return &exitError{exitUsage, fmt.Errorf("missing required --profile")}
			}
			return doRun(profilePath, suffix, connect, stdout)
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "P", "", "path to a CA profile Data packet")
	cmd.Flags().StringVarP(&suffix, "suffix", "s", "", "requested name suffix under the CA prefix")
	cmd.Flags().StringVar(&connect, "connect", "ws://127.0.0.1:9696", "CA websocket address")
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		var ee *exitError
		if as, ok := err.(*exitError); ok {
			ee = as
		} else {
			ee = &exitError{exitUsage, err}
		}
		return ee.code, ee.err
	}
	return exitOK, nil
}

func doRun(profilePath, suffix, connect string, stdout io.Writer) error {
	profileWire, err := os.ReadFile(profilePath)
	if err != nil {
		return &exitError{exitProfileError, err}
	}
	dec := tlv.NewDecoder(profileWire)
	el, ok := dec.Next()
	if !ok {
		return &exitError{exitProfileError, dec.Err()}
	}
	profileDataPkt, err := ndn.ParseData(el)
	if err != nil {
		return &exitError{exitProfileError, err}
	}
	profile, err := ndncert.ParseProfileData(profileDataPkt, nil)
	if err != nil {
		return &exitError{exitProfileError, err}
	}

	subjectName := profile.Prefix
	if suffix != "" {
		subjectName = subjectName.Append(ndn.Generic([]byte(suffix)))
	}

	key, err := sig.GenerateEcdsaKey()
	if err != nil {
		return &exitError{exitProtocolFailure, err}
	}
	signer := sig.NewEcdsaSigner(key, subjectName)
	now := uint64(time.Now().Unix())
	certRequest, err := keychain.BuildCertificate(subjectName, &key.PublicKey, now, now+uint64(requestValidity.Seconds()), signer)
	if err != nil {
		return &exitError{exitProtocolFailure, err}
	}

	transport, err := face.DialWs(connect)
	if err != nil {
		return &exitError{exitProtocolFailure, err}
	}
	f := face.New(transport)
	go f.Loop()
	defer transport.Close()

	client := ndncertclient.NewClient(f, profile)
	session := client.NewSession(certRequest, signer, ndncertclient.NopChallenge{})
	issued, err := session.Run()
	if err != nil {
		return &exitError{exitProtocolFailure, err}
	}

	fmt.Fprintln(stdout, issued.Name.String())
	return nil
}
