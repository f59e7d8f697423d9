package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickOnly(c Challenge) func(string) Challenge {
	return func(id string) Challenge {
		if id == string(c.ID()) {
			return c
		}
		return nil
	}
}

func TestRunChallengeNopSucceedsOnFirstRound(t *testing.T) {
	s := &session{}
	c := NopChallenge{}
	ok, _, err := s.runChallenge(string(c.ID()), nil, pickOnly(c))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sessionDone, s.state)
}

func TestRunChallengeRejectsUnofferedChallenge(t *testing.T) {
	s := &session{}
	_, _, err := s.runChallenge("bogus", nil, func(string) Challenge { return nil })
	assert.Error(t, err)
}

func TestRunChallengeSwitchingMidSessionCostsARetry(t *testing.T) {
	s := &session{}
	a := NopChallenge{}
	pick := func(id string) Challenge {
		if id == string(a.ID()) {
			return a
		}
		return nil
	}
	s.selectChallenge(stubChallenge{id: "first"})
	require.Equal(t, defaultRetryLimit, s.remainingTry)

	_, _, err := s.runChallenge("second", nil, pick)
	assert.Error(t, err)
	assert.Equal(t, defaultRetryLimit-1, s.remainingTry)
	assert.NotEqual(t, sessionDone, s.state)
}

func TestRunChallengeOutOfTriesAfterRepeatedSwitches(t *testing.T) {
	s := &session{}
	s.selectChallenge(stubChallenge{id: "first"})
	pick := func(string) Challenge { return nil }

	var err error
	for i := 0; i < defaultRetryLimit; i++ {
		_, _, err = s.runChallenge("second", nil, pick)
	}
	assert.Error(t, err)
	assert.Equal(t, sessionDone, s.state)
}

func TestRunChallengeExpiredSession(t *testing.T) {
	s := &session{}
	s.selectChallenge(stubChallenge{id: "first"})
	s.expireAt = time.Now().Add(-time.Second)

	_, _, err := s.runChallenge("first", nil, pickOnly(stubChallenge{id: "first"}))
	assert.Error(t, err)
	assert.Equal(t, sessionDone, s.state)
}

type stubChallenge struct{ id string }

func (c stubChallenge) ID() []byte { return []byte(c.id) }
func (c stubChallenge) Process(map[string][]byte, *ChallengeState) (bool, []byte, error) {
	return false, []byte("pending"), nil
}
