package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeModule struct{}

func (fakeModule) String() string { return "fake-module" }

func TestParseLevelRoundTrip(t *testing.T) {
	for _, s := range []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"} {
		l, err := ParseLevel(s)
		assert.NoError(t, err)
		assert.Equal(t, s, l.String())
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	_, err := ParseLevel("NOPE")
	assert.Error(t, err)
}

func TestSetLevelFiltersBelowThreshold(t *testing.T) {
	SetLevel(LevelWarn)
	defer SetLevel(LevelInfo)
	assert.Equal(t, LevelWarn, Default().Level())
	// Below-threshold calls must not panic even though they are dropped.
	Debug(fakeModule{}, "dropped")
	Warn(fakeModule{}, "kept")
}

func TestModuleNameUsesStringer(t *testing.T) {
	assert.Equal(t, "fake-module", moduleName(fakeModule{}))
	assert.Equal(t, "<nil>", moduleName(nil))
}
