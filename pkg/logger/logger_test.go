package logger

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(flag int, plain bool) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	l := New(&LoggerConfig{Flag: flag, Identifier: "city", Outputs: []io.Writer{&out}, ErrOutput: &errOut, Plain: plain})
	return l, &out, &errOut
}

func TestLevelFiltering(t *testing.T) {
	l, out, errOut := newBuffered(FLAG_INFO, true)

	l.Debug("hidden")
	l.Trace("hidden too")
	assert.Empty(t, out.String())

	l.Info("City is running...")
	assert.Contains(t, out.String(), "[city] [INFO] City is running...")

	l.Error("boom %d", 42)
	assert.Contains(t, errOut.String(), "[ERROR] boom 42")
	assert.NotContains(t, out.String(), "boom")
}

func TestOffSilencesErrors(t *testing.T) {
	l, out, errOut := newBuffered(FLAG_OFF, true)
	l.Error("nothing")
	l.Info("nothing")
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestConsoleFormatIsBoxed(t *testing.T) {
	l, out, _ := newBuffered(FLAG_DEBUG, false)
	l.Debug("line one\nline two")

	s := out.String()
	assert.Contains(t, s, "┌─[DEBUG]")
	assert.Contains(t, s, "│  [city] line one")
	assert.Contains(t, s, "│  line two")
	assert.Contains(t, s, "└")
	assert.Contains(t, s, Cyan)
}

func TestStringMessageWithArgsIsFormat(t *testing.T) {
	l, out, _ := newBuffered(FLAG_INFO, true)
	l.Info("order %d %s", 1, "ATTACK")
	assert.Contains(t, out.String(), "[INFO] order 1 ATTACK")
}

func TestNonStringMessageArgsAreJoined(t *testing.T) {
	l, out, _ := newBuffered(FLAG_INFO, true)
	l.Info(1, "ATTACK", 2)
	assert.Contains(t, out.String(), "[INFO] 1 ATTACK 2")
}

func TestWithChangesIdentifier(t *testing.T) {
	l, out, _ := newBuffered(FLAG_INFO, true)
	l.With("general_2").Info("hello")
	assert.Contains(t, out.String(), "[general_2] [INFO] hello")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]int{
		"trace": FLAG_TRACE, "DEBUG": FLAG_DEBUG, "": FLAG_INFO,
		"warn": FLAG_WARN, "error": FLAG_ERROR, "off": FLAG_OFF,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	l := New(nil)
	assert.Equal(t, FLAG_INFO, l.Flag())
	assert.True(t, l.Enabled(FLAG_WARN))
	assert.False(t, l.Enabled(FLAG_DEBUG))
}
