package util

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(&buf, false)
	assert.Equal(t, log.InfoLevel, l.GetLevel())

	l.Debug("hidden")
	l.Info("fetched", "stage", "hop1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "fetched")
	assert.Contains(t, buf.String(), "hop1")

	assert.Equal(t, log.DebugLevel, NewLogger(&buf, true).GetLevel())
}

func TestHelpTextListsFlags(t *testing.T) {
	t.Parallel()

	help := HelpText()
	for _, flag := range []string{"-serve", "-direct", "-debug", "-version"} {
		assert.Contains(t, help, flag)
	}
}

func TestValidateQuery(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateQuery(""))
	assert.NoError(t, validateQuery("dune"))
	assert.Error(t, validateQuery("x"))
}
