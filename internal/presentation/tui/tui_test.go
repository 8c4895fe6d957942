package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlain(t *testing.T) {
	out, err := Plain("  # Title  \n")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", out)
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer(40)("**bold**")
	require.NoError(t, err)
	assert.Contains(t, out, "bold")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_____")
}
