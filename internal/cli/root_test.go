package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Help(t *testing.T) {
	out, _, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "hc speaks plain HTTP/1.1")
	assert.Contains(t, out, "fetch")
}

func TestRootCmd_Version(t *testing.T) {
	out, _, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestRootCmd_FetchFlags(t *testing.T) {
	fetch, _, err := NewRootCmd().Find([]string{"fetch"})
	require.NoError(t, err)

	for _, name := range []string{"path", "method", "data", "header", "config", "format", "extract", "repeat", "rate", "timeout"} {
		assert.NotNil(t, fetch.Flags().Lookup(name), "flag --%s", name)
	}
	assert.NotNil(t, fetch.InheritedFlags().Lookup("verbose"))
	assert.NotNil(t, fetch.InheritedFlags().Lookup("no-color"))
}
