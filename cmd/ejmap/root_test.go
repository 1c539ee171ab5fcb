package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ejmap/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"view", "summarize", "history"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "ejmap", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestSummarizeCommand_Flags(t *testing.T) {
	for _, name := range []string{"indicator", "zoom", "lon", "lat", "low", "high", "json", "save"} {
		require.NotNil(t, summarizeCmd.Flags().Lookup(name), "summarize should have --%s", name)
	}
}

func TestHistoryCommand_Flags(t *testing.T) {
	flag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "20", flag.DefValue)
}

func TestBounds(t *testing.T) {
	bb := bounds([]float64{-127.18, 31.05, -111.62, 43.13})
	assert.True(t, bb.Valid())
	assert.Equal(t, -127.18, bb.MinX)
	assert.Equal(t, 43.13, bb.MaxY)

	assert.False(t, bounds(nil).Valid())
	assert.False(t, bounds([]float64{1, 2}).Valid())
}

func TestStyleArg(t *testing.T) {
	cfg = &config.Config{}
	_, err := styleArg(nil)
	assert.Error(t, err)

	cfg.Data.Style = "data/ca"
	s, err := styleArg(nil)
	require.NoError(t, err)
	assert.Equal(t, "data/ca", s)

	s, err = styleArg([]string{"other.geojson"})
	require.NoError(t, err)
	assert.Equal(t, "other.geojson", s)
}
