package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"analyze", "compare-postal", "compare-cities"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "location-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestAnalyzeCommand_Flags(t *testing.T) {
	flag := analyzeCmd.Flags().Lookup("radius")
	require.NotNil(t, flag, "analyze command should have --radius flag")
	assert.Equal(t, "0", flag.DefValue)

	require.NotNil(t, analyzeCmd.Flags().Lookup("json-dir"))
	require.NotNil(t, analyzeCmd.Flags().Lookup("no-report"))
}

func TestComparePostalCommand_Flags(t *testing.T) {
	flag := comparePostalCmd.Flags().Lookup("city")
	require.NotNil(t, flag, "compare-postal command should have --city flag")
}
