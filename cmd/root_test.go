package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCmd_Exists verifies the root command identity.
func TestRootCmd_Exists(t *testing.T) {
	require.NotNil(t, rootCmd, "Root command should exist")
	assert.Equal(t, "herbid", rootCmd.Use,
		"Command name should be herbid")
}

// TestRootCmd_Descriptions verifies help text content.
func TestRootCmd_Descriptions(t *testing.T) {
	assert.NotEmpty(t, rootCmd.Short,
		"Short description should not be empty")
	assert.Contains(t, rootCmd.Long, "herbarium",
		"Long description should mention herbarium")
	assert.Contains(t, rootCmd.Long, "train_metadata.json",
		"Long description should mention the metadata file")
}

// TestRootCmd_Silence verifies errors are printed once, not twice.
func TestRootCmd_Silence(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors,
		"Errors should be silenced")
	assert.True(t, rootCmd.SilenceUsage,
		"Usage should be silenced on errors")
}

// TestRootCmd_Subcommands verifies train and predict are registered.
func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Use] = true
	}
	assert.True(t, names["train"],
		"train subcommand should be registered")
	assert.True(t, names["predict"],
		"predict subcommand should be registered")
}

// TestRootCmd_VersionFlag verifies -V is wired as the version flag.
func TestRootCmd_VersionFlag(t *testing.T) {
	flag := rootCmd.Flags().Lookup("version")
	require.NotNil(t, flag, "version flag should exist")
	assert.Equal(t, "V", flag.Shorthand,
		"Version flag shorthand should be -V")
}

// TestRootCmd_ConfigFlag verifies the persistent --config flag.
func TestRootCmd_ConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag, "config flag should exist")
}
