package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/ejtrace/internal/config"
	"github.com/fakeyudi/ejtrace/internal/profile"
)

func TestSetupSavesProfile(t *testing.T) {
	testEnv(t)

	output, err := executeCommandWithInput(rootCmd, "Dana\njson\n/srv/ej\n/srv/cases\n4\n", "setup")
	require.NoError(t, err)
	assert.Contains(t, output, "Profile saved.")

	p, err := profile.Load()
	require.NoError(t, err)
	assert.Equal(t, &profile.Profile{
		Name:          "Dana",
		DefaultFormat: "json",
		JournalDir:    "/srv/ej",
		OutputDir:     "/srv/cases",
		WindowSize:    4,
	}, p)
}

func TestSetupCancelledOnEOF(t *testing.T) {
	testEnv(t)

	_, err := executeCommandWithInput(rootCmd, "Dana\n", "setup")
	assert.ErrorContains(t, err, "setup cancelled")
	assert.False(t, profile.Exists())
}

func TestApplyProfileFillsDefaults(t *testing.T) {
	c := config.Defaults()
	applyProfile(&c, &profile.Profile{DefaultFormat: "yaml", OutputDir: "/cases", JournalDir: "/ej", WindowSize: 5})
	assert.Equal(t, config.Config{JournalDir: "/ej", OutputDir: "/cases", DefaultFormat: "yaml", WindowSize: 5}, c)

	// Values set by config files win over the profile.
	c = config.Config{JournalDir: "/from-config", OutputDir: ".", DefaultFormat: "markdown", WindowSize: 2}
	applyProfile(&c, &profile.Profile{DefaultFormat: "yaml", JournalDir: "/ej", WindowSize: 5})
	assert.Equal(t, config.Config{JournalDir: "/from-config", OutputDir: ".", DefaultFormat: "markdown", WindowSize: 2}, c)

	applyProfile(&c, nil)
	assert.Equal(t, "/from-config", c.JournalDir)
}
