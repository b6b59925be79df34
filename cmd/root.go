package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/ejtrace/internal/config"
	"github.com/fakeyudi/ejtrace/internal/extract"
	"github.com/fakeyudi/ejtrace/internal/profile"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded investigator profile.
var activeProfile *profile.Profile

// logger carries diagnostics to stderr; results go through cmd.Print*.
var logger = log.New(io.Discard)

var verbose bool

// isInteractive reports whether prompts can be shown on stdin.
var isInteractive = func() bool {
	return term.IsTerminal(os.Stdin.Fd())
}

var rootCmd = &cobra.Command{
	Use:   "ejtrace",
	Short: "Extract the journal window around an ATM transaction trace number",
	Long: `ejtrace scans ATM electronic-journal (EJ) files for a transaction trace
number and saves the transaction together with the successful cash
withdrawals recorded around it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd.ErrOrStderr())

		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// First run on a terminal: offer the setup wizard.
		if !profile.Exists() && isInteractive() {
			cmd.Println()
			cmd.Println("  Welcome to ejtrace! Looks like this is your first time.")
			if err := runSetup(cmd, true); err != nil {
				return err
			}
		}

		activeProfile = nil
		p, err := profile.Load()
		switch {
		case errors.Is(err, profile.ErrNoProfile):
			// Non-interactive (tests, pipes): continue with defaults.
		case err != nil:
			return fmt.Errorf("loading profile: %w", err)
		default:
			activeProfile = p
		}

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		applyProfile(&cfg, activeProfile)

		logger.Debug("configuration loaded",
			"journal_dir", cfg.JournalDir, "output_dir", cfg.OutputDir,
			"format", cfg.DefaultFormat, "window", cfg.WindowSize)
		return nil
	},
}

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: "ejtrace"})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// applyProfile lets profile values fill config fields still at their
// defaults.
func applyProfile(c *config.Config, p *profile.Profile) {
	if p == nil {
		return
	}
	d := config.Defaults()
	if c.DefaultFormat == d.DefaultFormat && p.DefaultFormat != "" {
		c.DefaultFormat = p.DefaultFormat
	}
	if c.OutputDir == d.OutputDir && p.OutputDir != "" {
		c.OutputDir = p.OutputDir
	}
	if c.JournalDir == d.JournalDir && p.JournalDir != "" {
		c.JournalDir = p.JournalDir
	}
	if c.WindowSize == extract.DefaultWindowSize && p.WindowSize > 0 {
		c.WindowSize = p.WindowSize
	}
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active investigator profile, or nil.
func GetProfile() *profile.Profile {
	return activeProfile
}

func investigator() string {
	if p := GetProfile(); p != nil {
		return p.Name
	}
	return ""
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
