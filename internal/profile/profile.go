// Package profile manages the investigator's persistent ejtrace profile.
// The profile is stored at ~/.config/ejtrace/profile.json and is created
// once via the interactive setup flow, then referenced on every command.
package profile

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoProfile is returned by Load when setup has never been run.
var ErrNoProfile = errors.New("no profile; run 'ejtrace setup' to configure")

// Profile holds investigator-level preferences set during setup.
type Profile struct {
	Name          string `json:"name"`           // recorded on every report
	DefaultFormat string `json:"default_format"` // text | markdown | json | yaml
	OutputDir     string `json:"output_dir"`
	JournalDir    string `json:"journal_dir"`
	WindowSize    int    `json:"window_size,omitempty"`
}

var formats = []string{"text", "markdown", "json", "yaml"}

// ConfigDir returns the ejtrace config directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ejtrace"), nil
}

func profilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.json"), nil
}

// Exists reports whether a profile file is present on disk.
func Exists() bool {
	p, err := profilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load reads the profile from disk. A missing file yields ErrNoProfile.
func Load() (*Profile, error) {
	p, err := profilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("malformed profile at %s: %w", p, err)
	}
	return &prof, nil
}

// Save writes the profile to disk, creating the config directory if needed.
func Save(prof *Profile) error {
	p, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// RunSetup runs the interactive setup wizard reading answers from in and
// writing prompts to out. If existing is non-nil, its values are offered as
// defaults (edit mode). The profile is returned, not saved.
func RunSetup(in io.Reader, out io.Writer, existing *Profile) (*Profile, error) {
	r := bufio.NewReader(in)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	askInt := func(prompt string, defaultVal int) (int, error) {
		for {
			ans, err := ask(prompt, strconv.Itoa(defaultVal))
			if err != nil {
				return 0, err
			}
			n, err := strconv.Atoi(ans)
			if err == nil && n >= 0 {
				return n, nil
			}
			fmt.Fprintln(out, "  Please enter a whole number (0 or more).")
		}
	}

	prof := &Profile{
		DefaultFormat: "text",
		OutputDir:     ".",
		JournalDir:    ".",
		WindowSize:    3,
	}
	if existing != nil {
		*prof = *existing
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(out, "  │   ejtrace — investigator setup  │")
	fmt.Fprintln(out, "  └─────────────────────────────────┘")
	fmt.Fprintln(out)

	var err error

	prof.Name, err = ask("  Your name (recorded on reports)", prof.Name)
	if err != nil {
		return nil, err
	}

	format, err := ask("  Default report format ("+strings.Join(formats, "/")+")", prof.DefaultFormat)
	if err != nil {
		return nil, err
	}
	prof.DefaultFormat = normalizeFormat(format)

	prof.JournalDir, err = ask("  Journal directory", prof.JournalDir)
	if err != nil {
		return nil, err
	}

	prof.OutputDir, err = ask("  Report output directory", prof.OutputDir)
	if err != nil {
		return nil, err
	}

	prof.WindowSize, err = askInt("  Withdrawals to keep on each side of the target", prof.WindowSize)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out)
	return prof, nil
}

// normalizeFormat maps an answer onto a known format, falling back to text.
func normalizeFormat(f string) string {
	f = strings.ToLower(strings.TrimSpace(f))
	if f == "md" {
		return "markdown"
	}
	for _, known := range formats {
		if f == known {
			return f
		}
	}
	return "text"
}
