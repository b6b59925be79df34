package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// fileNameRe matches "<8-digit terminal id>-<yyyy-m-d>.txt".
var fileNameRe = regexp.MustCompile(`^(\d{8})-(\d{4}-\d{1,2}-\d{1,2})\.(?i:txt)$`)

// ParseFileName extracts the terminal id and journal date from a journal
// file path. Only the base name is inspected.
func ParseFileName(path string) (File, bool) {
	m := fileNameRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return File{}, false
	}
	date, err := time.Parse("2006-1-2", m[2])
	if err != nil {
		return File{}, false
	}
	return File{TerminalID: m[1], Date: date, Path: path}, true
}

// Discoverer lists journal files in a directory.
type Discoverer struct {
	// Logger receives debug output about skipped entries. Nil discards.
	Logger *log.Logger
}

// Discover is shorthand for a Discoverer without logging.
func Discover(dir string) ([]File, error) {
	return (&Discoverer{}).Discover(dir)
}

// Discover returns every journal file directly inside dir. Entries whose
// names do not follow the journal naming scheme are skipped.
func (d *Discoverer) Discover(dir string) ([]File, error) {
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing journal directory: %w", err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, ok := ParseFileName(filepath.Join(dir, entry.Name()))
		if !ok {
			logger.Debug("skipping non-journal file", "name", entry.Name())
			continue
		}
		files = append(files, f)
	}
	logger.Debug("discovered journal files", "dir", dir, "count", len(files))
	return files, nil
}

// Group is the chronologically ordered file set of one terminal.
type Group struct {
	TerminalID string
	Files      []File
}

// GroupByTerminal partitions files by terminal id. Files inside a group are
// sorted by calendar date (ties broken by path) and groups are sorted by
// terminal id, so the result is deterministic.
func GroupByTerminal(files []File) []Group {
	byID := make(map[string][]File)
	for _, f := range files {
		byID[f.TerminalID] = append(byID[f.TerminalID], f)
	}

	groups := make([]Group, 0, len(byID))
	for id, fs := range byID {
		sortFiles(fs)
		groups = append(groups, Group{TerminalID: id, Files: fs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].TerminalID < groups[j].TerminalID })
	return groups
}

func sortFiles(fs []File) {
	sort.SliceStable(fs, func(i, j int) bool {
		if !fs[i].Date.Equal(fs[j].Date) {
			return fs[i].Date.Before(fs[j].Date)
		}
		return fs[i].Path < fs[j].Path
	})
}

// ValidateSingleTerminal returns a *MultiTerminalError if files do not all
// share one terminal id. An empty set is valid.
func ValidateSingleTerminal(files []File) error {
	seen := make(map[string]bool)
	var ids []string
	for _, f := range files {
		if !seen[f.TerminalID] {
			seen[f.TerminalID] = true
			ids = append(ids, f.TerminalID)
		}
	}
	if len(ids) > 1 {
		sort.Strings(ids)
		return &MultiTerminalError{TerminalIDs: ids}
	}
	return nil
}

// Validate checks the group's own single-terminal precondition.
func (g Group) Validate() error {
	if err := ValidateSingleTerminal(g.Files); err != nil {
		return err
	}
	if len(g.Files) > 0 && g.Files[0].TerminalID != g.TerminalID {
		return &MultiTerminalError{TerminalIDs: []string{g.TerminalID, g.Files[0].TerminalID}}
	}
	return nil
}

// LastDate returns the date of the newest file, or the zero time.
func (g Group) LastDate() time.Time {
	if len(g.Files) == 0 {
		return time.Time{}
	}
	return g.Files[len(g.Files)-1].Date
}

// Remediation describes which journal days would widen the scanned range
// when the window is short before and/or after the target.
func (g Group) Remediation(before, after bool) string {
	if len(g.Files) == 0 || (!before && !after) {
		return ""
	}
	first, last := g.Files[0].Date, g.LastDate()
	switch {
	case before && after:
		return fmt.Sprintf("add the journals of terminal %s dated %s and %s",
			g.TerminalID, first.AddDate(0, 0, -1).Format(dateLayout), last.AddDate(0, 0, 1).Format(dateLayout))
	case before:
		return fmt.Sprintf("add the journal of terminal %s dated %s",
			g.TerminalID, first.AddDate(0, 0, -1).Format(dateLayout))
	default:
		return fmt.Sprintf("add the journal of terminal %s dated %s",
			g.TerminalID, last.AddDate(0, 0, 1).Format(dateLayout))
	}
}
