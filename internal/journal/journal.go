// Package journal locates ATM electronic-journal (EJ) files on disk and
// streams their lines in chronological order.
package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// File is one per-day journal file of a single terminal.
type File struct {
	TerminalID string
	Date       time.Time
	Path       string
}

// DateString returns the journal date in yyyy-mm-dd form.
func (f File) DateString() string {
	return f.Date.Format(dateLayout)
}

const dateLayout = "2006-01-02"

// IOError is returned when a journal file cannot be opened, read or decoded.
// It is fatal to the scan of the group that owns the file.
type IOError struct {
	Op   string // "open", "read", "decode"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("journal %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ErrMultiTerminal is wrapped by MultiTerminalError.
var ErrMultiTerminal = errors.New("journal files belong to more than one terminal")

// MultiTerminalError reports a file set that mixes terminals.
type MultiTerminalError struct {
	TerminalIDs []string
}

func (e *MultiTerminalError) Error() string {
	return ErrMultiTerminal.Error() + ": " + strings.Join(e.TerminalIDs, ", ")
}

func (e *MultiTerminalError) Unwrap() error {
	return ErrMultiTerminal
}
