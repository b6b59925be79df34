package extract

import (
	"regexp"
	"strings"
)

// Lines is an ordered sequence of text lines. *bufio.Scanner and
// *journal.LineSource both satisfy it.
type Lines interface {
	Scan() bool
	Text() string
	Err() error
}

var separatorRe = regexp.MustCompile(`^\*{55}\r*$`)

// IsSeparator reports whether line is a transaction separator.
func IsSeparator(line string) bool {
	return separatorRe.MatchString(line)
}

// Splitter turns a line stream into sessions. It emits one session per
// separator that closes a non-empty span, plus a final incomplete session
// if the stream ends mid-record.
type Splitter struct {
	lines       Lines
	acc         []string
	seenLeading bool
	index       int
	done        bool
}

// NewSplitter returns a Splitter reading from lines.
func NewSplitter(lines Lines) *Splitter {
	return &Splitter{lines: lines}
}

// Next returns the next session. ok is false once the stream is exhausted
// or has failed; check Err to tell the two apart. IsTarget and
// IsSuccessWithdrawal are left unset.
func (s *Splitter) Next() (sess Session, ok bool) {
	if s.done {
		return Session{}, false
	}
	for s.lines.Scan() {
		line := s.lines.Text()
		if !IsSeparator(line) {
			s.acc = append(s.acc, line)
			continue
		}
		if blank(s.acc) {
			// Leading separator, or two separators in a row.
			s.acc = s.acc[:0]
			s.seenLeading = true
			continue
		}
		sess = s.emit(s.seenLeading)
		s.seenLeading = true
		return sess, true
	}

	s.done = true
	if s.lines.Err() != nil {
		return Session{}, false
	}
	if !blank(s.acc) {
		// No closing separator within the supplied input.
		return s.emit(false), true
	}
	return Session{}, false
}

// Err returns the error of the underlying line source, if any.
func (s *Splitter) Err() error {
	return s.lines.Err()
}

func (s *Splitter) emit(complete bool) Session {
	sess := Session{
		Index:    s.index,
		Text:     strings.Join(s.acc, "\n"),
		Complete: complete,
	}
	s.index++
	s.acc = s.acc[:0]
	return sess
}

// blank reports whether the accumulated lines carry no visible text.
func blank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}
