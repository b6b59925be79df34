package journal

import (
	"bufio"
	"errors"
	"os"
	"unicode/utf8"
)

// maxLineSize bounds a single journal line. Longer lines fail the scan.
const maxLineSize = 1 << 20

var errInvalidUTF8 = errors.New("line is not valid UTF-8")

// LineSource concatenates the lines of files end to end. Files are opened
// lazily, one at a time, and each is exhausted before the next is opened.
// A LineSource cannot be rewound; create a new one to rescan.
//
// The API mirrors bufio.Scanner: call Scan until it returns false, then
// check Err.
type LineSource struct {
	files   []File
	next    int
	cur     *os.File
	curPath string
	sc      *bufio.Scanner
	line    string
	err     error
}

// NewLineSource returns a LineSource over files in the given order.
func NewLineSource(files []File) *LineSource {
	return &LineSource{files: files}
}

// Scan advances to the next line, opening the next file when the current
// one is exhausted. Trailing carriage returns are stripped.
func (s *LineSource) Scan() bool {
	if s.err != nil {
		return false
	}
	for {
		if s.sc == nil {
			if s.next >= len(s.files) {
				return false
			}
			if err := s.open(s.files[s.next].Path); err != nil {
				s.err = err
				return false
			}
			s.next++
		}

		if s.sc.Scan() {
			b := s.sc.Bytes()
			if !utf8.Valid(b) {
				s.fail("decode", errInvalidUTF8)
				return false
			}
			s.line = string(b)
			return true
		}
		if err := s.sc.Err(); err != nil {
			s.fail("read", err)
			return false
		}
		if err := s.closeCurrent(); err != nil {
			s.err = &IOError{Op: "read", Path: s.curPath, Err: err}
			return false
		}
	}
}

// Text returns the most recent line read by Scan.
func (s *LineSource) Text() string {
	return s.line
}

// Err returns the first *IOError encountered, or nil at clean exhaustion.
func (s *LineSource) Err() error {
	return s.err
}

// Close releases the open file, if any. It is safe to call more than once.
func (s *LineSource) Close() error {
	return s.closeCurrent()
}

func (s *LineSource) open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	s.cur, s.curPath, s.sc = f, path, sc
	return nil
}

func (s *LineSource) fail(op string, err error) {
	s.err = &IOError{Op: op, Path: s.curPath, Err: err}
	_ = s.closeCurrent()
}

func (s *LineSource) closeCurrent() error {
	if s.cur == nil {
		return nil
	}
	err := s.cur.Close()
	s.cur, s.sc = nil, nil
	return err
}
