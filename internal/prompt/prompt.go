// Package prompt asks the operator for the inputs of a scan when they were
// not given on the command line.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fakeyudi/ejtrace/internal/extract"
)

// Prompter reads answers from In and writes questions to Out.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	r *bufio.Reader
}

// New returns a Prompter over in and out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{In: in, Out: out}
}

func (p *Prompter) readLine() (string, error) {
	if p.r == nil {
		p.r = bufio.NewReader(p.In)
	}
	line, err := p.r.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Trace asks for a trace number until a non-empty string of digits is
// entered.
func (p *Prompter) Trace() (string, error) {
	for {
		fmt.Fprint(p.Out, "Trace number: ")
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if extract.ValidTrace(line) {
			return line, nil
		}
		if line == "" {
			fmt.Fprintln(p.Out, "A trace number is required.")
		} else {
			fmt.Fprintf(p.Out, "%q is not a trace number; use digits only.\n", line)
		}
	}
}

// Dir asks for a directory with msg. An empty answer selects the current
// working directory. Paths that do not name an existing directory are
// re-asked.
func (p *Prompter) Dir(msg string) (string, error) {
	for {
		fmt.Fprintf(p.Out, "%s (empty for current directory): ", msg)
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			return os.Getwd()
		}
		info, err := os.Stat(line)
		if err == nil && info.IsDir() {
			return line, nil
		}
		fmt.Fprintf(p.Out, "%s is not a directory.\n", line)
	}
}
