package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/ejtrace/internal/report"
	"github.com/fakeyudi/ejtrace/internal/tui"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "View a saved report (markdown, json or yaml)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := loadReport(args[0])
		if err != nil {
			return err
		}
		if plainOutput || !isInteractive() {
			printReport(cmd.OutOrStdout(), r)
			return nil
		}
		return tui.Run(r, args[0])
	},
}

// loadReport reads and parses the report at path, returning the raw bytes
// as well.
func loadReport(path string) (*report.Report, []byte, error) {
	parser, err := report.ParserFor(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, nil, err
	}
	r, err := parser.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return r, data, nil
}

// printReport writes a plain-text rendering of r to w.
func printReport(w io.Writer, r *report.Report) {
	fmt.Fprintln(w, "## Summary")
	fmt.Fprintf(w, "  Trace:     %s\n", r.Trace)
	fmt.Fprintf(w, "  Terminal:  %s\n", r.TerminalID)
	fmt.Fprintf(w, "  Outcome:   %s\n", r.Outcome)
	fmt.Fprintf(w, "  Window:    %d\n", r.WindowSize)
	fmt.Fprintf(w, "  Before:    %d (missing %d)\n", r.Counts.SuccessesBefore, r.Counts.BeforeDeficit)
	fmt.Fprintf(w, "  After:     %d (missing %d)\n", r.Counts.SuccessesAfter, r.Counts.AfterDeficit)
	if r.Investigator != "" {
		fmt.Fprintf(w, "  By:        %s\n", r.Investigator)
	}
	fmt.Fprintf(w, "  Created:   %s\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if r.Hint != "" {
		fmt.Fprintf(w, "  Hint:      %s\n", r.Hint)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Window")
	if len(r.Sessions) == 0 {
		fmt.Fprintln(w, "  (trace not found)")
	}
	for _, s := range r.Sessions {
		var tags []string
		if s.Target {
			tags = append(tags, "TARGET")
		}
		if s.SuccessWithdrawal {
			tags = append(tags, "CWD")
		}
		if !s.Complete {
			tags = append(tags, "OPEN")
		}
		fmt.Fprintf(w, "  --- session %d %s\n", s.Index, strings.Join(tags, " "))
		fmt.Fprintln(w, indent(s.Text, "  "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Sources")
	if len(r.Sources) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, src := range r.Sources {
		fmt.Fprintf(w, "  %s  %s\n", src.Date, src.Path)
	}
	fmt.Fprintln(w)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
