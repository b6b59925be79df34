package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/ejtrace/internal/casestore"
	"github.com/fakeyudi/ejtrace/internal/extract"
	"github.com/fakeyudi/ejtrace/internal/journal"
	"github.com/fakeyudi/ejtrace/internal/prompt"
	"github.com/fakeyudi/ejtrace/internal/report"
)

var scanOpts struct {
	trace         string
	dir           string
	window        int
	format        string
	outDir        string
	terminal      string
	follow        bool
	followTimeout time.Duration
	noHistory     bool
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find a trace number in the journals and save the surrounding window",
	Long: `scan reads every journal file (<terminal id>-<yyyy-m-d>.txt) in a directory,
groups the files by terminal and, for each terminal, extracts the transaction
carrying the trace number together with the successful cash withdrawals
around it. One report is written per terminal where the trace was found.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

// groupScan is the outcome of scanning one terminal's journals.
type groupScan struct {
	group  journal.Group
	result extract.Result
	err    error
}

func runScan(cmd *cobra.Command, args []string) error {
	c := GetConfig()

	trace, dir := scanOpts.trace, scanOpts.dir
	if trace == "" {
		if !isInteractive() {
			return errors.New("--trace is required when stdin is not a terminal")
		}
		p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
		var err error
		if trace, err = p.Trace(); err != nil {
			return fmt.Errorf("reading trace number: %w", err)
		}
		if dir == "" {
			if dir, err = p.Dir("Journal directory"); err != nil {
				return fmt.Errorf("reading journal directory: %w", err)
			}
		}
	}
	if !extract.ValidTrace(trace) {
		return fmt.Errorf("%w: %q", extract.ErrInvalidTrace, trace)
	}
	if dir == "" {
		dir = c.JournalDir
	}

	window := scanOpts.window
	if window < 0 {
		window = c.WindowSize
	}
	format := scanOpts.format
	if format == "" {
		format = c.DefaultFormat
	}
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return err
	}
	outDir := scanOpts.outDir
	if outDir == "" {
		outDir = c.OutputDir
	}

	groups, err := discoverGroups(dir, scanOpts.terminal)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		cmd.Printf("No journal files found in %s\n", dir)
		return nil
	}
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	scans := make([]groupScan, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scans[i] = scanGroup(ctx, dir, g, trace, window)
		}()
	}
	wg.Wait()

	store := openHistory()
	if store != nil {
		defer store.Close()
	}

	var errs []error
	for _, s := range scans {
		if s.err != nil {
			errs = append(errs, fmt.Errorf("terminal %s: %w", s.group.TerminalID, s.err))
			continue
		}
		path, rep, err := writeReport(cmd, s, trace, renderer, outDir)
		if err != nil {
			errs = append(errs, fmt.Errorf("terminal %s: %w", s.group.TerminalID, err))
			continue
		}
		if store != nil {
			recordCase(ctx, store, rep, path)
		}
	}
	return errors.Join(errs...)
}

// discoverGroups lists dir and groups its journals by terminal, keeping only
// terminal when it is set.
func discoverGroups(dir, terminal string) ([]journal.Group, error) {
	d := journal.Discoverer{Logger: logger}
	files, err := d.Discover(dir)
	if err != nil {
		return nil, err
	}
	groups := journal.GroupByTerminal(files)
	if terminal == "" {
		return groups, nil
	}
	for _, g := range groups {
		if g.TerminalID == terminal {
			return []journal.Group{g}, nil
		}
	}
	return nil, fmt.Errorf("no journal files for terminal %s in %s", terminal, dir)
}

// scanGroup scans one terminal's journals. With --follow it keeps waiting
// for newer journals while the window after the target is short.
func scanGroup(ctx context.Context, dir string, g journal.Group, trace string, window int) groupScan {
	l := logger.With("terminal", g.TerminalID)
	l.Debug("scanning", "files", len(g.Files))

	res, err := scanFiles(ctx, g, trace, window)
	if err != nil || !scanOpts.follow || !res.InsufficientAfter() {
		return groupScan{group: g, result: res, err: err}
	}

	fctx := ctx
	if scanOpts.followTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, scanOpts.followTimeout)
		defer cancel()
	}
	for res.InsufficientAfter() {
		l.Info("waiting for more journal data", "missing_after", res.AfterDeficit)
		last := g.Files[len(g.Files)-1]
		f, werr := journal.WaitForJournal(fctx, dir, g.TerminalID, last)
		if werr != nil {
			if !errors.Is(werr, context.DeadlineExceeded) && !errors.Is(werr, context.Canceled) {
				l.Warn("follow stopped", "err", werr)
			}
			break
		}
		l.Debug("journal changed", "file", f.Path)

		next, err := refreshGroup(dir, g.TerminalID)
		if err != nil {
			return groupScan{group: g, result: res, err: err}
		}
		nres, err := scanFiles(ctx, next, trace, window)
		if err != nil {
			return groupScan{group: next, err: err}
		}
		g, res = next, nres
	}
	return groupScan{group: g, result: res}
}

func refreshGroup(dir, terminal string) (journal.Group, error) {
	groups, err := discoverGroups(dir, terminal)
	if err != nil {
		return journal.Group{}, err
	}
	return groups[0], groups[0].Validate()
}

func scanFiles(ctx context.Context, g journal.Group, trace string, window int) (extract.Result, error) {
	src := journal.NewLineSource(g.Files)
	defer src.Close()
	return extract.ScanForTrace(ctx, src, trace, window)
}

// writeReport prints the outcome for one terminal and, when the trace was
// found, writes the sealed report. path is empty for NotFound.
func writeReport(cmd *cobra.Command, s groupScan, trace string, renderer report.Renderer, outDir string) (string, *report.Report, error) {
	rep := report.FromResult(s.group, s.result, report.Options{Trace: trace, Investigator: investigator()})
	if err := rep.Seal(); err != nil {
		return "", nil, err
	}

	if !s.result.Found() {
		cmd.Printf("Transaction with trace %s not found for TID %s\n", trace, s.group.TerminalID)
		return "", rep, nil
	}
	cmd.Printf("Transaction with trace #%s found for TID %s\n", trace, s.group.TerminalID)

	data, err := renderer.Render(rep)
	if err != nil {
		return "", nil, fmt.Errorf("render report: %w", err)
	}
	path, err := report.WriteFile(outDir, report.FileName(trace, s.group.TerminalID, renderer.Extension()), data)
	if err != nil {
		return "", nil, err
	}
	cmd.Printf("Output saved to %s\n", path)

	r := s.result
	if r.InsufficientBefore() {
		cmd.Printf("  warning: %d of %d withdrawals found before the target%s\n",
			r.SuccessesBefore, r.WindowSize, openNote(r.BeforeOpen, "first"))
	}
	if r.InsufficientAfter() {
		cmd.Printf("  warning: %d of %d withdrawals found after the target%s\n",
			r.SuccessesAfter, r.WindowSize, openNote(r.AfterOpen, "last"))
	}
	if rep.Hint != "" {
		cmd.Printf("  hint: %s\n", rep.Hint)
	}
	return path, rep, nil
}

func openNote(open bool, which string) string {
	if !open {
		return ""
	}
	return fmt.Sprintf(" (%s session is cut off)", which)
}

// openHistory opens the case database, or returns nil when history is
// disabled or unavailable.
func openHistory() *casestore.Store {
	if scanOpts.noHistory {
		return nil
	}
	path, err := casestore.DefaultPath()
	if err != nil {
		logger.Warn("case history unavailable", "err", err)
		return nil
	}
	store, err := casestore.Open(path)
	if err != nil {
		logger.Warn("case history unavailable", "err", err)
		return nil
	}
	return store
}

func recordCase(ctx context.Context, store *casestore.Store, rep *report.Report, path string) {
	err := store.Record(ctx, casestore.Case{
		ReportID:     rep.ID,
		Trace:        rep.Trace,
		TerminalID:   rep.TerminalID,
		Outcome:      rep.Outcome,
		OutputPath:   path,
		Digest:       rep.Digest,
		Investigator: rep.Investigator,
		CreatedAt:    rep.CreatedAt,
	})
	if err != nil {
		logger.Warn("could not record case", "err", err)
	}
}

func init() {
	f := scanCmd.Flags()
	f.StringVarP(&scanOpts.trace, "trace", "t", "", "Trace number to look for (prompted when omitted on a terminal)")
	f.StringVarP(&scanOpts.dir, "dir", "d", "", "Directory containing the journal files (default from config)")
	f.IntVarP(&scanOpts.window, "window", "n", -1, "Successful withdrawals to keep on each side of the target (default from config)")
	f.StringVarP(&scanOpts.format, "format", "f", "", "Report format: text, markdown, json or yaml (overrides config)")
	f.StringVarP(&scanOpts.outDir, "out", "o", "", "Directory to write reports to (overrides config)")
	f.StringVar(&scanOpts.terminal, "terminal", "", "Only scan the journals of this terminal id")
	f.BoolVar(&scanOpts.follow, "follow", false, "Wait for newer journals while the window after the target is short")
	f.DurationVar(&scanOpts.followTimeout, "follow-timeout", 0, "Give up following after this long (0 waits until interrupted)")
	f.BoolVar(&scanOpts.noHistory, "no-history", false, "Do not record the scan in the case history")
	rootCmd.AddCommand(scanCmd)
}
