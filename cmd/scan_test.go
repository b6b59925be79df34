package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/ejtrace/internal/casestore"
	"github.com/fakeyudi/ejtrace/internal/extract"
	"github.com/fakeyudi/ejtrace/internal/profile"
	"github.com/fakeyudi/ejtrace/internal/report"
)

func TestScanWritesJournalWindow(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, tid+"-2024-3-1.txt", cwd("000001"), cwd("000002"), inquiry("000003"), cwd("000004"), cwd("004512"))
	writeJournal(t, dir, tid+"-2024-3-2.txt", cwd("000005"), cwd("000006"), cwd("000007"), cwd("000008"))

	output, err := executeCommand(rootCmd, "scan", "--trace", "004512", "--dir", dir, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, output, "Transaction with trace #004512 found for TID 00001234")
	assert.NotContains(t, output, "warning:")

	path := filepath.Join(out, "trace-004512-00001234.txt")
	assert.Contains(t, output, "Output saved to "+path)
	want := ej(cwd("000001"), cwd("000002"), inquiry("000003"), cwd("000004"), cwd("004512"),
		cwd("000005"), cwd("000006"), cwd("000007"))
	assert.Equal(t, want, readFile(t, path))
}

func TestScanNotFound(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, tid+"-2024-3-1.txt", cwd("000001"), cwd("045120"))

	output, err := executeCommand(rootCmd, "scan", "--trace", "4512", "--dir", dir, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, output, "Transaction with trace 4512 not found for TID 00001234")

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no report is written for a missing trace")
}

func TestScanGroupsTerminalsIndependently(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, "00001234-2024-3-1.txt", cwd("000001"), cwd("000002"))
	writeJournal(t, dir, "00005678-2024-3-1.txt", cwd("000001"), cwd("004512"), cwd("000002"))

	output, err := executeCommand(rootCmd, "scan", "-t", "004512", "-d", dir, "-o", out, "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, output, "not found for TID 00001234")
	assert.Contains(t, output, "found for TID 00005678")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "trace-004512-00005678.txt", entries[0].Name())
	assert.Equal(t, ej(cwd("000001"), cwd("004512"), cwd("000002")), readFile(t, filepath.Join(out, entries[0].Name())))
}

func TestScanTerminalFilter(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, "00001234-2024-3-1.txt", cwd("004512"))
	writeJournal(t, dir, "00005678-2024-3-1.txt", cwd("004512"))

	output, err := executeCommand(rootCmd, "scan", "-t", "004512", "-d", dir, "-o", out, "--terminal", "00005678")
	require.NoError(t, err)
	assert.NotContains(t, output, "00001234")

	_, err = executeCommand(rootCmd, "scan", "-t", "004512", "-d", dir, "-o", out, "--terminal", "99999999")
	assert.ErrorContains(t, err, "no journal files for terminal 99999999")
}

func TestScanInsufficientContext(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, tid+"-2024-3-1.txt", cwd("000001"), cwd("004512"), cwd("000002"))

	output, err := executeCommand(rootCmd, "scan", "--trace", "004512", "--dir", dir, "--out", out)
	require.NoError(t, err, "insufficient context is not an error")
	assert.Contains(t, output, "warning: 1 of 3 withdrawals found before the target")
	assert.Contains(t, output, "warning: 1 of 3 withdrawals found after the target")
	assert.Contains(t, output, "hint: add the journals of terminal 00001234 dated 2024-02-29 and 2024-03-02")
}

func TestScanRefusesToOverwrite(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, tid+"-2024-3-1.txt", cwd("004512"))

	_, err := executeCommand(rootCmd, "scan", "--trace", "004512", "--dir", dir, "--out", out, "--no-history")
	require.NoError(t, err)

	_, err = executeCommand(rootCmd, "scan", "--trace", "004512", "--dir", dir, "--out", out, "--no-history")
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrOutputExists), "got %v", err)
}

func TestScanArgumentErrors(t *testing.T) {
	dir, _ := testEnv(t)

	_, err := executeCommand(rootCmd, "scan", "--dir", dir)
	assert.ErrorContains(t, err, "--trace is required")

	_, err = executeCommand(rootCmd, "scan", "--trace", "12a4", "--dir", dir)
	assert.True(t, errors.Is(err, extract.ErrInvalidTrace), "got %v", err)

	_, err = executeCommand(rootCmd, "scan", "--trace", "1", "--dir", dir, "--format", "pdf")
	assert.ErrorContains(t, err, "unknown report format")

	resetState()
	_, err = executeCommand(rootCmd, "scan", "--trace", "1", "--dir", filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestScanPromptsOnTerminal(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, tid+"-2024-3-1.txt", cwd("000001"), cwd("004512"))
	require.NoError(t, profile.Save(&profile.Profile{Name: "Dana", OutputDir: out, DefaultFormat: "json"}))
	isInteractive = func() bool { return true }

	output, err := executeCommandWithInput(rootCmd, "\n004512\n"+dir+"\n", "scan")
	require.NoError(t, err)
	assert.Contains(t, output, "A trace number is required.")
	assert.Contains(t, output, "found for TID 00001234")

	r, _, err := loadReport(filepath.Join(out, "trace-004512-00001234.json"))
	require.NoError(t, err)
	assert.Equal(t, "Dana", r.Investigator)
	assert.Equal(t, "found_insufficient", r.Outcome)
}

func TestScanUsesProjectConfig(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, tid+"-2024-3-1.txt", cwd("000001"), cwd("000002"), cwd("004512"))
	cfgJSON := `{"journal_dir": "` + dir + `", "output_dir": "` + out + `", "default_format": "yaml", "window_size": 1}`
	require.NoError(t, os.WriteFile(".ejtraceconfig", []byte(cfgJSON), 0o644))

	_, err := executeCommand(rootCmd, "scan", "--trace", "004512")
	require.NoError(t, err)

	r, _, err := loadReport(filepath.Join(out, "trace-004512-00001234.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1, r.WindowSize)
	require.Len(t, r.Sessions, 2, "window of one keeps a single withdrawal before the target")
}

func TestScanFollowPicksUpNextJournal(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, tid+"-2024-3-1.txt", cwd("000001"), cwd("000002"), cwd("004512"), cwd("000003"))

	go func() {
		time.Sleep(100 * time.Millisecond)
		tmp := filepath.Join(dir, "incoming.tmp")
		if err := os.WriteFile(tmp, []byte(ej(cwd("000004"), cwd("000005"))), 0o644); err != nil {
			return
		}
		_ = os.Rename(tmp, filepath.Join(dir, tid+"-2024-3-2.txt"))
	}()

	output, err := executeCommand(rootCmd, "scan", "-t", "004512", "-d", dir, "-o", out, "-n", "2",
		"--follow", "--follow-timeout", "10s")
	require.NoError(t, err)
	assert.NotContains(t, output, "warning:")

	got := readFile(t, filepath.Join(out, "trace-004512-00001234.txt"))
	assert.Equal(t, ej(cwd("000001"), cwd("000002"), cwd("004512"), cwd("000003"), cwd("000004")), got)
}

func TestScanFollowGivesUpAfterTimeout(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, tid+"-2024-3-1.txt", cwd("000001"), cwd("004512"))

	start := time.Now()
	output, err := executeCommand(rootCmd, "scan", "-t", "004512", "-d", dir, "-o", out, "-n", "1",
		"--follow", "--follow-timeout", "200ms")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.Contains(t, output, "warning: 0 of 1 withdrawals found after the target")
}

func TestScanRecordsHistory(t *testing.T) {
	dir, out := testEnv(t)
	writeJournal(t, dir, tid+"-2024-3-1.txt", cwd("004512"))
	writeJournal(t, dir, "00005678-2024-3-1.txt", cwd("000001"))

	_, err := executeCommand(rootCmd, "scan", "--trace", "004512", "--dir", dir, "--out", out)
	require.NoError(t, err)

	path, err := casestore.DefaultPath()
	require.NoError(t, err)
	store, err := casestore.Open(path)
	require.NoError(t, err)
	cases, err := store.ByTrace(context.Background(), "004512")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, cases, 2, "one case per terminal group")

	var found casestore.Case
	for _, c := range cases {
		if c.TerminalID == tid {
			found = c
		}
	}
	assert.Equal(t, "found_insufficient", found.Outcome)
	assert.Equal(t, filepath.Join(out, "trace-004512-00001234.txt"), found.OutputPath)
	assert.Len(t, found.Digest, 64)

	output, err := executeCommand(rootCmd, "history")
	require.NoError(t, err)
	assert.Contains(t, output, "found_insufficient")
	assert.Contains(t, output, "not_found")

	output, err = executeCommand(rootCmd, "note", found.ReportID[:8], "customer disputes 100.00")
	require.NoError(t, err)
	assert.Contains(t, output, "Note added to "+found.ReportID)

	resetState()
	output, err = executeCommand(rootCmd, "history", "--trace", "004512")
	require.NoError(t, err)
	assert.Contains(t, output, "customer disputes 100.00")
	assert.True(t, strings.Contains(output, "report "+found.ReportID))
}

func TestHistoryEmpty(t *testing.T) {
	testEnv(t)
	output, err := executeCommand(rootCmd, "history")
	require.NoError(t, err)
	assert.Contains(t, output, "no cases recorded")
}
