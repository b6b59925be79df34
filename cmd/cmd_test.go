package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const (
	sep = "*******************************************************"
	tid = "00001234"
)

// executeCommand runs root with args and returns everything written to its
// output and error streams.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	return executeCommandWithInput(root, "", args...)
}

func executeCommandWithInput(root *cobra.Command, input string, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// resetState restores flag variables between command runs; cobra keeps
// parsed values in the bound variables.
func resetState() {
	scanOpts.trace = ""
	scanOpts.dir = ""
	scanOpts.window = -1
	scanOpts.format = ""
	scanOpts.outDir = ""
	scanOpts.terminal = ""
	scanOpts.follow = false
	scanOpts.followTimeout = 0
	scanOpts.noHistory = false
	plainOutput = false
	historyLimit = 20
	historyTrace = ""
	verbose = false
}

// testEnv isolates HOME, XDG_DATA_HOME and the working directory, and
// returns a journal directory and an output directory.
func testEnv(t *testing.T) (journals, out string) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Chdir(root)

	resetState()
	prev := isInteractive
	isInteractive = func() bool { return false }
	t.Cleanup(func() {
		isInteractive = prev
		resetState()
	})

	journals = filepath.Join(root, "ej")
	if err := os.MkdirAll(journals, 0o755); err != nil {
		t.Fatal(err)
	}
	return journals, filepath.Join(root, "out")
}

func cwd(trace string) string {
	return " TRACE     : " + trace + "\n RESP CODE : 00\n TRN TYPE  : CASH WITHDRAWAL\n AMOUNT    : 100.00"
}

func inquiry(trace string) string {
	return " TRACE     : " + trace + "\n RESP CODE : 00\n TRN TYPE  : BALANCE INQUIRY"
}

// ej builds journal text with a separator before, between and after every
// record.
func ej(records ...string) string {
	var sb strings.Builder
	sb.WriteString(sep + "\n")
	for _, r := range records {
		sb.WriteString(r + "\n" + sep + "\n")
	}
	return sb.String()
}

func writeJournal(t *testing.T, dir, name string, records ...string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(ej(records...)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}
