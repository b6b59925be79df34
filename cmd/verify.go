package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/ejtrace/internal/report"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Check a saved report against the schema and its digest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		r, data, err := loadReport(path)
		if err != nil {
			return err
		}

		// Markdown and YAML reports are checked through their JSON form.
		doc := data
		if strings.ToLower(filepath.Ext(path)) != ".json" {
			if doc, err = json.Marshal(r); err != nil {
				return err
			}
		}
		if err := report.ValidateJSON(doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := r.VerifyDigest(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		cmd.Printf("OK %s\n", path)
		cmd.Printf("  report %s, trace %s, terminal %s, %s\n", r.ID, r.Trace, r.TerminalID, r.Outcome)
		cmd.Printf("  sha256 %s\n", r.Digest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
