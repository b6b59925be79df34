package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/ejtrace/internal/casestore"
)

var noteCmd = &cobra.Command{
	Use:   "note <report-id> <message>",
	Short: "Attach a note to a recorded case",
	Long:  "note attaches a remark to the case of a report. A unique prefix of the report id is enough.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := casestore.DefaultPath()
		if err != nil {
			return err
		}
		store, err := casestore.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.AddNote(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Printf("Note added to %s.\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(noteCmd)
}
