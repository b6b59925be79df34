package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/ejtrace/internal/casestore"
)

var historyLimit int
var historyTrace string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scans recorded in the case history",
	Args:  cobra.NoArgs,
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

		var cases []casestore.Case
		if historyTrace != "" {
			cases, err = store.ByTrace(cmd.Context(), historyTrace)
		} else {
			cases, err = store.List(cmd.Context(), historyLimit)
		}
		if err != nil {
			return err
		}

		if len(cases) == 0 {
			cmd.Println("no cases recorded")
			return nil
		}
		cmd.Printf("%-20s  %-10s  %-8s  %-18s  %s\n", "CREATED", "TRACE", "TID", "OUTCOME", "REPORT")
		for _, c := range cases {
			out := c.OutputPath
			if out == "" {
				out = "-"
			}
			cmd.Printf("%-20s  %-10s  %-8s  %-18s  %s\n",
				c.CreatedAt.Local().Format("2006-01-02 15:04:05"), c.Trace, c.TerminalID, c.Outcome, out)
			if historyTrace == "" {
				continue
			}
			cmd.Printf("  report %s\n", c.ReportID)
			notes, err := store.Notes(cmd.Context(), c.ReportID)
			if err != nil {
				return err
			}
			for _, n := range notes {
				cmd.Printf("  note [%s] %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Message)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of cases to show (0 for all)")
	historyCmd.Flags().StringVar(&historyTrace, "trace", "", "Only show cases for this trace number, with their notes")
	rootCmd.AddCommand(historyCmd)
}
