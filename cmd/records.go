package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List attendance records",
	Long: `List the attendance records held by a running rollcall server, oldest
first.

Example:
  rollcall records
  rollcall records --course math101`,
	RunE: runRecords,
}

func init() {
	rootCmd.AddCommand(recordsCmd)

	recordsCmd.Flags().String("course", "", "Filter by course")
}

func runRecords(cmd *cobra.Command, args []string) error {
	resp, err := apiClient().Attendance(cmd.Context(), mustGetString(cmd, "course"))
	if err != nil {
		return fmt.Errorf("listing records failed: %w", err)
	}

	if resp.Count == 0 {
		fmt.Println("No attendance records.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECORD\tDATE\tCOURSE\tPRESENT\tSTUDENTS")
	for _, r := range resp.Records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Date, r.Course, len(r.Students), strings.Join(r.Students, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d record(s)\n", resp.Count)
	return nil
}
