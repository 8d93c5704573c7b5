package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List enrolled students",
	Long: `List the students enrolled on a running rollcall server, in enrollment
order.

Example:
  rollcall students
  rollcall students -q novak  # name filter, case and diacritics insensitive`,
	RunE: runStudents,
}

func init() {
	rootCmd.AddCommand(studentsCmd)

	studentsCmd.Flags().StringP("query", "q", "", "Filter by name")
}

func runStudents(cmd *cobra.Command, args []string) error {
	resp, err := apiClient().Students(cmd.Context(), mustGetString(cmd, "query"))
	if err != nil {
		return fmt.Errorf("listing students failed: %w", err)
	}

	if resp.Count == 0 {
		fmt.Println("No students enrolled.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tNAME\tEMBEDDINGS")
	for _, s := range resp.Students {
		fmt.Fprintf(w, "%s\t%s\t%d\n", s.ID, s.Name, s.Embeddings)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d student(s)\n", resp.Count)
	return nil
}
