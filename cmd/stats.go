package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server statistics",
	Long:  `Show gallery and attendance counters of a running rollcall server.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	stats, err := apiClient().Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching stats failed: %w", err)
	}

	fmt.Printf("Students enrolled:   %d\n", stats.Subjects)
	fmt.Printf("Stored embeddings:   %d\n", stats.Embeddings)
	fmt.Printf("Attendance records:  %d\n", stats.AttendanceRecords)
	fmt.Printf("Model:               %s (%d dimensions)\n", stats.Model, stats.Dimension)
	fmt.Printf("Match threshold:     %.2f\n", stats.Threshold)
	if stats.HNSW {
		fmt.Println("HNSW index:          enabled")
	}
	return nil
}
