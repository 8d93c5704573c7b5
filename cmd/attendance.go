package cmd

import (
	"fmt"
	"strings"

	"github.com/mstanek/rollcall/internal/web/handlers"
	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance <course>",
	Short: "Take attendance for a course from a classroom photo",
	Long: `Recognize every enrolled student in a classroom photo and save an
attendance record for the course on a running rollcall server.

A record is saved even when nobody was recognized, so an empty class still
shows up in the records.

Examples:
  rollcall attendance math101 --image classroom.jpg
  rollcall attendance math101 --image classroom.jpg --threshold 0.5

  # Show who would be marked present without saving
  rollcall attendance math101 --image classroom.jpg --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runAttendance,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)

	attendanceCmd.Flags().String("image", "", "Classroom photo to recognize (required)")
	attendanceCmd.Flags().Float64("threshold", 0, "Maximum euclidean distance for a match (0 = server default)")
	attendanceCmd.Flags().Bool("dry-run", false, "Recognize but do not save a record")
	_ = attendanceCmd.MarkFlagRequired("image")
}

func runAttendance(cmd *cobra.Command, args []string) error {
	course := args[0]

	image, err := readImageBase64(mustGetString(cmd, "image"))
	if err != nil {
		return err
	}

	api := apiClient()
	resp, err := api.Recognize(cmd.Context(), handlers.RecognizeRequest{
		Image:     image,
		Threshold: mustGetFloat64(cmd, "threshold"),
	})
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	// Several faces can match the same student; mark each one once.
	var present []string
	var names []string
	seen := make(map[string]bool)
	for _, m := range resp.Matches {
		if seen[m.SubjectID] {
			continue
		}
		seen[m.SubjectID] = true
		present = append(present, m.SubjectID)
		names = append(names, m.Name)
	}

	fmt.Printf("Faces detected: %d, students recognized: %d\n", resp.FacesDetected, len(present))
	if len(names) > 0 {
		fmt.Printf("Present: %s\n", strings.Join(names, ", "))
	}

	if mustGetBool(cmd, "dry-run") {
		fmt.Println("Dry run: no record saved.")
		return nil
	}

	record, err := api.SaveAttendance(cmd.Context(), course, present)
	if err != nil {
		return fmt.Errorf("saving attendance failed: %w", err)
	}

	fmt.Printf("\nSaved record %s (%s): %d student(s) present\n", record.ID, record.Date, len(record.Students))
	return nil
}
