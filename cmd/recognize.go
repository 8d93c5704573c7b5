package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mstanek/rollcall/internal/web/handlers"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Recognize enrolled students in a photo",
	Long: `Detect all faces in a photo and match them against the gallery of a
running rollcall server.

Faces without a close enough match are counted but not listed.

Examples:
  rollcall recognize classroom.jpg

  # Stricter matching (lower = stricter)
  rollcall recognize classroom.jpg --threshold 0.4

  # Output as JSON
  rollcall recognize classroom.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().Float64("threshold", 0, "Maximum euclidean distance for a match (0 = server default)")
	recognizeCmd.Flags().Bool("json", false, "Output as JSON")
}

// readImageBase64 loads an image file as a base64 payload for the API
func readImageBase64(path string) (string, error) {
	if !isImageFile(path) {
		return "", fmt.Errorf("%s is not a supported image file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func runRecognize(cmd *cobra.Command, args []string) error {
	image, err := readImageBase64(args[0])
	if err != nil {
		return err
	}

	resp, err := apiClient().Recognize(cmd.Context(), handlers.RecognizeRequest{
		Image:     image,
		Threshold: mustGetFloat64(cmd, "threshold"),
	})
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Printf("Faces detected: %d\n", resp.FacesDetected)
	if len(resp.Matches) == 0 {
		fmt.Println("No enrolled students recognized.")
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tNAME\tSIMILARITY\tDISTANCE")
	for _, m := range resp.Matches {
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\n", m.SubjectID, m.Name, m.Similarity, m.Distance)
	}
	return w.Flush()
}
