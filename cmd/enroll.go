package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mstanek/rollcall/internal/web/handlers"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <student-id> <image|folder>...",
	Short: "Enroll a student from face images",
	Long: `Enroll a student into the gallery of a running rollcall server.

Every image should show the student's face. Images where the detector finds
zero or several faces are skipped. Enrolling an existing student id replaces
the stored embeddings; it never extends them.

Supported formats: jpg, jpeg, png, bmp

Example:
  rollcall enroll s001 --name "Jan Novák" photos/jan/
  rollcall enroll s001 --name "Jan Novák" jan1.jpg jan2.jpg
  rollcall enroll s001 --name "Jan Novák" -r photos/  # recursive search`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Display name of the student (required)")
	enrollCmd.Flags().BoolP("recursive", "r", false, "Search folders recursively")
	_ = enrollCmd.MarkFlagRequired("name")
}

// isImageFile checks if a file has an extension the server can decode
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".bmp":
		return true
	}
	return false
}

// collectImageFiles expands files and folders into a flat list of image paths
func collectImageFiles(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}

		if !info.IsDir() {
			if !isImageFile(path) {
				return nil, fmt.Errorf("%s is not a supported image file", path)
			}
			files = append(files, path)
			continue
		}

		if recursive {
			err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isImageFile(d.Name()) {
					files = append(files, p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", path, err)
			}
		} else {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("cannot read folder %s: %w", path, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && isImageFile(entry.Name()) {
					files = append(files, filepath.Join(path, entry.Name()))
				}
			}
		}
	}
	return files, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	studentID := args[0]
	name := mustGetString(cmd, "name")
	recursive := mustGetBool(cmd, "recursive")

	files, err := collectImageFiles(args[1:], recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no image files found")
	}

	fmt.Printf("Enrolling %s (%s) from %d image(s)\n", name, studentID, len(files))

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Reading images"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	images := make([]string, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		images = append(images, base64.StdEncoding.EncodeToString(data))
		bar.Add(1)
	}
	fmt.Println()

	resp, err := apiClient().Register(cmd.Context(), handlers.RegisterRequest{
		StudentID: studentID,
		Name:      name,
		Images:    images,
	})
	if err != nil {
		return fmt.Errorf("enrollment failed: %w", err)
	}

	fmt.Printf("\nEnrolled %s (%s): %d embedding(s) from %d image(s)\n",
		resp.Name, resp.StudentID, resp.Embeddings, resp.ImagesReceived)
	if skipped := resp.ImagesReceived - resp.Embeddings; skipped > 0 {
		fmt.Printf("%d image(s) skipped: no single clear face found\n", skipped)
	}
	if resp.Replaced {
		fmt.Println("Previous enrollment was replaced.")
	}
	return nil
}
