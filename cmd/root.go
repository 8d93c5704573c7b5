package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mstanek/rollcall/internal/client"
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "Face recognition attendance for classrooms",
	Long: `Rollcall keeps a gallery of enrolled students and marks attendance by
matching faces from classroom photos against it. Face detection and
embedding extraction run in a separate detector sidecar; everything from
the embedding onward lives in the rollcall server.

Most commands talk to a running server (see "rollcall serve").`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server base URL (defaults to SERVER_URL or http://localhost:8090)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// apiClient builds a client for the configured server.
func apiClient() *client.Client {
	base := serverURL
	if base == "" {
		base = os.Getenv("SERVER_URL")
	}
	return client.New(base)
}
