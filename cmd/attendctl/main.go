package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendctl",
	Short: "Manage students and attendance records",
	Long: `attendctl works on the same database and dataset directory as the
attendance server, configured through the same environment variables
(DATABASE_DRIVER, DATABASE_PATH, DATABASE_URL, DATASET_DIR).`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
