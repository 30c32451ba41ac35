package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "booru-curator",
	Short: "A CLI tool for curating subsets of danbooru image datasets",
	Long: `Booru Curator scans danbooru metadata shards, selects images matching
tag, rating and score filters, and materializes a training-ready subset:
each selected image is optionally cropped to its detected face region,
resized to a square, and written or symlinked into the save directory.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
