package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/booru-curator/internal/metadata"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print metadata of matching records",
	Long: `Prints the metadata of records matching the filter, including the
source image path each record resolves to. Bounded by --limit.`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	registerDatasetFlags(previewCmd)
	registerFilterFlags(previewCmd)

	previewCmd.Flags().Int("limit", 10, "Maximum number of records to print (0 = no limit)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	spec, err := filterFromFlags(cmd)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	store, datasetDir, err := loadStore(cmd)
	if err != nil {
		return err
	}

	limit := mustGetInt(cmd, "limit")

	printed := 0
	for _, record := range store.Records {
		if limit > 0 && printed >= limit {
			break
		}
		if !spec.Matches(record) {
			continue
		}

		tags := make([]string, 0, len(record.Tags))
		for tag := range record.Tags {
			tags = append(tags, tag)
		}
		sort.Strings(tags)

		fmt.Printf("%s:\n", record.ID)
		fmt.Printf("  Rating: %s\n", record.Rating)
		fmt.Printf("  Score: %d\n", record.Score)
		fmt.Printf("  Size: %dx%d\n", record.Width, record.Height)
		fmt.Printf("  Tags: %s\n", strings.Join(tags, ", "))
		fmt.Printf("  Source: %s\n", metadata.SourcePath(datasetDir, record))
		printed++
	}

	fmt.Printf("\nShown %d matching records\n", printed)

	return nil
}
