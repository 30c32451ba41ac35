package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show how many records match the filter",
	Long: `Counts the metadata records matching the filter without touching any
image files. Useful for sizing a subset before running curate.`,
	RunE: runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)

	registerDatasetFlags(countCmd)
	registerFilterFlags(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	spec, err := filterFromFlags(cmd)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	store, _, err := loadStore(cmd)
	if err != nil {
		return err
	}

	matched := 0
	for _, record := range store.Records {
		if spec.Matches(record) {
			matched++
		}
	}

	fmt.Printf("Records: %d\n", store.Len())
	fmt.Printf("Matching: %d\n", matched)

	return nil
}
