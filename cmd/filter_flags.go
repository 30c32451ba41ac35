package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/booru-curator/internal/filter"
	"github.com/kozaktomas/booru-curator/internal/metadata"
)

// registerDatasetFlags adds the flags locating the dataset on disk. Shared
// by every subcommand that reads metadata.
func registerDatasetFlags(c *cobra.Command) {
	c.Flags().StringP("dataset-dir", "d", "danbooru2018", "Danbooru dataset directory")
	c.Flags().String("metadata-dir", "metadata", "Metadata path below the dataset directory; all files there are loaded")
}

// registerFilterFlags adds the record selection flags shared by curate,
// count and preview.
func registerFilterFlags(c *cobra.Command) {
	c.Flags().StringP("required-tags", "r", "", "Comma-separated tags that must all be present")
	c.Flags().StringP("banned-tags", "b", "", "Comma-separated tags that must not be present")
	c.Flags().StringP("atleast-tags", "a", "", "Comma-separated tags counted against --atleast-num")
	c.Flags().IntP("atleast-num", "n", 0, "Minimum number of --atleast-tags that must be present")
	c.Flags().String("ratings", "", `Allowed ratings, e.g. "s,q,e" (safe, questionable, explicit); empty allows all`)
	c.Flags().Int("min-score", 0, "Only include images with at least this score")
	c.Flags().Int("max-score", 0, "Only include images with at most this score")
	c.Flags().String("filter-file", "", "YAML filter file; replaces the filter flags when set")
}

// filterFromFlags builds the filter spec from the command line. A filter
// file, when given, replaces the individual flags entirely.
func filterFromFlags(cmd *cobra.Command) (filter.Spec, error) {
	if path := mustGetString(cmd, "filter-file"); path != "" {
		return filter.LoadFile(path)
	}

	spec := filter.Spec{
		RequiredTags: filter.ParseTagSet(mustGetString(cmd, "required-tags")),
		BannedTags:   filter.ParseTagSet(mustGetString(cmd, "banned-tags")),
		AtLeastTags:  filter.ParseTagSet(mustGetString(cmd, "atleast-tags")),
		AtLeastNum:   mustGetInt(cmd, "atleast-num"),
		Ratings:      filter.ParseTagSet(mustGetString(cmd, "ratings")),
	}

	// Score bounds are unbounded unless the flag was given: a default of
	// zero would silently exclude negatively scored images.
	if cmd.Flags().Changed("min-score") {
		v := mustGetInt(cmd, "min-score")
		spec.MinScore = &v
	}
	if cmd.Flags().Changed("max-score") {
		v := mustGetInt(cmd, "max-score")
		spec.MaxScore = &v
	}

	if err := spec.Validate(); err != nil {
		return filter.Spec{}, err
	}
	return spec, nil
}

// loadStore loads the metadata table addressed by the dataset flags.
func loadStore(cmd *cobra.Command) (*metadata.Store, string, error) {
	datasetDir := mustGetString(cmd, "dataset-dir")
	metadataDir := filepath.Join(datasetDir, mustGetString(cmd, "metadata-dir"))

	store, err := metadata.Load(metadataDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load metadata: %w", err)
	}
	return store, datasetDir, nil
}
