package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/booru-curator/internal/config"
	"github.com/kozaktomas/booru-curator/internal/curator"
	"github.com/kozaktomas/booru-curator/internal/detect"
	"github.com/kozaktomas/booru-curator/internal/output"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Select, process and materialize matching images",
	Long: `Curate scans the metadata table, selects every record matching the
filter, and materializes it into the save directory: images already present
are skipped, images available in the link directory are symlinked, and the
rest are cropped (in face mode), resized to a square and written as JPEG.
Re-running with the same save directory never redoes finished work, unless
--overwrite is set.`,
	RunE: runCurate,
}

func init() {
	rootCmd.AddCommand(curateCmd)

	registerDatasetFlags(curateCmd)
	registerFilterFlags(curateCmd)

	curateCmd.Flags().String("save-dir", "out-images", "Directory processed images are saved to")
	curateCmd.Flags().String("link-dir", "", "Directory with already processed images to symlink to if present")
	curateCmd.Flags().Int("img-size", 256, "Side length of the square output images")
	curateCmd.Flags().Bool("faces", false, "Detect faces and crop each image to its best face region")
	curateCmd.Flags().Float64("face-scale", 2.5, "Crop window size as a multiple of the detected face box")
	curateCmd.Flags().Bool("overwrite", false, "Reprocess images that already exist in the save directory")
	curateCmd.Flags().Int("max-examples", curator.NoLimit, "Stop after this many images are added (negative = no limit)")
	curateCmd.Flags().Bool("quiet", false, "Disable the progress bar")
}

func runCurate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	spec, err := filterFromFlags(cmd)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	outputCfg := output.Config{
		SaveDir:   mustGetString(cmd, "save-dir"),
		LinkDir:   mustGetString(cmd, "link-dir"),
		ImgSize:   mustGetInt(cmd, "img-size"),
		Faces:     mustGetBool(cmd, "faces"),
		FaceScale: mustGetFloat64(cmd, "face-scale"),
		Overwrite: mustGetBool(cmd, "overwrite"),
	}
	if err := outputCfg.Validate(); err != nil {
		return fmt.Errorf("invalid output config: %w", err)
	}

	// Set up context with signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	store, datasetDir, err := loadStore(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d records", store.Len())
	if store.SkippedLines > 0 {
		fmt.Printf(" (%d malformed lines skipped)", store.SkippedLines)
	}
	fmt.Println()

	var detector detect.Detector
	if outputCfg.Faces {
		detector = detect.NewHTTPDetector(cfg.Detector.URL, time.Duration(cfg.Detector.TimeoutSeconds)*time.Second)
	}

	c := curator.New(spec, outputCfg, detector)

	start := time.Now()
	summary, err := c.Run(ctx, store.Records, curator.Options{
		DatasetDir:  datasetDir,
		MaxExamples: mustGetInt(cmd, "max-examples"),
		Quiet:       mustGetBool(cmd, "quiet"),
	})
	if err != nil {
		return fmt.Errorf("curation failed: %w", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("\nProcessed %d files. Added %d images. It took %.2f sec\n",
		summary.ProcessedCount, summary.AddedCount, elapsed.Seconds())

	if len(summary.Errors) > 0 {
		fmt.Printf("Errors: %d\n", len(summary.Errors))
		for _, err := range summary.Errors {
			fmt.Printf("  - %v\n", err)
		}
	}

	return nil
}
