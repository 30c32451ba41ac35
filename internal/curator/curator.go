// Package curator runs the selection-and-materialization pipeline: scan the
// metadata table, evaluate the filter predicate, resolve what work each
// match still needs, and materialize outputs as resized copies or symlinks.
package curator

import (
	"archive/zip"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"

	"github.com/kozaktomas/booru-curator/internal/detect"
	"github.com/kozaktomas/booru-curator/internal/facecrop"
	"github.com/kozaktomas/booru-curator/internal/filter"
	"github.com/kozaktomas/booru-curator/internal/metadata"
	"github.com/kozaktomas/booru-curator/internal/output"
)

type Curator struct {
	filter   filter.Spec
	output   output.Config
	detector detect.Detector
}

// ProgressInfo is passed to the optional progress callback after each
// scanned record.
type ProgressInfo struct {
	Current  int
	Total    int
	Added    int
	RecordID string
}

// NoLimit disables the added-count cap.
const NoLimit = -1

// Options control a single pipeline run.
type Options struct {
	// DatasetDir is the dataset root containing the original/ image tree.
	DatasetDir string
	// MaxExamples caps the number of added outputs; the scan stops as soon
	// as the cap is reached, so a cap of zero adds nothing. Negative means
	// no cap.
	MaxExamples int
	// Quiet disables the progress bar.
	Quiet bool
	// OnProgress is an optional per-record callback.
	OnProgress func(ProgressInfo)
}

// Summary is the result of one run. It is constructed fresh per invocation;
// the curator keeps no state between runs.
type Summary struct {
	// ProcessedCount is the number of records scanned, matching or not.
	ProcessedCount int
	// AddedCount is the number of records in the result set: written,
	// linked, or already present from an earlier run.
	AddedCount int
	// Errors holds per-record failures. A missing or unreadable source
	// image never aborts the scan.
	Errors []error
}

func New(spec filter.Spec, cfg output.Config, detector detect.Detector) *Curator {
	return &Curator{
		filter:   spec,
		output:   cfg,
		detector: detector,
	}
}

// Run scans records in order and materializes every match until the record
// set is exhausted or MaxExamples is reached. Configuration problems fail
// before the first record; per-record failures are collected in the summary.
func (c *Curator) Run(ctx context.Context, records []metadata.Record, opts Options) (*Summary, error) {
	if err := c.filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if err := c.output.Validate(); err != nil {
		return nil, fmt.Errorf("invalid output config: %w", err)
	}
	if c.output.Faces && c.detector == nil {
		return nil, fmt.Errorf("face mode requires a detector")
	}

	if err := os.MkdirAll(c.output.SaveDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create save directory: %w", err)
	}

	summary := &Summary{}
	var index []indexEntry

	var bar *progressbar.ProgressBar
	if !opts.Quiet {
		bar = progressbar.NewOptions(len(records),
			progressbar.OptionSetDescription("Scanning records"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("records"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	for _, record := range records {
		if ctx.Err() != nil {
			break
		}
		if opts.MaxExamples >= 0 && summary.AddedCount >= opts.MaxExamples {
			break
		}

		summary.ProcessedCount++
		if bar != nil {
			bar.Add(1)
		}

		if !c.filter.Matches(record) {
			c.reportProgress(opts, summary, len(records), record.ID)
			continue
		}

		// Ugoira animations ship as zip archives; every contained frame
		// becomes its own output.
		if record.FileExt == "zip" {
			c.processArchive(ctx, record, opts, summary, &index)
			c.reportProgress(opts, summary, len(records), record.ID)
			continue
		}

		res := output.Resolve(record, c.output)
		switch res.Action {
		case output.ActionSkip:
			// Already materialized by an earlier run. Counts toward the
			// result set, no I/O.
			summary.AddedCount++
			index = append(index, newIndexEntry(record, output.Filename(record)))

		case output.ActionLink:
			if err := output.Link(res.LinkSource, res.TargetPath); err != nil {
				summary.Errors = append(summary.Errors, fmt.Errorf("record %s: %w", record.ID, err))
				break
			}
			summary.AddedCount++
			index = append(index, newIndexEntry(record, output.Filename(record)))

		case output.ActionCreate:
			added, err := c.create(ctx, record, opts.DatasetDir, res.TargetPath)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Errorf("record %s: %w", record.ID, err))
				break
			}
			if added {
				summary.AddedCount++
				index = append(index, newIndexEntry(record, output.Filename(record)))
			}
		}

		c.reportProgress(opts, summary, len(records), record.ID)
	}

	if bar != nil {
		fmt.Println()
	}

	if err := writeIndex(c.output.SaveDir, index); err != nil {
		summary.Errors = append(summary.Errors, err)
	}

	return summary, nil
}

// create runs the full detect/crop/resize/write path for one record. It
// returns false with a nil error when face mode found no usable face; such
// records are dropped, not failed.
func (c *Curator) create(ctx context.Context, record metadata.Record, datasetDir, targetPath string) (bool, error) {
	sourcePath := metadata.SourcePath(datasetDir, record)
	img, err := output.LoadImage(sourcePath)
	if err != nil {
		return false, err
	}
	return c.materialize(ctx, img, targetPath)
}

// materialize crops, resizes and writes one decoded image.
func (c *Curator) materialize(ctx context.Context, img image.Image, targetPath string) (bool, error) {
	var rect image.Rectangle
	if c.output.Faces {
		boxes, err := c.detector.Detect(ctx, img)
		if err != nil {
			return false, fmt.Errorf("detection failed: %w", err)
		}
		bounds := img.Bounds()
		window, ok := facecrop.SelectWindow(bounds.Dx(), bounds.Dy(), boxes, c.output.FaceScale)
		if !ok {
			return false, nil
		}
		rect = window.Rect()
	}

	resized := output.CropResize(img, rect, c.output.ImgSize)
	if err := output.WriteImage(resized, targetPath); err != nil {
		return false, err
	}
	return true, nil
}

// processArchive materializes every frame of a zip-packed animation. Frames
// resolve and count individually, so re-runs and the added-count cap work at
// frame granularity just like for plain images.
func (c *Curator) processArchive(ctx context.Context, record metadata.Record, opts Options, summary *Summary, index *[]indexEntry) {
	sourcePath := metadata.SourcePath(opts.DatasetDir, record)
	archive, err := zip.OpenReader(sourcePath)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Errorf("record %s: could not open archive: %w", record.ID, err))
		return
	}
	defer archive.Close()

	for _, entry := range archive.File {
		if ctx.Err() != nil {
			return
		}
		if opts.MaxExamples >= 0 && summary.AddedCount >= opts.MaxExamples {
			return
		}

		name := frameFilename(record.ID, entry.Name)
		res := output.ResolveName(name, c.output)
		switch res.Action {
		case output.ActionSkip:
			summary.AddedCount++
			*index = append(*index, newIndexEntry(record, name))

		case output.ActionLink:
			if err := output.Link(res.LinkSource, res.TargetPath); err != nil {
				summary.Errors = append(summary.Errors, fmt.Errorf("record %s: %w", record.ID, err))
				continue
			}
			summary.AddedCount++
			*index = append(*index, newIndexEntry(record, name))

		case output.ActionCreate:
			img, err := decodeArchiveFrame(entry)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Errorf("record %s frame %s: %w", record.ID, entry.Name, err))
				continue
			}
			added, err := c.materialize(ctx, img, res.TargetPath)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Errorf("record %s frame %s: %w", record.ID, entry.Name, err))
				continue
			}
			if added {
				summary.AddedCount++
				*index = append(*index, newIndexEntry(record, name))
			}
		}
	}
}

func decodeArchiveFrame(entry *zip.File) (image.Image, error) {
	f, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open frame: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode frame: %w", err)
	}
	return img, nil
}

// frameFilename derives the output filename of one animation frame from the
// record id and the frame's name inside the archive.
func frameFilename(id, entryName string) string {
	base := filepath.Base(entryName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return id + "_" + base + ".jpg"
}

func (c *Curator) reportProgress(opts Options, summary *Summary, total int, recordID string) {
	if opts.OnProgress == nil {
		return
	}
	opts.OnProgress(ProgressInfo{
		Current:  summary.ProcessedCount,
		Total:    total,
		Added:    summary.AddedCount,
		RecordID: recordID,
	})
}

// sortedTags returns the record's tags as a sorted slice for the index.
func sortedTags(r metadata.Record) []string {
	tags := make([]string, 0, len(r.Tags))
	for tag := range r.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
