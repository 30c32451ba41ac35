// Package output decides how each selected record is materialized and
// performs the image I/O. The presence of a file in the save directory is
// the only durable "already done" marker; re-running the pipeline with the
// same save directory skips work that is already on disk.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kozaktomas/booru-curator/internal/metadata"
)

// Action describes what the pipeline must do for one record.
type Action string

const (
	// ActionSkip means the output already exists in the save directory.
	ActionSkip Action = "skip"
	// ActionLink means a processed copy exists in the link directory and a
	// symlink stands in for it, no pixel work needed.
	ActionLink Action = "link"
	// ActionCreate means the full detect/crop/resize/write path is needed.
	ActionCreate Action = "create"
)

// Config holds the materialization settings for a run.
type Config struct {
	SaveDir   string  // destination for newly processed images
	LinkDir   string  // optional directory with previously processed copies
	ImgSize   int     // target square side length
	Faces     bool    // crop to the detected face region
	FaceScale float64 // multiplier over the detected face box size
	Overwrite bool    // reprocess outputs that already exist
}

// Validate checks the config before any record is processed.
func (c Config) Validate() error {
	if c.SaveDir == "" {
		return fmt.Errorf("save directory must be set")
	}
	if c.ImgSize <= 0 {
		return fmt.Errorf("img-size must be positive, got %d", c.ImgSize)
	}
	if c.Faces && c.FaceScale <= 0 {
		return fmt.Errorf("face-scale must be positive, got %g", c.FaceScale)
	}
	return nil
}

// Resolution is the outcome of resolving one record against the filesystem.
type Resolution struct {
	Action     Action
	TargetPath string // path under the save directory
	LinkSource string // existing processed copy, set for ActionLink
}

// Filename returns the canonical output filename for a record. Outputs are
// always JPEG regardless of the source format so downstream tooling sees a
// uniform directory.
func Filename(r metadata.Record) string {
	return r.ID + ".jpg"
}

// Resolve determines the action for one record. It only checks filename
// presence and is idempotent: with unchanged filesystem state it always
// returns the same resolution.
func Resolve(r metadata.Record, cfg Config) Resolution {
	return ResolveName(Filename(r), cfg)
}

// ResolveName resolves one output filename. Overwrite disables the presence
// checks entirely, so existing outputs are reprocessed from the source.
func ResolveName(name string, cfg Config) Resolution {
	target := filepath.Join(cfg.SaveDir, name)

	if cfg.Overwrite {
		return Resolution{Action: ActionCreate, TargetPath: target}
	}

	if fileExists(target) {
		return Resolution{Action: ActionSkip, TargetPath: target}
	}

	if cfg.LinkDir != "" {
		source := filepath.Join(cfg.LinkDir, name)
		if fileExists(source) {
			return Resolution{Action: ActionLink, TargetPath: target, LinkSource: source}
		}
	}

	return Resolution{Action: ActionCreate, TargetPath: target}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
