package curator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kozaktomas/booru-curator/internal/metadata"
)

// indexEntry is one record of the index.json written next to the outputs,
// so downstream training tooling can pair each image with its annotations.
type indexEntry struct {
	ID       string   `json:"id"`
	Filename string   `json:"filename"`
	Rating   string   `json:"rating"`
	Score    int      `json:"score"`
	Tags     []string `json:"tags"`
}

type indexFile struct {
	Data []indexEntry `json:"data"`
}

func newIndexEntry(r metadata.Record, filename string) indexEntry {
	return indexEntry{
		ID:       r.ID,
		Filename: filename,
		Rating:   r.Rating,
		Score:    r.Score,
		Tags:     sortedTags(r),
	}
}

// writeIndex materializes index.json in the save directory, covering the
// records added by this run.
func writeIndex(saveDir string, entries []indexEntry) error {
	if entries == nil {
		entries = []indexEntry{}
	}

	data, err := json.Marshal(indexFile{Data: entries})
	if err != nil {
		return fmt.Errorf("could not marshal index: %w", err)
	}

	path := filepath.Join(saveDir, "index.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write index file: %w", err)
	}
	return nil
}
