// Package metadata loads danbooru metadata shards into an in-memory table.
// Shards are line-delimited JSON, one record per line, as distributed with
// the danbooru201x datasets.
package metadata

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Rating values used by danbooru metadata.
const (
	RatingSafe         = "s"
	RatingQuestionable = "q"
	RatingExplicit     = "e"
)

// Record is the normalized view of one image's annotations.
// Records are built once by the loader and never mutated afterwards.
type Record struct {
	ID      string
	Rating  string
	Score   int
	Tags    map[string]struct{}
	Width   int
	Height  int
	FileExt string
}

// HasTag reports whether the record carries the given tag.
func (r Record) HasTag(tag string) bool {
	_, ok := r.Tags[tag]
	return ok
}

// rawRecord mirrors the JSON shape of a metadata shard line. The dataset is
// stringly typed: score and dimensions arrive as JSON strings in most shards
// and as numbers in a few, so everything numeric goes through flexInt.
type rawRecord struct {
	ID      flexString `json:"id"`
	Rating  string     `json:"rating"`
	Score   flexInt    `json:"score"`
	Tags    []rawTag   `json:"tags"`
	Width   flexInt    `json:"image_width"`
	Height  flexInt    `json:"image_height"`
	FileExt string     `json:"file_ext"`
}

type rawTag struct {
	Name string `json:"name"`
}

// flexString parses a value that may be encoded as a JSON string or number.
// Record ids appear both ways across dataset years.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}

// flexInt parses an integer that may be encoded as a JSON number or string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// parseRecord converts one shard line into a Record. Tag names are
// NFC-normalized so later set membership tests compare exact forms.
func parseRecord(line []byte) (Record, error) {
	var raw rawRecord
	if err := json.Unmarshal(line, &raw); err != nil {
		return Record{}, fmt.Errorf("could not parse metadata line: %w", err)
	}
	if raw.ID == "" {
		return Record{}, fmt.Errorf("metadata line is missing an id")
	}

	tags := make(map[string]struct{}, len(raw.Tags))
	for _, t := range raw.Tags {
		if t.Name == "" {
			continue
		}
		tags[norm.NFC.String(t.Name)] = struct{}{}
	}

	return Record{
		ID:      string(raw.ID),
		Rating:  raw.Rating,
		Score:   int(raw.Score),
		Tags:    tags,
		Width:   int(raw.Width),
		Height:  int(raw.Height),
		FileExt: raw.FileExt,
	}, nil
}

// SourcePath returns the path of the record's source image inside a danbooru
// dataset directory. Files are bucketed by id modulo 1000, zero-padded to
// four digits (e.g. original/0123/2841123.jpg).
func SourcePath(baseDir string, r Record) string {
	bucket := "0000"
	if id, err := strconv.Atoi(r.ID); err == nil {
		bucket = fmt.Sprintf("%04d", id%1000)
	}
	ext := r.FileExt
	if ext == "" {
		ext = "jpg"
	}
	return filepath.Join(baseDir, "original", bucket, r.ID+"."+ext)
}
