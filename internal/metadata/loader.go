package metadata

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single metadata line. Danbooru records with thousands
// of tags can exceed bufio.Scanner's default 64KB buffer.
const maxLineSize = 4 * 1024 * 1024

// Store holds the loaded metadata table. Records keep the stable order in
// which the shards were walked; ByID gives direct access by record id.
type Store struct {
	Records []Record
	ByID    map[string]Record

	// SkippedLines counts shard lines that could not be parsed into a
	// usable record. Malformed lines are skipped, never fatal.
	SkippedLines int
}

// Load walks dir recursively and parses every regular file as a metadata
// shard. Duplicate ids keep the first occurrence.
func Load(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("could not open metadata directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("metadata path %s is not a directory", dir)
	}

	store := &Store{
		ByID: make(map[string]Record),
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("could not open metadata shard %s: %w", path, err)
		}
		defer f.Close()
		return store.readShard(f)
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// readShard parses one line-delimited JSON shard into the store.
func (s *Store) readShard(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		record, err := parseRecord(line)
		if err != nil {
			s.SkippedLines++
			continue
		}
		if _, exists := s.ByID[record.ID]; exists {
			continue
		}
		s.ByID[record.ID] = record
		s.Records = append(s.Records, record)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read metadata shard: %w", err)
	}
	return nil
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	return len(s.Records)
}
