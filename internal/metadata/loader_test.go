package metadata

import (
	"os"
	"path/filepath"
	"testing"
)

func writeShard(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("could not create shard directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write shard: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "2018000000000000", `{"id":"1","rating":"s","score":"3","tags":[{"name":"archer"},{"name":"hug"}]}
{"id":"2","rating":"e","score":"-4","tags":[{"name":"solo"}]}
`)
	writeShard(t, dir, "sub/2018000000000001", `{"id":"3","rating":"q","score":"0","tags":[]}
`)

	store, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if store.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", store.Len())
	}

	record, ok := store.ByID["2"]
	if !ok {
		t.Fatal("expected record '2' in store")
	}

	if record.Score != -4 {
		t.Errorf("expected score -4, got %d", record.Score)
	}

	if record.Rating != "e" {
		t.Errorf("expected rating 'e', got '%s'", record.Rating)
	}

	if store.SkippedLines != 0 {
		t.Errorf("expected no skipped lines, got %d", store.SkippedLines)
	}
}

func TestLoad_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "shard", `{"id":"1","rating":"s","tags":[]}
not json at all
{"rating":"s","tags":[]}
{"id":"2","rating":"q","tags":[]}
`)

	store, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if store.Len() != 2 {
		t.Errorf("expected 2 records, got %d", store.Len())
	}

	if store.SkippedLines != 2 {
		t.Errorf("expected 2 skipped lines, got %d", store.SkippedLines)
	}
}

func TestLoad_DuplicateIDsKeepFirst(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "shard", `{"id":"1","rating":"s","score":"10","tags":[]}
{"id":"1","rating":"e","score":"20","tags":[]}
`)

	store, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", store.Len())
	}

	if store.ByID["1"].Score != 10 {
		t.Errorf("expected first occurrence kept (score 10), got %d", store.ByID["1"].Score)
	}
}

func TestLoad_EmptyLinesIgnored(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "shard", "\n\n{\"id\":\"1\",\"rating\":\"s\",\"tags\":[]}\n\n")

	store, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if store.Len() != 1 {
		t.Errorf("expected 1 record, got %d", store.Len())
	}

	if store.SkippedLines != 0 {
		t.Errorf("expected no skipped lines, got %d", store.SkippedLines)
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoad_FileInsteadOfDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shard")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("could not write file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for file path")
	}
}
