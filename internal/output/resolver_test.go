package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/booru-curator/internal/metadata"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("could not create file: %v", err)
	}
}

func TestFilename_AlwaysJPEG(t *testing.T) {
	record := metadata.Record{ID: "2841123", FileExt: "png"}

	if got := Filename(record); got != "2841123.jpg" {
		t.Errorf("expected '2841123.jpg', got '%s'", got)
	}
}

func TestResolve_Create(t *testing.T) {
	cfg := Config{SaveDir: t.TempDir(), ImgSize: 256}
	record := metadata.Record{ID: "1"}

	res := Resolve(record, cfg)

	if res.Action != ActionCreate {
		t.Errorf("expected ActionCreate, got %s", res.Action)
	}

	if res.TargetPath != filepath.Join(cfg.SaveDir, "1.jpg") {
		t.Errorf("unexpected target path %s", res.TargetPath)
	}

	if res.LinkSource != "" {
		t.Errorf("expected empty link source, got %s", res.LinkSource)
	}
}

func TestResolve_SkipWhenAlreadySaved(t *testing.T) {
	cfg := Config{SaveDir: t.TempDir(), ImgSize: 256}
	record := metadata.Record{ID: "1"}
	touch(t, filepath.Join(cfg.SaveDir, "1.jpg"))

	res := Resolve(record, cfg)

	if res.Action != ActionSkip {
		t.Errorf("expected ActionSkip, got %s", res.Action)
	}
}

func TestResolve_LinkWhenInLinkDir(t *testing.T) {
	cfg := Config{SaveDir: t.TempDir(), LinkDir: t.TempDir(), ImgSize: 256}
	record := metadata.Record{ID: "1"}
	touch(t, filepath.Join(cfg.LinkDir, "1.jpg"))

	res := Resolve(record, cfg)

	if res.Action != ActionLink {
		t.Errorf("expected ActionLink, got %s", res.Action)
	}

	if res.LinkSource != filepath.Join(cfg.LinkDir, "1.jpg") {
		t.Errorf("unexpected link source %s", res.LinkSource)
	}

	if res.TargetPath != filepath.Join(cfg.SaveDir, "1.jpg") {
		t.Errorf("unexpected target path %s", res.TargetPath)
	}
}

func TestResolve_SaveDirWinsOverLinkDir(t *testing.T) {
	cfg := Config{SaveDir: t.TempDir(), LinkDir: t.TempDir(), ImgSize: 256}
	record := metadata.Record{ID: "1"}
	touch(t, filepath.Join(cfg.SaveDir, "1.jpg"))
	touch(t, filepath.Join(cfg.LinkDir, "1.jpg"))

	res := Resolve(record, cfg)

	if res.Action != ActionSkip {
		t.Errorf("expected ActionSkip when already saved, got %s", res.Action)
	}
}

func TestResolve_OverwriteForcesCreate(t *testing.T) {
	cfg := Config{SaveDir: t.TempDir(), ImgSize: 256, Overwrite: true}
	record := metadata.Record{ID: "1"}
	touch(t, filepath.Join(cfg.SaveDir, "1.jpg"))

	res := Resolve(record, cfg)

	if res.Action != ActionCreate {
		t.Errorf("expected ActionCreate with overwrite, got %s", res.Action)
	}

	if res.TargetPath != filepath.Join(cfg.SaveDir, "1.jpg") {
		t.Errorf("unexpected target path %s", res.TargetPath)
	}
}

func TestResolve_OverwriteIgnoresLinkDir(t *testing.T) {
	cfg := Config{SaveDir: t.TempDir(), LinkDir: t.TempDir(), ImgSize: 256, Overwrite: true}
	record := metadata.Record{ID: "1"}
	touch(t, filepath.Join(cfg.LinkDir, "1.jpg"))

	res := Resolve(record, cfg)

	if res.Action != ActionCreate {
		t.Errorf("expected ActionCreate with overwrite, got %s", res.Action)
	}
}

func TestResolveName_FrameFilename(t *testing.T) {
	cfg := Config{SaveDir: t.TempDir(), ImgSize: 256}
	touch(t, filepath.Join(cfg.SaveDir, "1_000000.jpg"))

	if res := ResolveName("1_000000.jpg", cfg); res.Action != ActionSkip {
		t.Errorf("expected ActionSkip for existing frame, got %s", res.Action)
	}

	if res := ResolveName("1_000001.jpg", cfg); res.Action != ActionCreate {
		t.Errorf("expected ActionCreate for missing frame, got %s", res.Action)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	cfg := Config{SaveDir: t.TempDir(), LinkDir: t.TempDir(), ImgSize: 256}
	record := metadata.Record{ID: "7"}
	touch(t, filepath.Join(cfg.LinkDir, "7.jpg"))

	first := Resolve(record, cfg)
	second := Resolve(record, cfg)

	if first != second {
		t.Errorf("resolver not idempotent: first %+v, second %+v", first, second)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid",
			cfg:     Config{SaveDir: "out", ImgSize: 256},
			wantErr: false,
		},
		{
			name:    "valid face mode",
			cfg:     Config{SaveDir: "out", ImgSize: 256, Faces: true, FaceScale: 2.5},
			wantErr: false,
		},
		{
			name:    "missing save dir",
			cfg:     Config{ImgSize: 256},
			wantErr: true,
		},
		{
			name:    "zero img size",
			cfg:     Config{SaveDir: "out", ImgSize: 0},
			wantErr: true,
		},
		{
			name:    "negative img size",
			cfg:     Config{SaveDir: "out", ImgSize: -10},
			wantErr: true,
		},
		{
			name:    "face mode without scale",
			cfg:     Config{SaveDir: "out", ImgSize: 256, Faces: true},
			wantErr: true,
		},
		{
			name:    "face scale ignored outside face mode",
			cfg:     Config{SaveDir: "out", ImgSize: 256, FaceScale: 0},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
