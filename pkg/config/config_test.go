package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/conceptmap/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Canvas.Width != 2000 || cfg.Canvas.Height != 2000 {
		t.Errorf("canvas = %vx%v, want 2000x2000", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Font.Size != 12 {
		t.Errorf("font size = %v, want 12", cfg.Font.Size)
	}
	if cfg.Editor.ZoomStep != 1.15 || cfg.Editor.HitTolerance != 8 {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Editor.NewNodeX != 20 || cfg.Editor.NewNodeY != 20 {
		t.Errorf("new node position = (%v,%v), want (20,20)", cfg.Editor.NewNodeX, cfg.Editor.NewNodeY)
	}
	if cfg.Library.Backend != BackendFile {
		t.Errorf("backend = %q, want %q", cfg.Library.Backend, BackendFile)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if got := Dir(); got != "/tmp/test-xdg/conceptmap" {
		t.Errorf("Dir() = %q", got)
	}
	if got := Path(); got != "/tmp/test-xdg/conceptmap/config.toml" {
		t.Errorf("Path() = %q", got)
	}

	t.Setenv("XDG_DATA_HOME", "")
	home, _ := os.UserHomeDir()
	if got, want := DataDir(), filepath.Join(home, ".local", "share", "conceptmap"); got != want {
		t.Errorf("DataDir() = %q, want %q", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Font.Size != 12 {
		t.Errorf("font size = %v, want default", cfg.Font.Size)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Font.Size = 14
	cfg.Library.Backend = BackendRedis
	cfg.Library.RedisDB = 3
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Font.Size != 14 || got.Library.Backend != BackendRedis || got.Library.RedisDB != 3 {
		t.Errorf("loaded %+v", got)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[editor]\nzoom_step = 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Editor.ZoomStep != 1.5 {
		t.Errorf("zoom_step = %v, want 1.5", cfg.Editor.ZoomStep)
	}
	if cfg.Editor.HitTolerance != 8 || cfg.Canvas.Width != 2000 {
		t.Error("unspecified keys should keep their defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[editor\n", "parse config"},
		{"zoom step", "[editor]\nzoom_step = 0.5\n", "editor.zoom_step must be greater than 1"},
		{"font size", "[font]\nsize = 0.0\n", "font.size must be greater than 0"},
		{"backend", "[library]\nbackend = \"s3\"\n", "library.backend must be one of"},
		{"mongo uri", "[library]\nbackend = \"mongo\"\nmongo_uri = \"\"\n", "library.mongo_uri is required"},
		{"addr", "[server]\naddr = \"\"\n", "server.addr is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
