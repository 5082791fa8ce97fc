// Package config loads the conceptmap configuration file.
//
// The file lives at $XDG_CONFIG_HOME/conceptmap/config.toml (falling back
// to ~/.config). A missing file is not an error: every field has a default.
//
//	[canvas]
//	width = 2000
//	height = 2000
//
//	[font]
//	size = 12.0
//
//	[editor]
//	hit_tolerance = 8.0
//	zoom_step = 1.15
//	new_node_x = 20.0
//	new_node_y = 20.0
//
//	[library]
//	backend = "file"   # file, sqlite, redis or mongo
//	dir = "~/.local/share/conceptmap/library"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/conceptmap/pkg/errors"
)

const appName = "conceptmap"

// Library backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config holds conceptmap configuration.
type Config struct {
	Canvas  CanvasConfig  `toml:"canvas"`
	Font    FontConfig    `toml:"font"`
	Editor  EditorConfig  `toml:"editor"`
	Library LibraryConfig `toml:"library"`
	Server  ServerConfig  `toml:"server"`
}

// CanvasConfig sets the minimum export canvas in document units.
type CanvasConfig struct {
	Width  float64 `toml:"width" validate:"gt=0"`
	Height float64 `toml:"height" validate:"gt=0"`
}

// FontConfig sets the node label font.
type FontConfig struct {
	Size float64 `toml:"size" validate:"gt=0"`
}

// EditorConfig tunes the interaction controller.
type EditorConfig struct {
	HitTolerance float64 `toml:"hit_tolerance" validate:"gte=0"`
	ZoomStep     float64 `toml:"zoom_step" validate:"gt=1"`
	NewNodeX     float64 `toml:"new_node_x"`
	NewNodeY     float64 `toml:"new_node_y"`
}

// LibraryConfig selects and configures the document library backend.
type LibraryConfig struct {
	Backend       string `toml:"backend" validate:"oneof=file sqlite redis mongo"`
	Dir           string `toml:"dir" validate:"required_if=Backend file"`
	SQLitePath    string `toml:"sqlite_path" validate:"required_if=Backend sqlite"`
	RedisAddr     string `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB       int    `toml:"redis_db" validate:"gte=0"`
	MongoURI      string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `toml:"mongo_database" validate:"required_if=Backend mongo"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr     string `toml:"addr" validate:"required"`
	CacheDir string `toml:"cache_dir"`
}

// Default returns the default configuration.
func Default() *Config {
	data := DataDir()
	return &Config{
		Canvas: CanvasConfig{Width: 2000, Height: 2000},
		Font:   FontConfig{Size: 12},
		Editor: EditorConfig{HitTolerance: 8, ZoomStep: 1.15, NewNodeX: 20, NewNodeY: 20},
		Library: LibraryConfig{
			Backend:       BackendFile,
			Dir:           filepath.Join(data, "library"),
			SQLitePath:    filepath.Join(data, "library.db"),
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
		Server: ServerConfig{Addr: ":8080", CacheDir: filepath.Join(CacheDir(), "renders")},
	}
}

// Dir returns the conceptmap config directory.
func Dir() string { return xdg("XDG_CONFIG_HOME", ".config") }

// DataDir returns the conceptmap data directory.
func DataDir() string { return xdg("XDG_DATA_HOME", filepath.Join(".local", "share")) }

// CacheDir returns the conceptmap cache directory.
func CacheDir() string { return xdg("XDG_CACHE_HOME", ".cache") }

func xdg(env, fallback string) string {
	dir := os.Getenv(env)
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, fallback)
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string { return filepath.Join(Dir(), "config.toml") }

// Load reads the config file at path over the defaults and validates the
// result. An empty path means [Path]. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories. An empty path means
// [Path].
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create config dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create config %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write config %s", path)
	}
	return nil
}

var validate = validator.New()

// Validate checks cfg against its field constraints.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}
	msgs := make([]string, len(verrs))
	for i, e := range verrs {
		msgs[i] = formatFieldError(e)
	}
	return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(msgs, "; "))
}

// formatFieldError renders a field error with its TOML key, e.g.
// "editor.zoom_step must be greater than 1".
func formatFieldError(e validator.FieldError) string {
	field := tomlKey(e.Namespace())
	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

var tomlKeys = map[string]string{
	"Canvas": "canvas", "Font": "font", "Editor": "editor", "Library": "library", "Server": "server",
	"Width": "width", "Height": "height", "Size": "size",
	"HitTolerance": "hit_tolerance", "ZoomStep": "zoom_step", "NewNodeX": "new_node_x", "NewNodeY": "new_node_y",
	"Backend": "backend", "Dir": "dir", "SQLitePath": "sqlite_path", "RedisAddr": "redis_addr", "RedisDB": "redis_db",
	"MongoURI": "mongo_uri", "MongoDatabase": "mongo_database",
	"Addr": "addr", "CacheDir": "cache_dir",
}

// tomlKey maps "Config.Editor.ZoomStep" to "editor.zoom_step".
func tomlKey(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if k, ok := tomlKeys[p]; ok {
			parts[i] = k
		}
	}
	return strings.Join(parts, ".")
}
