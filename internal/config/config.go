package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"gallery-viewer/internal/layout"
	"gallery-viewer/internal/thumbnail"
)

// Config holds the viewer settings.
type Config struct {
	Server      string
	Folder      string
	Token       string
	DownloadDir string
	LogFile     string
	LogLevel    string
	StateDB     string
	VideoTiles  bool
	TileWidth   int
	Flow        string

	// Bucket layout; must match the server's SOURCE_PREFIX,
	// THUMB_ROOT_PREFIX and THUMB_PREFIX.
	SourcePrefix string
	ThumbRoot    string
	ThumbPrefix  string
}

const (
	defaultConfigPath  = "~/.config/gallery-viewer/config.toml"
	defaultStateDir    = "~/.local/share/gallery-viewer"
	defaultDownloadDir = "~/Downloads"
	defaultServer      = "http://localhost:8080"
	defaultLogLevel    = "info"
	defaultTileWidth   = 24
	minTileWidth       = 8

	FlowShortest = "shortest"
	FlowColumns  = "columns"
)

// Load locates and parses the viewer config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Server      string `toml:"server"`
		Folder      string `toml:"folder"`
		Token       string `toml:"token"`
		DownloadDir string `toml:"download_dir"`
		LogFile     string `toml:"log_file"`
		LogLevel    string `toml:"log_level"`
		StateDB     string `toml:"state_db"`
		VideoTiles  bool   `toml:"video_tiles"`
		TileWidth   int    `toml:"tile_width"`
		Flow        string `toml:"flow"`

		SourcePrefix string `toml:"source_prefix"`
		ThumbRoot    string `toml:"thumb_root"`
		ThumbPrefix  string `toml:"thumb_prefix"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Server = orDefault(raw.Server, cfg.Server)
	cfg.Folder = strings.TrimSpace(raw.Folder)
	cfg.Token = strings.TrimSpace(raw.Token)
	cfg.DownloadDir = mustExpand(orDefault(raw.DownloadDir, defaultDownloadDir))
	cfg.LogFile = mustExpand(orDefault(raw.LogFile, cfg.LogFile))
	cfg.LogLevel = strings.ToLower(orDefault(raw.LogLevel, cfg.LogLevel))
	cfg.StateDB = mustExpand(orDefault(raw.StateDB, cfg.StateDB))
	cfg.VideoTiles = raw.VideoTiles
	if raw.TileWidth >= minTileWidth {
		cfg.TileWidth = raw.TileWidth
	}
	cfg.Flow = strings.ToLower(orDefault(raw.Flow, cfg.Flow))
	cfg.SourcePrefix = normalizePrefix(orDefault(raw.SourcePrefix, cfg.SourcePrefix))
	cfg.ThumbRoot = normalizePrefix(orDefault(raw.ThumbRoot, cfg.ThumbRoot))
	cfg.ThumbPrefix = orDefault(raw.ThumbPrefix, cfg.ThumbPrefix)

	return cfg, nil
}

func defaults() Config {
	stateDir := mustExpand(defaultStateDir)
	policy := thumbnail.DefaultPolicy()
	return Config{
		Server:      defaultServer,
		DownloadDir: mustExpand(defaultDownloadDir),
		LogFile:     filepath.Join(stateDir, "viewer.log"),
		LogLevel:    defaultLogLevel,
		StateDB:     filepath.Join(stateDir, "state.db"),
		TileWidth:   defaultTileWidth,
		Flow:        FlowShortest,

		SourcePrefix: policy.SourcePrefix,
		ThumbRoot:    policy.ThumbRoot,
		ThumbPrefix:  policy.FilePrefix,
	}
}

// ThumbnailPolicy is the bucket layout the server was configured with.
func (c Config) ThumbnailPolicy() thumbnail.Policy {
	return thumbnail.Policy{
		SourcePrefix: c.SourcePrefix,
		ThumbRoot:    c.ThumbRoot,
		FilePrefix:   c.ThumbPrefix,
	}
}

// LayoutFlow maps the flow setting to a masonry flow.
func (c Config) LayoutFlow() layout.Flow {
	if c.Flow == FlowColumns {
		return layout.FlowColumns
	}
	return layout.FlowShortest
}

// Validate reports settings the viewer cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return errors.New("server is required")
	}
	if c.Token == "" {
		return errors.New("a share token is required (set token or pass -t)")
	}
	switch c.Flow {
	case FlowShortest, FlowColumns:
	default:
		return fmt.Errorf("unknown flow %q (want %s or %s)", c.Flow, FlowShortest, FlowColumns)
	}
	return nil
}

// ExpandPath resolves ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
