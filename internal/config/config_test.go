package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gallery-viewer/internal/layout"
	"gallery-viewer/internal/thumbnail"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server != defaultServer {
		t.Fatalf("Server = %q, want %q", cfg.Server, defaultServer)
	}
	if cfg.TileWidth != defaultTileWidth || cfg.Flow != FlowShortest || cfg.LogLevel != defaultLogLevel {
		t.Fatalf("unexpected defaults %+v", cfg)
	}

	stateDir, err := expandPath(defaultStateDir)
	if err != nil {
		t.Fatalf("expandPath(defaultStateDir) returned error: %v", err)
	}
	if cfg.StateDB != filepath.Join(stateDir, "state.db") {
		t.Fatalf("StateDB = %q", cfg.StateDB)
	}
	if cfg.LogFile != filepath.Join(stateDir, "viewer.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
	if !strings.HasPrefix(cfg.DownloadDir, home) {
		t.Fatalf("DownloadDir = %q, want it under HOME %q", cfg.DownloadDir, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
server = "  https://photos.example.com  "
token = " abc "
folder = "gallery/trip/"
download_dir = "~/pictures"
state_db = "~/state/viewer.db"
log_level = "DEBUG"
video_tiles = true
tile_width = 30
flow = "Columns"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server != "https://photos.example.com" || cfg.Token != "abc" || cfg.Folder != "gallery/trip/" {
		t.Fatalf("unexpected connection settings %+v", cfg)
	}
	if cfg.DownloadDir != filepath.Join(home, "pictures") {
		t.Fatalf("DownloadDir = %q", cfg.DownloadDir)
	}
	if cfg.StateDB != filepath.Join(home, "state", "viewer.db") {
		t.Fatalf("StateDB = %q", cfg.StateDB)
	}
	if cfg.LogLevel != "debug" || !cfg.VideoTiles || cfg.TileWidth != 30 {
		t.Fatalf("unexpected display settings %+v", cfg)
	}
	if cfg.LayoutFlow() != layout.FlowColumns {
		t.Fatalf("LayoutFlow = %v, want columns", cfg.LayoutFlow())
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
server = "   "
flow = ""
tile_width = 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server != defaultServer {
		t.Fatalf("Server = %q, want %q", cfg.Server, defaultServer)
	}
	if cfg.Flow != FlowShortest {
		t.Fatalf("Flow = %q, want %q", cfg.Flow, FlowShortest)
	}
	if cfg.TileWidth != defaultTileWidth {
		t.Fatalf("TileWidth = %d, want %d", cfg.TileWidth, defaultTileWidth)
	}
}

func TestLoad_ThumbnailLayout(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.ThumbnailPolicy(); got != thumbnail.DefaultPolicy() {
		t.Fatalf("default ThumbnailPolicy() = %+v, want %+v", got, thumbnail.DefaultPolicy())
	}

	cfg, err = Load(writeConfig(t, `
source_prefix = "/photos"
thumb_root = "previews"
thumb_prefix = "small-"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := thumbnail.Policy{SourcePrefix: "photos/", ThumbRoot: "previews/", FilePrefix: "small-"}
	if got := cfg.ThumbnailPolicy(); got != want {
		t.Fatalf("ThumbnailPolicy() = %+v, want %+v", got, want)
	}

	key, ok := thumbnail.NewResolver(cfg.ThumbnailPolicy()).ThumbKey("photos/trip/1.jpg", ".jpg")
	if !ok || key != "previews/trip/small-1.jpg" {
		t.Fatalf("ThumbKey = %q, %v", key, ok)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, "server = [unterminated")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %v, want parse error", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := Config{Server: defaultServer, Token: "abc", Flow: FlowShortest}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing server", func(c *Config) { c.Server = " " }, "server"},
		{"missing token", func(c *Config) { c.Token = "" }, "token"},
		{"unknown flow", func(c *Config) { c.Flow = "rows" }, "flow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate returned error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil || got != filepath.Join(home, "a", "b") {
		t.Fatalf("ExpandPath = %q, %v", got, err)
	}
	if _, err := ExpandPath("   "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
