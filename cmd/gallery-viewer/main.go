package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"gallery-viewer/internal/client"
	"gallery-viewer/internal/config"
	"gallery-viewer/internal/database"
	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/refresh"
	"gallery-viewer/internal/thumbnail"
	"gallery-viewer/internal/tui"
	"gallery-viewer/internal/viewer"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// options are the command line overrides.
type options struct {
	configPath string
	server     string
	token      string
	folder     string
	downloads  string
	logFile    string
	tileWidth  int
	videoTiles *bool
	share      string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("gallery-viewer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "config file (default ~/.config/gallery-viewer/config.toml)")
	fs.StringVar(&o.server, "server", "", "gallery server URL")
	fs.StringVar(&o.token, "t", "", "share token")
	fs.StringVar(&o.folder, "folder", "", "folder to open directly instead of going through /open")
	fs.StringVar(&o.downloads, "downloads", "", "directory downloads are saved to")
	fs.StringVar(&o.logFile, "log", "", "log file")
	fs.IntVar(&o.tileWidth, "tile-width", 0, "tile width in cells")
	videoTiles := fs.Bool("video-tiles", false, "show videos in the grid")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: gallery-viewer [flags] [share URL]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "video-tiles" {
			o.videoTiles = videoTiles
		}
	})
	switch fs.NArg() {
	case 0:
	case 1:
		o.share = fs.Arg(0)
	default:
		err := fmt.Errorf("expected at most one share URL, got %d arguments", fs.NArg())
		fmt.Fprintln(stderr, err)
		return options{}, err
	}
	return o, nil
}

// shareLink is what a pasted share URL carries.
type shareLink struct {
	Server string
	Token  string
	Folder string
}

// parseShareURL accepts the /open?t= URL printed by sharelink, or a viewer
// landing URL copied from a browser.
func parseShareURL(raw string) (shareLink, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return shareLink{}, fmt.Errorf("parse share url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return shareLink{}, fmt.Errorf("share url %q is not an http(s) URL", raw)
	}

	link := shareLink{Token: u.Query().Get("t")}
	if link.Token == "" {
		return shareLink{}, fmt.Errorf("share url %q has no token", raw)
	}

	base, ok := strings.CutSuffix(u.Path, refresh.RenewalPath)
	if !ok {
		if base, ok = strings.CutSuffix(u.Path, viewer.IndexPath); !ok {
			return shareLink{}, fmt.Errorf("share url %q is neither a %s nor a %s URL", raw, refresh.RenewalPath, viewer.IndexPath)
		}
		link.Folder = u.Query().Get("folder")
	}
	link.Server = (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: base}).String()
	return link, nil
}

// apply layers the command line over the config file.
func (o options) apply(cfg *config.Config) error {
	if o.share != "" {
		link, err := parseShareURL(o.share)
		if err != nil {
			return err
		}
		cfg.Server, cfg.Token = link.Server, link.Token
		if link.Folder != "" {
			cfg.Folder = link.Folder
		}
	}
	if o.server != "" {
		cfg.Server = o.server
	}
	if o.token != "" {
		cfg.Token = o.token
	}
	if o.folder != "" {
		cfg.Folder = o.folder
	}
	if o.tileWidth > 0 {
		cfg.TileWidth = o.tileWidth
	}
	if o.videoTiles != nil {
		cfg.VideoTiles = *o.videoTiles
	}
	for dst, src := range map[*string]string{&cfg.DownloadDir: o.downloads, &cfg.LogFile: o.logFile} {
		if src == "" {
			continue
		}
		p, err := config.ExpandPath(src)
		if err != nil {
			return err
		}
		*dst = p
	}
	return nil
}

// startURL is the first navigation: straight to the folder when one is
// known, otherwise through the renewal endpoint.
func startURL(cfg config.Config) string {
	if cfg.Folder != "" {
		return viewer.IndexURL(cfg.Folder, cfg.Token)
	}
	return refresh.RenewalURL(cfg.Token)
}

// openLog sends the package logger to a file; the terminal belongs to the UI.
func openLog(path, level string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.SetOutput(f)
	if l, ok := logging.ParseLevel(level); ok {
		logging.SetLevel(l)
	}
	return f, nil
}

// sessionStore keeps refresh state in SQLite, scoped to the server so two
// galleries never share a cooldown. It falls back to memory.
func sessionStore(ctx context.Context, path, server string) (refresh.Store, func()) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logging.Warn("state: %v, keeping refresh state in memory", err)
		return refresh.NewMemoryStore(), func() {}
	}
	db, err := database.New(ctx, path)
	if err != nil {
		logging.Warn("state: %v, keeping refresh state in memory", err)
		return refresh.NewMemoryStore(), func() {}
	}
	return db.SessionStore(server), func() {
		if err := db.Close(); err != nil {
			logging.Warn("state: close: %v", err)
		}
	}
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gallery-viewer: %v\n", err)
		return 1
	}
	if err := opts.apply(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "gallery-viewer: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "gallery-viewer: %v\n", err)
		return 1
	}

	logFile, err := openLog(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gallery-viewer: %v\n", err)
		return 1
	}
	defer logFile.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := client.New(cfg.Server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gallery-viewer: %v\n", err)
		return 1
	}
	store, closeStore := sessionStore(ctx, cfg.StateDB, cfg.Server)
	defer closeStore()

	logging.Info("viewer: starting against %s (session %s)", cfg.Server, c.SessionID())
	model := tui.New(tui.Options{
		Context:     ctx,
		API:         c,
		Renewer:     c,
		Images:      c.Images(),
		Videos:      c.Videos(),
		Store:       store,
		Resolver:    thumbnail.NewResolver(cfg.ThumbnailPolicy()),
		Start:       startURL(cfg),
		DownloadDir: cfg.DownloadDir,
		VideoTiles:  cfg.VideoTiles,
		TileWidth:   cfg.TileWidth,
		Flow:        cfg.LayoutFlow(),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logging.Error("viewer: %v", err)
		fmt.Fprintf(os.Stderr, "gallery-viewer: %v\n", err)
		return 1
	}
	logging.Info("viewer: exited")
	return 0
}
