package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"gallery-viewer/internal/database"
	"gallery-viewer/internal/refresh"
	"gallery-viewer/internal/signer"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"
	defaultPublicURL   = "http://localhost:8080"
	defaultPrefix      = "gallery/"
)

// settings are the environment values the CLI shares with the server.
type settings struct {
	DatabaseDir   string
	PublicURL     string
	AllowedPrefix string
	LinkLifetime  time.Duration
}

func loadSettings() (settings, error) {
	if err := godotenv.Load(envOr("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return settings{}, fmt.Errorf("load env file: %w", err)
	}

	s := settings{
		DatabaseDir:   envOr("DATABASE_DIR", defaultDatabaseDir),
		PublicURL:     strings.TrimRight(envOr("PUBLIC_URL", defaultPublicURL), "/"),
		AllowedPrefix: envOr("ALLOWED_FOLDER_PREFIX", defaultPrefix),
	}
	if raw := os.Getenv("LINK_LIFETIME"); raw != "" {
		d, err := parseTTL(raw)
		if err != nil {
			return settings{}, fmt.Errorf("LINK_LIFETIME: %w", err)
		}
		s.LinkLifetime = d
	}
	return s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	dbPath := filepath.Join(cfg.DatabaseDir, "gallery.db")

	db, err := database.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", cfg.DatabaseDir)
		os.Exit(1)
	}

	var ok bool
	switch command {
	case "create":
		ok = createLink(ctx, db, cfg, os.Args[2:], os.Stdout, isTerminal(os.Stdout))
	case "status":
		ok = showStatus(ctx, db, os.Stdout)
	case "prune":
		ok = pruneLinks(ctx, db, os.Stdout)
	default:
		// Sanitize command input using allowlist to break taint chain
		sanitized := sanitizeCommand(command)
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitized) //nolint:gosec // G705 - input is sanitized via allowlist in sanitizeCommand; only [a-zA-Z0-9_-] characters pass through
		printUsage()
	}

	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
	if !ok {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("Gallery Share Links")
	fmt.Println("")
	fmt.Println("Usage: sharelink <command> [arguments]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  create <folder> [ttl] - Create a link for a folder (ttl like 12h or 7d)")
	fmt.Println("  status                - Count links that still open")
	fmt.Println("  prune                 - Delete expired links")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATABASE_DIR          - Path to database directory (default: %s)\n", defaultDatabaseDir)
	fmt.Printf("  PUBLIC_URL            - Server URL printed in links (default: %s)\n", defaultPublicURL)
	fmt.Printf("  ALLOWED_FOLDER_PREFIX - Folders links may grant (default: %s)\n", defaultPrefix)
	fmt.Println("  LINK_LIFETIME         - How long a link keeps opening (default: its cookie TTL)")
}

// parseTTL accepts Go durations and whole days ("7d").
func parseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}

func createLink(ctx context.Context, db *database.Database, cfg settings, args []string, out io.Writer, interactive bool) bool {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "Error: usage: sharelink create <folder> [ttl]")
		return false
	}

	folder, err := signer.ValidateFolder(args[0], cfg.AllowedPrefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}

	var ttl time.Duration
	if len(args) == 2 {
		if ttl, err = parseTTL(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
	}
	if ttl, err = signer.ClampTTL(ttl); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}

	// Add timeout to context for database operations
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	link, err := db.CreateLink(ctx, folder, ttl, cfg.LinkLifetime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create link: %v\n", err)
		return false
	}

	url := cfg.PublicURL + refresh.RenewalURL(link.Token)
	if !interactive {
		fmt.Fprintln(out, url)
		return true
	}
	fmt.Fprintf(out, "Folder:  %s\n", link.Folder)
	fmt.Fprintf(out, "Cookies: valid for %s after each open\n", link.CookieTTL)
	fmt.Fprintf(out, "Expires: %s\n", link.ExpiresAt.Format(time.RFC1123))
	fmt.Fprintf(out, "\n  %s\n\n", url)
	fmt.Fprintln(out, "The token is shown only once.")
	return true
}

func showStatus(ctx context.Context, db *database.Database, out io.Writer) bool {
	// Add timeout to context for database operations
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := db.CountActiveLinks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to count links: %v\n", err)
		return false
	}
	fmt.Fprintf(out, "Status: %d active share link(s)\n", n)
	return true
}

func pruneLinks(ctx context.Context, db *database.Database, out io.Writer) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := db.DeleteExpiredLinks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to prune links: %v\n", err)
		return false
	}
	fmt.Fprintf(out, "Removed %d expired share link(s)\n", n)
	return true
}
