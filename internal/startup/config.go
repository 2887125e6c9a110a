package startup

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/signer"
	"gallery-viewer/internal/thumbnail"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	MediaDir        string
	DatabaseDir     string
	Port            string
	MetricsPort     string
	PublicURL       string
	LogStaticFiles  bool
	LogHealthChecks bool
	MetricsEnabled  bool

	// Derived paths
	DatabasePath string

	// Share links
	SigningKey          []byte
	KeyPairID           string
	EphemeralKey        bool
	AllowedFolderPrefix string
	LinkLifetime        time.Duration
	LinkCleanupInterval time.Duration
	Cookies             signer.CookieOptions

	// Thumbnails
	ThumbnailsEnabled bool
	ThumbnailInterval time.Duration
	ThumbnailLayout   thumbnail.Policy
	ThumbMaxSize      int
	JPEGQuality       int
	ThumbDeciderMode  string
	ThumbMinMiB       float64
	ThumbMinMaxDim    int
	ThumbWorkers      int
}

// LoadConfig loads and validates configuration from the environment. A
// .env file (or ENV_FILE) is read first; variables already set win.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	port := getEnv("PORT", "8080")
	cfg := &Config{
		MediaDir:            getEnv("MEDIA_DIR", "/media"),
		DatabaseDir:         getEnv("DATABASE_DIR", "/database"),
		Port:                port,
		MetricsPort:         getEnv("METRICS_PORT", "9090"),
		PublicURL:           strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),
		LogStaticFiles:      getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks:     getEnvBool("LOG_HEALTH_CHECKS", true),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		KeyPairID:           getEnv("KEY_PAIR_ID", "K1"),
		AllowedFolderPrefix: getEnv("ALLOWED_FOLDER_PREFIX", "gallery/"),
		LinkLifetime:        getEnvDuration("LINK_LIFETIME", 0),
		LinkCleanupInterval: getEnvDuration("LINK_CLEANUP_INTERVAL", time.Hour),
		Cookies: signer.CookieOptions{
			Domain:   getEnv("COOKIE_DOMAIN", ""),
			Path:     "/",
			Secure:   getEnvBool("COOKIE_SECURE", true),
			HTTPOnly: getEnvBool("COOKIE_HTTPONLY", true),
			SameSite: parseSameSite(getEnv("COOKIE_SAMESITE", "lax")),
			MaxAge:   getEnvBool("COOKIE_MAX_AGE", false),
		},
		ThumbnailsEnabled: getEnvBool("THUMBNAILS_ENABLED", true),
		ThumbnailInterval: getEnvDuration("THUMBNAIL_INTERVAL", 6*time.Hour),
		ThumbnailLayout: thumbnail.Policy{
			SourcePrefix: normalizePrefix(getEnv("SOURCE_PREFIX", "gallery/")),
			ThumbRoot:    normalizePrefix(getEnv("THUMB_ROOT_PREFIX", "thumbs/")),
			FilePrefix:   getEnv("THUMB_PREFIX", "thumb-of-"),
		},
		ThumbMaxSize:     getEnvInt("THUMB_MAX_SIZE", 640),
		JPEGQuality:      getEnvInt("JPEG_QUALITY", 75),
		ThumbDeciderMode: strings.ToLower(getEnv("THUMB_DECIDER_MODE", "bytes")),
		ThumbMinMiB:      getEnvFloat("THUMB_DECIDER_MIN_MIB", 0),
		ThumbMinMaxDim:   getEnvInt("THUMB_DECIDER_MIN_MAXDIM_PX", 0),
		ThumbWorkers:     getEnvInt("THUMB_WORKERS", 0),
	}

	key, ephemeral, err := signingKey(os.Getenv("SIGNING_KEY"))
	if err != nil {
		return nil, err
	}
	cfg.SigningKey = key
	cfg.EphemeralKey = ephemeral

	logging.Info("  MEDIA_DIR:             %s", cfg.MediaDir)
	logging.Info("  DATABASE_DIR:          %s", cfg.DatabaseDir)
	logging.Info("  PORT:                  %s", cfg.Port)
	logging.Info("  METRICS_PORT:          %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:       %v", cfg.MetricsEnabled)
	logging.Info("  PUBLIC_URL:            %s", cfg.PublicURL)
	logging.Info("  KEY_PAIR_ID:           %s", cfg.KeyPairID)
	logging.Info("  ALLOWED_FOLDER_PREFIX: %s", cfg.AllowedFolderPrefix)
	logging.Info("  LINK_LIFETIME:         %s", lifetimeString(cfg.LinkLifetime))
	logging.Info("  COOKIE_SECURE:         %v", cfg.Cookies.Secure)
	logging.Info("  COOKIE_SAMESITE:       %s", sameSiteString(cfg.Cookies.SameSite))
	logging.Info("  THUMBNAIL_INTERVAL:    %s", cfg.ThumbnailInterval)
	logging.Info("  THUMB_DECIDER_MODE:    %s", cfg.ThumbDeciderMode)
	logging.Info("  LOG_STATIC_FILES:      %v", cfg.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:     %v", cfg.LogHealthChecks)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	if cfg.EphemeralKey {
		logging.Warn("  SIGNING_KEY not set, using a random key; cookies will not survive a restart")
	}
	if !cfg.Cookies.Secure {
		logging.Warn("  COOKIE_SECURE=false, cookies will be sent over plain HTTP")
	}
	if cfg.ThumbDeciderMode != "bytes" && cfg.ThumbDeciderMode != "pixels" {
		logging.Warn("  Invalid THUMB_DECIDER_MODE %q, using default: bytes", cfg.ThumbDeciderMode)
		cfg.ThumbDeciderMode = "bytes"
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if cfg.MediaDir, err = filepath.Abs(cfg.MediaDir); err != nil {
		return nil, fmt.Errorf("failed to resolve media directory path: %w", err)
	}
	logging.Info("  Media directory (absolute): %s", cfg.MediaDir)

	if cfg.DatabaseDir, err = filepath.Abs(cfg.DatabaseDir); err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", cfg.DatabaseDir)
	cfg.DatabasePath = filepath.Join(cfg.DatabaseDir, "gallery.db")

	if err := ensureDirectory(cfg.MediaDir, "media"); err != nil {
		return nil, fmt.Errorf("media directory error: %w", err)
	}
	checkBucketLayout(cfg.MediaDir, cfg.AllowedFolderPrefix, cfg.ThumbnailLayout.ThumbRoot)

	if err := ensureDirectory(cfg.DatabaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}
	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(cfg.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	// Thumbnails are written next to the originals.
	if cfg.ThumbnailsEnabled {
		if err := testWriteAccess(cfg.MediaDir); err != nil {
			logging.Warn("  Media directory is not writable: %v", err)
			logging.Warn("  Thumbnail generation will be disabled")
			cfg.ThumbnailsEnabled = false
		}
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:    ENABLED (required)")
	logging.Info("    Thumbnails:  %s", enabledString(cfg.ThumbnailsEnabled))
	logging.Info("    Metrics:     %s", enabledString(cfg.MetricsEnabled))

	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug("  No env file at %s", path)
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	logging.Info("  Loaded environment from %s", path)
	return nil
}

// signingKey decodes SIGNING_KEY as hex, falling back to the raw bytes. An
// empty value yields a random key.
func signingKey(raw string) (key []byte, ephemeral bool, err error) {
	if raw == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, false, fmt.Errorf("failed to generate signing key: %w", err)
		}
		return key, true, nil
	}
	if decoded, err := hex.DecodeString(raw); err == nil {
		key = decoded
	} else {
		key = []byte(raw)
	}
	if len(key) < signer.MinKeySize {
		return nil, false, fmt.Errorf("SIGNING_KEY must be at least %d bytes, got %d", signer.MinKeySize, len(key))
	}
	return key, false, nil
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax", "":
		return http.SameSiteLaxMode
	default:
		logging.Warn("Invalid COOKIE_SAMESITE %q, using default: lax", s)
		return http.SameSiteLaxMode
	}
}

func sameSiteString(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return "lax"
	}
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func lifetimeString(d time.Duration) string {
	if d <= 0 {
		return "same as cookie TTL"
	}
	return d.String()
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logging.Warn("Invalid number for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid %s %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
