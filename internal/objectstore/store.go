package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"gallery-viewer/internal/filesystem"
	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/mediatypes"
)

// Errors returned by Store.
var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

const tempPrefix = ".tmp-"

// Object describes a stored object.
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store serves objects from a directory.
type Store struct {
	root  string
	retry filesystem.RetryConfig
}

// New creates a Store rooted at dir, which must exist.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := filesystem.StatWithRetry(abs, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("object store root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("object store root %s is not a directory", abs)
	}
	return &Store{root: abs, retry: filesystem.DefaultRetryConfig()}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

// path resolves key to a filesystem path inside the root.
func (s *Store) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." || strings.HasPrefix(seg, tempPrefix) {
			return "", ErrInvalidKey
		}
	}
	clean := path.Clean(key)
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// List returns every object whose key starts with prefix, sorted by key.
// Hidden files and directories are skipped.
func (s *Store) List(ctx context.Context, prefix string) ([]Object, error) {
	start := s.root
	if dir := path.Dir(prefix + "x"); dir != "." {
		p, err := s.path(dir)
		if err != nil {
			return nil, err
		}
		start = p
	}

	var out []Object
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if strings.HasPrefix(d.Name(), ".") && p != start {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logging.Debug("objectstore: skipping %s: %v", key, err)
			return nil
		}
		out = append(out, Object{Key: key, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Stat returns the object at key.
func (s *Store) Stat(key string) (Object, error) {
	p, err := s.path(key)
	if err != nil {
		return Object{}, err
	}
	info, err := filesystem.StatWithRetry(p, s.retry)
	if errors.Is(err, fs.ErrNotExist) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, err
	}
	if info.IsDir() {
		return Object{}, ErrNotFound
	}
	return Object{Key: key, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Exists reports whether key names a stored object.
func (s *Store) Exists(key string) bool {
	_, err := s.Stat(key)
	return err == nil
}

// Open opens the object at key for reading.
func (s *Store) Open(key string) (*os.File, Object, error) {
	obj, err := s.Stat(key)
	if err != nil {
		return nil, Object{}, err
	}
	p, _ := s.path(key)
	f, err := filesystem.OpenWithRetry(p, s.retry)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Object{}, ErrNotFound
	}
	if err != nil {
		return nil, Object{}, err
	}
	return f, obj, nil
}

// Put stores the contents of r at key, replacing any existing object.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (err error) {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", key, err)
	}

	tmp := filepath.Join(filepath.Dir(p), tempPrefix+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = io.Copy(f, contextReader{ctx: ctx, r: r}); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err = filesystem.RenameWithRetry(tmp, p, s.retry); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

// ArchiveKey returns the key of the precomputed archive for folder, such
// as "gallery/a/gallery_a.zip". The second result is false when no archive
// has been stored.
func (s *Store) ArchiveKey(folder string) (string, bool) {
	key := ArchiveKeyFor(folder)
	return key, s.Exists(key)
}

// ArchiveKeyFor returns where the archive of folder is stored. Archives
// live inside the folder so that a folder grant covers them.
func ArchiveKeyFor(folder string) string {
	return folder + mediatypes.SafeZipName(folder)
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
