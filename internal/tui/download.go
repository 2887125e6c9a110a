package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"gallery-viewer/internal/mediatypes"
	"gallery-viewer/internal/refresh"
)

// downloadedMsg reports a finished download.
type downloadedMsg struct {
	name string
	path string
	n    int64
	err  error
}

func (m Model) downloadOriginal(index int) tea.Cmd {
	s := m.session
	files := s.Files()
	if index < 0 || index >= len(files) {
		return nil
	}
	ctx := m.ctx
	name := mediatypes.Basename(files[index])
	m.toasts.Toast("Downloading "+name+"…", refresh.ToastDefault)
	return saveCmd(m.opts.DownloadDir, name, func(w io.Writer) (int64, error) {
		return s.DownloadOriginal(ctx, index, w)
	})
}

func (m Model) downloadArchive() tea.Cmd {
	s := m.session
	key := s.ArchiveKey()
	if key == "" {
		m.toasts.Toast("No archive for this folder", refresh.ToastDefault)
		return nil
	}
	ctx := m.ctx
	name := mediatypes.Basename(key)
	m.toasts.Toast("Downloading "+name+"…", refresh.ToastDefault)
	return saveCmd(m.opts.DownloadDir, name, func(w io.Writer) (int64, error) {
		return s.DownloadArchive(ctx, w)
	})
}

func saveCmd(dir, name string, write func(io.Writer) (int64, error)) tea.Cmd {
	return func() tea.Msg {
		path, n, err := saveFile(dir, name, write)
		return downloadedMsg{name: name, path: path, n: n, err: err}
	}
}

// saveFile streams into a hidden part file and renames it into place, so
// a failed download never leaves a truncated file under the real name.
func saveFile(dir, name string, write func(io.Writer) (int64, error)) (string, int64, error) {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		base = "download"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create download dir: %w", err)
	}

	final := filepath.Join(dir, base)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".part")
	f, err := os.Create(tmp)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", tmp, err)
	}

	n, err := write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", n, err
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", n, fmt.Errorf("save %s: %w", base, err)
	}
	return final, n, nil
}
