package tui

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "downloads")
	path, n, err := saveFile(dir, "one.jpg", func(w io.Writer) (int64, error) {
		k, err := io.WriteString(w, "jpeg bytes")
		return int64(k), err
	})
	if err != nil {
		t.Fatalf("saveFile: %v", err)
	}
	if path != filepath.Join(dir, "one.jpg") || n != 10 {
		t.Errorf("saveFile = (%q, %d)", path, n)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "jpeg bytes" {
		t.Errorf("saved %q, %v", data, err)
	}
	assertOnlyFiles(t, dir, "one.jpg")
}

func TestSaveFileFailureLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	boom := errors.New("connection reset")
	_, _, err := saveFile(dir, "big.zip", func(w io.Writer) (int64, error) {
		_, _ = io.WriteString(w, "partial")
		return 7, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	assertOnlyFiles(t, dir)
}

func TestSaveFileSanitizesName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, _, err := saveFile(dir, "..", func(w io.Writer) (int64, error) { return 0, nil })
	if err != nil {
		t.Fatalf("saveFile: %v", err)
	}
	if path != filepath.Join(dir, "download") {
		t.Errorf("path = %q", path)
	}
}

func assertOnlyFiles(t *testing.T, dir string, want ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	if len(got) != len(want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("files = %v, want %v", got, want)
		}
	}
}
