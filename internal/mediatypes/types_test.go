package mediatypes

import (
	"testing"
)

func TestGetFileType(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want FileType
	}{
		{name: "JPEG image", ext: ".jpg", want: FileTypeImage},
		{name: "AVIF image", ext: ".avif", want: FileTypeImage},
		{name: "BMP image", ext: ".bmp", want: FileTypeImage},
		{name: "MP4 video", ext: ".mp4", want: FileTypeVideo},
		{name: "M4V video", ext: ".m4v", want: FileTypeVideo},
		{name: "MKV is not a gallery video", ext: ".mkv", want: FileTypeOther},
		{name: "Unknown extension", ext: ".xyz", want: FileTypeOther},
		{name: "Empty extension", ext: "", want: FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetFileType(tt.ext)
			if got != tt.want {
				t.Errorf("GetFileType(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want FileType
	}{
		{"albumA/img1.jpg", FileTypeImage},
		{"albumA/IMG1.JPEG", FileTypeImage},
		{"a/b/c.WebP", FileTypeImage},
		{"clip.MOV", FileTypeVideo},
		{"a/2.mp4", FileTypeVideo},
		{"notes.txt", FileTypeOther},
		{"archive.jpg.zip", FileTypeOther},
		{"noext", FileTypeOther},
		{"folder.jpg/", FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.key); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestIsRenderable(t *testing.T) {
	t.Parallel()

	files := []string{"a/1.jpg", "a/2.mp4", "a/3.png", "a/readme.md"}

	count := func(videos bool) int {
		n := 0
		for _, f := range files {
			if IsRenderable(f, videos) {
				n++
			}
		}
		return n
	}

	if got := count(false); got != 2 {
		t.Errorf("renderable without videos = %d, want 2", got)
	}
	if got := count(true); got != 3 {
		t.Errorf("renderable with videos = %d, want 3", got)
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"a/1.jpg", "image/jpeg"},
		{"a/1.PNG", "image/png"},
		{"a/2.mov", "video/quicktime"},
		{"archives/a.zip", "application/zip"},
		{"a/unknown.bin", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := MimeType(tt.key); got != tt.want {
			t.Errorf("MimeType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
