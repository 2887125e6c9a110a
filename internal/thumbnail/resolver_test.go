package thumbnail

import (
	"reflect"
	"testing"
)

func TestThumbKey(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultPolicy())

	tests := []struct {
		name   string
		key    string
		ext    string
		want   string
		wantOK bool
	}{
		{"nested album", "gallery/summer/beach.jpeg", ExtJPEG, "thumbs/summer/thumb-of-beach.jpg", true},
		{"deep album png", "gallery/a/b/c.webp", ExtPNG, "thumbs/a/b/thumb-of-c.png", true},
		{"no album", "gallery/top.png", ExtJPEG, "thumbs/thumb-of-top.jpg", true},
		{"repeated separators", "gallery//a//x.jpg", ExtJPEG, "thumbs/a/thumb-of-x.jpg", true},
		{"multiple dots", "gallery/a/x.y.jpg", ExtJPEG, "thumbs/a/thumb-of-x.y.jpg", true},
		{"outside prefix", "other/a/x.jpg", ExtJPEG, "", false},
		{"prefix only", "gallery/", ExtJPEG, "", false},
		{"empty", "", ExtJPEG, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := r.ThumbKey(tt.key, tt.ext)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ThumbKey(%q, %q) = (%q, %v), want (%q, %v)", tt.key, tt.ext, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCandidateKeys_EmptySourcePrefix(t *testing.T) {
	t.Parallel()

	r := NewResolver(Policy{ThumbRoot: "thumbs/", FilePrefix: "thumb-of-"})

	got := r.CandidateKeys("a/1.jpg")
	want := []string{"thumbs/a/thumb-of-1.jpg", "thumbs/a/thumb-of-1.png", "a/1.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CandidateKeys(a/1.jpg) = %v, want %v", got, want)
	}

	got = r.CandidateKeys("a/2.mp4")
	want = []string{"thumbs/a/thumb-of-2.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CandidateKeys(a/2.mp4) = %v, want %v", got, want)
	}

	if got := r.CandidateKeys("a/notes.txt"); len(got) != 0 {
		t.Errorf("CandidateKeys(a/notes.txt) = %v, want empty", got)
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultPolicy())

	got := r.Candidates("gallery/my album/img 1.jpg")
	want := []string{
		"/thumbs/my%20album/thumb-of-img%201.jpg",
		"/thumbs/my%20album/thumb-of-img%201.png",
		"/gallery/my%20album/img%201.jpg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}

	if got := r.Candidates("elsewhere/img.jpg"); got != nil {
		t.Errorf("Candidates() outside prefix = %v, want nil", got)
	}
}

func TestTileCandidates(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultPolicy())

	tests := []struct {
		name string
		key  string
		want []string
	}{
		{
			name: "image falls back to original",
			key:  "gallery/a/1.jpg",
			want: []string{"/thumbs/a/thumb-of-1.jpg", "/thumbs/a/thumb-of-1.png", "/gallery/a/1.jpg"},
		},
		{
			name: "video never proposes itself",
			key:  "gallery/a/2.mp4",
			want: []string{"/thumbs/a/thumb-of-2.jpg"},
		},
		{
			name: "image outside prefix uses original only",
			key:  "loose/1.jpg",
			want: []string{"/loose/1.jpg"},
		},
		{
			name: "video outside prefix has nothing",
			key:  "loose/2.mp4",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := r.TileCandidates(tt.key)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TileCandidates(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestModalCandidatesAndBackdrop(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultPolicy())

	got := r.ModalCandidates("gallery/a/1.png")
	want := []string{"/thumbs/a/thumb-of-1.jpg", "/thumbs/a/thumb-of-1.png", "/gallery/a/1.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ModalCandidates() = %v, want %v", got, want)
	}

	if got := r.ModalCandidates("loose/1.png"); !reflect.DeepEqual(got, []string{"/loose/1.png"}) {
		t.Errorf("ModalCandidates() outside prefix = %v", got)
	}

	if got := r.Backdrop("gallery/a/1.png"); got != "/thumbs/a/thumb-of-1.jpg" {
		t.Errorf("Backdrop() = %q", got)
	}
	if got := r.Backdrop("loose/1.png"); got != "/loose/1.png" {
		t.Errorf("Backdrop() outside prefix = %q", got)
	}
	if got := r.OriginalURL("gallery/a/1.png"); got != "/gallery/a/1.png" {
		t.Errorf("OriginalURL() = %q", got)
	}
}

func TestSourceDir(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultPolicy())
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"thumbs/a/thumb-of-1.jpg", "gallery/a/", true},
		{"thumbs/a/b/thumb-of-2.png", "gallery/a/b/", true},
		{"thumbs/thumb-of-top.jpg", "gallery/", true},
		{"thumbs/a/1.jpg", "", false},
		{"thumbs/a/thumb-of-", "", false},
		{"gallery/a/1.jpg", "", false},
	}
	for _, tt := range tests {
		got, ok := r.SourceDir(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("SourceDir(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}

	// Round trip with ThumbKey.
	thumb, _ := r.ThumbKey("gallery/x/y/z.webp", ExtJPEG)
	if dir, ok := r.SourceDir(thumb); !ok || dir != "gallery/x/y/" {
		t.Errorf("SourceDir(ThumbKey()) = %q, %v", dir, ok)
	}
}
