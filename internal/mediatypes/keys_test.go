package mediatypes

import "testing"

func TestBasename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"albumA/img1.jpg", "img1.jpg"},
		{"img1.jpg", "img1.jpg"},
		{"a/b/c/d.png", "d.png"},
		{"a/b/", "a/b/"},
	}

	for _, tt := range tests {
		if got := Basename(tt.key); got != tt.want {
			t.Errorf("Basename(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestNormalizeFolder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"gallery/a", "gallery/a/", true},
		{"/gallery/a/", "gallery/a/", true},
		{"  //gallery/a//  ", "gallery/a/", true},
		{"a", "a/", true},
		{"", "", false},
		{"   ", "", false},
		{"///", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeFolder(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeFolder(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEncodeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"a/1.jpg", "a/1.jpg"},
		{"album A/img 1.jpg", "album%20A/img%201.jpg"},
		{"a/what?.jpg", "a/what%3F.jpg"},
		{"a/#1.png", "a/%231.png"},
		{"a/100%.jpg", "a/100%25.jpg"},
	}

	for _, tt := range tests {
		if got := EncodeKey(tt.key); got != tt.want {
			t.Errorf("EncodeKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}

	if got := URL("a/b c.jpg"); got != "/a/b%20c.jpg" {
		t.Errorf("URL() = %q, want /a/b%%20c.jpg", got)
	}
}

func TestSafeZipName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		folder string
		want   string
	}{
		{"gallery/summer 2024/", "gallery_summer_2024.zip"},
		{"gallery/a/", "gallery_a.zip"},
		{"", "gallery.zip"},
		{"__x!!y__/", "x_y.zip"},
	}

	for _, tt := range tests {
		if got := SafeZipName(tt.folder); got != tt.want {
			t.Errorf("SafeZipName(%q) = %q, want %q", tt.folder, got, tt.want)
		}
	}
}
