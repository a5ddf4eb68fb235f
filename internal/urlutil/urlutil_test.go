package urlutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"http", "http://example.com/a.png", true},
		{"https", "https://example.com/a.png", true},
		{"ftp", "ftp://example.com/a.png", false},
		{"relative path", "./images/a.png", false},
		{"bare name", "a.png", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsURL(tt.in); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "exists.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("FileExists() = false for existing file")
	}
	if FileExists(filepath.Join(dir, "missing.txt")) {
		t.Error("FileExists() = true for missing file")
	}
	if FileExists(dir) {
		t.Error("FileExists() = true for directory")
	}
}

func TestStem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"simple", "https://a.com/photos/cat.png", "cat"},
		{"query ignored", "https://a.com/cat.jpg?w=600", "cat"},
		{"no extension", "https://a.com/photos/cat", "cat"},
		{"trailing slash", "https://a.com/photos/", ""},
		{"host only", "https://a.com", ""},
		{"spaces and parens", "https://a.com/my photo (1).jpg", "my_photo__1_"},
		{"encoded characters", "https://a.com/caf%C3%A9.png", "caf_"},
		{"unparseable", "https://a.com/%zz.png", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Stem(tt.url); got != tt.want {
				t.Errorf("Stem(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "photo-01_final.v2", "photo-01_final.v2"},
		{"spaces", "my photo", "my_photo"},
		{"path separators", "a/b\\c", "a_b_c"},
		{"leading dots trimmed", "..hidden", "hidden"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("length capped", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("a", 300)
		if got := Sanitize(long); len(got) != maxStemLen {
			t.Errorf("Sanitize(long) length = %d, want %d", len(got), maxStemLen)
		}
	})
}

func TestShortHash(t *testing.T) {
	t.Parallel()

	h1 := ShortHash("https://a.com/x.png")
	h2 := ShortHash("https://a.com/y.png")

	if len(h1) != 8 {
		t.Errorf("ShortHash length = %d, want 8", len(h1))
	}
	if h1 == h2 {
		t.Error("different inputs produced the same hash")
	}
	if h1 != ShortHash("https://a.com/x.png") {
		t.Error("ShortHash is not deterministic")
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		ref     string
		want    string
		wantErr bool
	}{
		{"absolute ref wins", "https://a.com/page", "https://b.com/x.png", "https://b.com/x.png", false},
		{"relative ref", "https://a.com/gallery/page.html", "images/x.png", "https://a.com/gallery/images/x.png", false},
		{"root relative ref", "https://a.com/gallery/page.html", "/images/x.png", "https://a.com/images/x.png", false},
		{"no base passes through", "", "images/x.png", "images/x.png", false},
		{"empty ref", "https://a.com", "", "", true},
		{"bad base", "https://a.com/%zz", "x.png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Join(tt.base, tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Join(%q, %q) expected error, got %q", tt.base, tt.ref, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Join(%q, %q) unexpected error: %v", tt.base, tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("Join(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}
