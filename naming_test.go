package img2pdf

import (
	"strings"
	"testing"

	"github.com/alnah/go-img2pdf/internal/urlutil"
)

func TestNamer_Stem(t *testing.T) {
	t.Parallel()

	single := newNamer([]WorkItem{{Index: 0, URL: "https://a.com/cat.png"}})

	tests := []struct {
		name     string
		item     WorkItem
		filename string
		want     string
	}{
		{
			name: "url basename",
			item: WorkItem{Index: 0, URL: "https://a.com/cat.png"},
			want: "cat",
		},
		{
			name:     "content disposition wins",
			item:     WorkItem{Index: 0, URL: "https://a.com/download?id=17"},
			filename: "holiday scan.jpeg",
			want:     "holiday_scan",
		},
		{
			name: "hash fallback without basename",
			item: WorkItem{Index: 0, URL: "https://a.com/"},
			want: "img_0_" + urlutil.ShortHash("https://a.com/"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := single.stem(tt.item, tt.filename); got != tt.want {
				t.Errorf("stem() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNamer_MultiPrefixesOrdinal(t *testing.T) {
	t.Parallel()

	items := make([]WorkItem, 12)
	for i := range items {
		items[i] = WorkItem{Index: i, URL: "https://a.com/cat.png"}
	}
	n := newNamer(items)

	if got, want := n.stem(items[0], ""), "00_cat"; got != want {
		t.Errorf("stem(first) = %q, want %q", got, want)
	}
	if got, want := n.stem(items[11], ""), "11_cat"; got != want {
		t.Errorf("stem(last) = %q, want %q", got, want)
	}
}

func TestNamer_WidthFollowsMaxIndex(t *testing.T) {
	t.Parallel()

	items := make([]WorkItem, 150)
	for i := range items {
		items[i] = WorkItem{Index: i, URL: "https://a.com/cat.png"}
	}
	n := newNamer(items)

	got := n.stem(items[3], "")
	if !strings.HasPrefix(got, "003_") {
		t.Errorf("stem() = %q, want 003_ prefix for a 150-item run", got)
	}
}

func TestNamer_DuplicateBasenamesStayUnique(t *testing.T) {
	t.Parallel()

	items := []WorkItem{
		{Index: 0, URL: "https://a.com/gallery1/cat.png"},
		{Index: 1, URL: "https://a.com/gallery2/cat.png"},
	}
	n := newNamer(items)

	s0 := n.stem(items[0], "")
	s1 := n.stem(items[1], "")
	if s0 == s1 {
		t.Errorf("stems collided: %q", s0)
	}
}
