package img2pdf

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/alnah/go-img2pdf/internal/urlutil"
)

// namer builds artifact stems for one run. It carries no per-item state,
// so it is safe to share across download goroutines.
type namer struct {
	width int
	multi bool
}

func newNamer(items []WorkItem) *namer {
	maxIdx := 0
	for _, it := range items {
		if it.Index > maxIdx {
			maxIdx = it.Index
		}
	}
	return &namer{
		width: len(strconv.Itoa(maxIdx)),
		multi: len(items) > 1,
	}
}

// stem resolves the artifact stem for one item: the Content-Disposition
// filename first, then the URL basename, then an index-plus-hash
// fallback that can never collide. Multi-item runs prefix the
// zero-padded ordinal, which keeps stems unique and makes a sorted
// directory listing follow input order.
func (n *namer) stem(item WorkItem, filename string) string {
	base := ""
	if filename != "" {
		base = urlutil.Sanitize(strings.TrimSuffix(filename, path.Ext(filename)))
	}
	if base == "" {
		base = urlutil.Stem(item.URL)
	}
	if base == "" {
		base = fmt.Sprintf("img_%d_%s", item.Index, urlutil.ShortHash(item.URL))
	}

	if n.multi {
		return fmt.Sprintf("%0*d_%s", n.width, item.Index, base)
	}
	return base
}
