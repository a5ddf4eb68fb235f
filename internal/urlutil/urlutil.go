// Package urlutil provides URL and artifact-name utility functions.
package urlutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
)

// Sentinel errors for URL utility operations.
var (
	ErrEmptyURL   = errors.New("url cannot be empty")
	ErrInvalidURL = errors.New("url cannot be parsed")
)

// maxStemLen caps sanitized stems so output keys stay usable on every
// filesystem and object store.
const maxStemLen = 100

// IsURL returns true if the string looks like an HTTP URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Stem returns the sanitized basename of the URL path without its
// extension. Empty when the URL has no usable basename.
//
// Examples:
//   - "https://a.com/photos/cat.png" -> "cat"
//   - "https://a.com/photos/" -> ""
//   - "https://a.com" -> ""
//   - "https://a.com/files/my photo (1).jpg" -> "my_photo__1_"
func Stem(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	return Sanitize(strings.TrimSuffix(base, path.Ext(base)))
}

// Sanitize makes a name safe for use as an artifact stem. Characters
// outside [A-Za-z0-9._-] become underscores, leading dots are trimmed so
// stems never produce hidden files, and the result is length-capped.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.TrimLeft(b.String(), ".")
	if len(s) > maxStemLen {
		s = s[:maxStemLen]
	}
	return s
}

// ShortHash returns the first 8 hex characters of the SHA-256 of s,
// enough to disambiguate artifact names within a run.
func ShortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

// Join resolves ref against base the way a browser would, turning
// relative scraped references into absolute URLs.
func Join(base, ref string) (string, error) {
	if ref == "" {
		return "", ErrEmptyURL
	}
	if base == "" {
		return ref, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: base %q", ErrInvalidURL, base)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, ref)
	}
	return b.ResolveReference(r).String(), nil
}
