// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForTimeout returns a hint for downloads that hit the request deadline.
func ForTimeout() string {
	return format("for slow origins, raise --timeout or lower --concurrency")
}

// ForRateLimited returns a hint for origins that answer 429.
func ForRateLimited() string {
	return format("origin is throttling; set --host-rate to pace requests")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-img2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/go-img2pdf) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-img2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForDestination returns hints for unwritable output destinations.
func ForDestination(dest string) string {
	hints := []string{"check the path exists and is writable"}
	if strings.Contains(dest, "://") {
		hints = append(hints, "verify bucket credentials and region")
	}
	return formatHints(hints)
}

// ForCache returns a hint for unreachable payload caches.
func ForCache() string {
	return format("verify redis is reachable, or drop --cache-url to run without caching")
}

// ForNoInput returns a hint when a command received nothing to convert.
func ForNoInput() string {
	return format("pass URLs as arguments, or use --file / --csv for lists")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
