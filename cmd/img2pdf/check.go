package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	img2pdf "github.com/alnah/go-img2pdf"
)

// checkResult is the probe outcome for one URL.
type checkResult struct {
	URL         string
	Status      int
	ContentType string
	Err         error
}

// imageLike reports whether the declared content type claims an image.
func (r checkResult) imageLike() bool {
	return strings.HasPrefix(r.ContentType, "image/")
}

// runCheck probes each URL with a HEAD request and reports status and
// declared content type without downloading anything. Useful to vet a
// list before a long run.
func runCheck(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	timeout := fs.DurationP("timeout", "t", 10*time.Second, "per-request deadline")
	userAgent := fs.String("user-agent", img2pdf.DefaultUserAgent, "User-Agent header")
	fs.Usage = func() { printCheckUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	urls := fs.Args()
	if len(urls) == 0 {
		printCheckUsage(env.Stderr)
		return ExitUsage
	}

	client := &http.Client{}
	failures := 0
	for _, rawURL := range urls {
		res := checkURL(ctx, client, rawURL, *timeout, *userAgent)
		printCheckResult(env.Stdout, res)
		if res.Err != nil || res.Status < http.StatusOK || res.Status > 299 || !res.imageLike() {
			failures++
		}
	}

	if failures > 0 {
		fmt.Fprintf(env.Stdout, "%d of %d URLs not usable\n", failures, len(urls))
		return ExitGeneral
	}
	return ExitSuccess
}

// checkURL issues one HEAD request under its own deadline.
func checkURL(ctx context.Context, client *http.Client, rawURL string, timeout time.Duration, userAgent string) checkResult {
	res := checkResult{URL: rawURL}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		res.Err = err
		return res
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")
	return res
}

func printCheckResult(w io.Writer, r checkResult) {
	switch {
	case r.Err != nil:
		fmt.Fprintf(w, "[FAIL] %s: %v\n", r.URL, r.Err)
	case r.Status < http.StatusOK || r.Status > 299:
		fmt.Fprintf(w, "[FAIL] %s: HTTP %d\n", r.URL, r.Status)
	case !r.imageLike():
		fmt.Fprintf(w, "[WARN] %s: HTTP %d, content type %q is not an image\n", r.URL, r.Status, r.ContentType)
	default:
		fmt.Fprintf(w, "[OK]   %s: HTTP %d, %s\n", r.URL, r.Status, r.ContentType)
	}
}
