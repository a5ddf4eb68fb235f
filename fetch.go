package img2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// CachedPayload is a downloaded body held in a shared cache, keyed by URL.
type CachedPayload struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type"`
	Filename    string    `json:"filename,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// PayloadCache stores downloaded payloads across runs. Implementations
// own expiry and must treat every failure as a miss; a broken cache never
// fails a download.
type PayloadCache interface {
	Get(ctx context.Context, url string) (*CachedPayload, bool)
	Set(ctx context.Context, url string, p *CachedPayload)
}

// retryPolicy controls backoff between attempts at a transient failure.
type retryPolicy struct {
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	multiplier     float64
}

func defaultRetryPolicy(maxRetries int) retryPolicy {
	return retryPolicy{
		maxRetries:     maxRetries,
		initialBackoff: 500 * time.Millisecond,
		maxBackoff:     10 * time.Second,
		multiplier:     2.0,
	}
}

// jitter spreads a backoff to 80-120% of its nominal value so retries
// from many items do not land on the origin in lockstep.
func jitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
}

// hostLimiters lazily builds one token bucket per origin host.
type hostLimiters struct {
	mu       sync.Mutex
	rate     float64
	limiters map[string]*rate.Limiter
}

func newHostLimiters(perHostRate float64) *hostLimiters {
	if perHostRate <= 0 {
		return nil
	}
	return &hostLimiters{
		rate:     perHostRate,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (h *hostLimiters) wait(ctx context.Context, host string) error {
	h.mu.Lock()
	lim, ok := h.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(h.rate), 1)
		h.limiters[host] = lim
	}
	h.mu.Unlock()
	return lim.Wait(ctx)
}

// fetcher downloads payloads under a fixed concurrency gate. All failures
// come back inside the DownloadOutcome; Fetch itself never fails.
type fetcher struct {
	client     *http.Client
	gate       chan struct{}
	limiters   *hostLimiters
	cache      PayloadCache
	retry      retryPolicy
	timeout    time.Duration
	userAgent  string
	maxPayload int64
	log        zerolog.Logger
}

func newFetcher(cfg serviceConfig, client *http.Client, cache PayloadCache, log zerolog.Logger) *fetcher {
	return &fetcher{
		client:     client,
		gate:       make(chan struct{}, cfg.concurrency),
		limiters:   newHostLimiters(cfg.hostRate),
		cache:      cache,
		retry:      defaultRetryPolicy(cfg.retries),
		timeout:    cfg.timeout,
		userAgent:  cfg.userAgent,
		maxPayload: cfg.maxPayload,
		log:        log,
	}
}

// Fetch downloads one item and classifies its payload. URL validation
// happens before any network traffic, and cache hits return without
// taking a concurrency slot. Cancellation is honored only before a slot
// is taken; a request already on the wire runs to its own deadline.
func (f *fetcher) Fetch(ctx context.Context, item WorkItem) (out DownloadOutcome) {
	out.Item = item
	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		fetchDuration.Observe(out.Duration.Seconds())
		fetchTotal.WithLabelValues(resultLabel(out.Err)).Inc()
		if out.Err == nil {
			payloadBytes.Observe(float64(len(out.Body)))
		}
	}()

	u, err := parseItemURL(item.URL)
	if err != nil {
		out.Err = err
		return out
	}

	if f.cache != nil {
		if p, ok := f.cache.Get(ctx, item.URL); ok {
			if format, cerr := Classify(p.Body, p.ContentType, item.URL); cerr == nil {
				f.log.Debug().Str("url", item.URL).Msg("cache hit")
				out.Body = p.Body
				out.ContentType = p.ContentType
				out.Filename = p.Filename
				out.Format = format
				return out
			}
			// Cached payload no longer classifies, refetch.
		}
	}

	// Checked before the select, which picks randomly when both the
	// gate and Done are ready.
	if ctx.Err() != nil {
		out.Err = ErrCancelled
		return out
	}
	select {
	case f.gate <- struct{}{}:
	case <-ctx.Done():
		out.Err = ErrCancelled
		return out
	}
	defer func() { <-f.gate }()

	fetchInFlight.Inc()
	defer fetchInFlight.Dec()

	if f.limiters != nil {
		if err := f.limiters.wait(ctx, u.Host); err != nil {
			out.Err = ErrCancelled
			return out
		}
	}

	body, contentType, filename, err := f.download(ctx, item.URL)
	if err != nil {
		out.Err = err
		return out
	}

	format, err := Classify(body, contentType, item.URL)
	if err != nil {
		out.Err = err
		return out
	}

	out.Body = body
	out.ContentType = contentType
	out.Filename = filename
	out.Format = format

	if f.cache != nil {
		f.cache.Set(ctx, item.URL, &CachedPayload{
			Body:        body,
			ContentType: contentType,
			Filename:    filename,
			FetchedAt:   time.Now(),
		})
	}
	return out
}

// download runs the attempt loop. Only transient failures are retried:
// network errors and 5xx or 429 responses. Client errors and per-request
// timeouts are final. Cancellation during a backoff wait abandons the
// remaining attempts and reports the last real failure.
func (f *fetcher) download(ctx context.Context, rawURL string) ([]byte, string, string, error) {
	backoff := f.retry.initialBackoff
	var lastErr error

	for attempt := 0; attempt <= f.retry.maxRetries; attempt++ {
		if attempt > 0 {
			fetchRetries.Inc()
			wait := jitter(backoff)
			f.log.Debug().
				Str("url", rawURL).
				Int("attempt", attempt+1).
				Dur("backoff", wait).
				Msg("retrying download")

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, "", "", lastErr
			}
			backoff = min(time.Duration(float64(backoff)*f.retry.multiplier), f.retry.maxBackoff)
		}

		body, contentType, filename, err := f.attempt(ctx, rawURL)
		if err == nil {
			return body, contentType, filename, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, "", "", err
		}
	}
	return nil, "", "", lastErr
}

// attempt performs a single request. The request context is detached from
// run cancellation so an interrupt never truncates a body mid-read; the
// per-request deadline still bounds it.
func (f *fetcher) attempt(ctx context.Context, rawURL string) ([]byte, string, string, error) {
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", "", classifyTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, "", "", &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxPayload+1))
	if err != nil {
		return nil, "", "", classifyTransportErr(err)
	}
	if int64(len(body)) > f.maxPayload {
		return nil, "", "", fmt.Errorf("%w: body exceeds %d bytes", ErrPayloadTooLarge, f.maxPayload)
	}

	contentType := resp.Header.Get("Content-Type")
	filename := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	return body, contentType, filename, nil
}

// retryable reports whether another attempt could plausibly succeed.
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}
	if errors.Is(err, ErrTimeout) {
		// A full deadline already passed; repeating it rarely helps
		// and multiplies worst-case latency per item.
		return false
	}
	return errors.Is(err, ErrNetwork)
}

func classifyTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func parseItemURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

func filenameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
