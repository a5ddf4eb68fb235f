package img2pdf

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Download defaults.
const (
	DefaultConcurrency = 20
	DefaultTimeout     = 30 * time.Second
	DefaultRetries     = 3
	DefaultUserAgent   = "go-img2pdf/1.0"
)

// Batch and rendering defaults.
const (
	DefaultBatchSize = 100
	DefaultDPI       = 300
)

// DPI bounds. Below MinDPI pages exceed the PDF coordinate limit for
// ordinary photos; above MaxDPI the output is physically microscopic.
const (
	MinDPI = 18
	MaxDPI = 1200
)

// DefaultMaxPayload caps how many bytes a single response body may occupy.
const DefaultMaxPayload = 50 << 20

// WorkItem is one URL scheduled for download, tagged with its ordinal
// position in the input list. The index fixes page and report order no
// matter which download finishes first.
type WorkItem struct {
	Index int
	URL   string
}

// DownloadOutcome is the terminal result of fetching one WorkItem.
type DownloadOutcome struct {
	Item        WorkItem
	Body        []byte
	ContentType string
	Format      Format
	Filename    string // from Content-Disposition, may be empty
	Duration    time.Duration
	Err         error
}

// OK reports whether the download produced a usable payload.
func (o DownloadOutcome) OK() bool { return o.Err == nil }

// ConversionOutcome is the terminal result of rendering one item to PDF.
// In combine mode OutputKey names the shared document.
type ConversionOutcome struct {
	Item      WorkItem
	OutputKey string
	Pages     int
	Duration  time.Duration
	Err       error
}

// OK reports whether the conversion wrote its pages.
func (o ConversionOutcome) OK() bool { return o.Err == nil }

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	concurrency int
	timeout     time.Duration
	workers     int
	batchSize   int
	dpi         int
	combine     bool
	keepImages  bool
	retries     int
	hostRate    float64
	userAgent   string
	maxPayload  int64
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		concurrency: DefaultConcurrency,
		timeout:     DefaultTimeout,
		workers:     0, // auto
		batchSize:   DefaultBatchSize,
		dpi:         DefaultDPI,
		retries:     DefaultRetries,
		userAgent:   DefaultUserAgent,
		maxPayload:  DefaultMaxPayload,
	}
}

// WithConcurrency caps how many downloads may be in flight at once.
// Panics if n <= 0 (programmer error, similar to time.NewTicker).
func WithConcurrency(n int) Option {
	if n <= 0 {
		panic("img2pdf: WithConcurrency count must be positive")
	}
	return func(s *Service) {
		s.cfg.concurrency = n
	}
}

// WithRequestTimeout bounds each HTTP request, connection plus body read.
// Panics if d <= 0.
func WithRequestTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("img2pdf: WithRequestTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithWorkers sets the conversion pool size. Zero selects an automatic
// size from GOMAXPROCS. Panics if n < 0.
func WithWorkers(n int) Option {
	if n < 0 {
		panic("img2pdf: WithWorkers count cannot be negative")
	}
	return func(s *Service) {
		s.cfg.workers = n
	}
}

// WithBatchSize bounds how many payloads are held in memory together.
// Panics if n <= 0.
func WithBatchSize(n int) Option {
	if n <= 0 {
		panic("img2pdf: WithBatchSize count must be positive")
	}
	return func(s *Service) {
		s.cfg.batchSize = n
	}
}

// WithDPI sets the resolution used to derive page dimensions from pixel
// dimensions. Panics if dpi is outside [MinDPI, MaxDPI].
func WithDPI(dpi int) Option {
	if dpi < MinDPI || dpi > MaxDPI {
		panic("img2pdf: WithDPI value out of range")
	}
	return func(s *Service) {
		s.cfg.dpi = dpi
	}
}

// WithCombine renders every page into a single document instead of one
// PDF per image.
func WithCombine(combine bool) Option {
	return func(s *Service) {
		s.cfg.combine = combine
	}
}

// WithKeepImages also stores the raw downloaded payloads next to the PDFs.
func WithKeepImages(keep bool) Option {
	return func(s *Service) {
		s.cfg.keepImages = keep
	}
}

// WithRetries sets how many times a transient download failure is retried.
// Zero disables retrying. Panics if n < 0.
func WithRetries(n int) Option {
	if n < 0 {
		panic("img2pdf: WithRetries count cannot be negative")
	}
	return func(s *Service) {
		s.cfg.retries = n
	}
}

// WithHostRate limits requests per second against any single host.
// Zero disables the limiter. Panics if r < 0.
func WithHostRate(r float64) Option {
	if r < 0 {
		panic("img2pdf: WithHostRate rate cannot be negative")
	}
	return func(s *Service) {
		s.cfg.hostRate = r
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(s *Service) {
		if ua != "" {
			s.cfg.userAgent = ua
		}
	}
}

// WithMaxPayload caps the accepted response body size in bytes.
// Panics if n <= 0.
func WithMaxPayload(n int64) Option {
	if n <= 0 {
		panic("img2pdf: WithMaxPayload size must be positive")
	}
	return func(s *Service) {
		s.cfg.maxPayload = n
	}
}

// WithHTTPClient swaps the underlying HTTP client. The client's own
// Timeout is ignored; the per-request timeout still applies.
func WithHTTPClient(c *http.Client) Option {
	if c == nil {
		panic("img2pdf: WithHTTPClient client cannot be nil")
	}
	return func(s *Service) {
		s.client = c
	}
}

// WithCache reads payloads from and writes them to a shared cache,
// keyed by URL.
func WithCache(c PayloadCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithClock overrides the time source used for document metadata and
// combined-output naming. Panics if now is nil.
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("img2pdf: WithClock function cannot be nil")
	}
	return func(s *Service) {
		s.now = now
	}
}
