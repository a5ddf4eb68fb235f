package img2pdf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gocloud.dev/blob"
)

// Artifact layout under the output destination.
const (
	pdfPrefix = "pdfs/"
	imgPrefix = "imgs/"
)

// progressInterval is how often the monitor goroutine logs live counters.
const progressInterval = 5 * time.Second

// Service orchestrates batched download and conversion of image URLs
// into PDF artifacts.
type Service struct {
	cfg    serviceConfig
	bucket *blob.Bucket
	client *http.Client
	cache  PayloadCache
	log    zerolog.Logger
	now    func() time.Time

	fetcher *fetcher
	pool    *renderPool
}

// New creates a Service writing artifacts into bucket.
// Use options to customize behavior (e.g., WithConcurrency).
// Panics if bucket is nil; the caller keeps ownership of it.
func New(bucket *blob.Bucket, opts ...Option) *Service {
	if bucket == nil {
		panic("img2pdf: New requires a bucket")
	}

	s := &Service{
		cfg:    defaultServiceConfig(),
		bucket: bucket,
		log:    zerolog.Nop(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create the HTTP client if not injected (e.g., by tests)
	if s.client == nil {
		s.client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: s.cfg.concurrency,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	s.fetcher = newFetcher(s.cfg, s.client, s.cache, s.log.With().Str("component", "fetch").Logger())
	s.pool = newRenderPool(ResolveWorkers(s.cfg.workers))
	return s
}

// Close releases pooled renderers and idle HTTP connections. The bucket
// stays open for the caller.
func (s *Service) Close() {
	s.pool.Close()
	s.client.CloseIdleConnections()
}

// Run downloads every URL and converts the payloads to PDF. Ordinal
// indexes are assigned in input order.
func (s *Service) Run(ctx context.Context, urls []string) (*Report, error) {
	items := make([]WorkItem, len(urls))
	for i, u := range urls {
		items[i] = WorkItem{Index: i, URL: strings.TrimSpace(u)}
	}
	return s.RunItems(ctx, items)
}

// RunItems is Run for callers that assign their own ordinal indexes,
// such as a retry of the failed subset of an earlier run. It returns a
// Report accounting for exactly one terminal outcome per item no matter
// how the run ends. Only two failures abort instead: an unwritable
// destination, and a combine-mode document that ends up with zero pages.
func (s *Service) RunItems(ctx context.Context, items []WorkItem) (*Report, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	start := s.now()
	stats := newRunStats(start)
	if len(items) == 0 {
		return stats.finalize(s.now()), nil
	}

	if err := s.probeDestination(ctx); err != nil {
		return nil, err
	}

	var prog progress
	monCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go s.monitor(monCtx, &prog, len(items))

	names := newNamer(items)
	batches := splitBatches(items, s.cfg.batchSize)

	s.log.Info().
		Int("items", len(items)).
		Int("batches", len(batches)).
		Int("concurrency", s.cfg.concurrency).
		Int("workers", s.pool.Size()).
		Bool("combine", s.cfg.combine).
		Msg("run started")

	// Batches hand completed work to the reduction loop in input order.
	// The unbuffered channel lets at most one batch run ahead of the one
	// being reduced, bounding resident payloads to two batches.
	type batchWork struct {
		index   int
		results []itemResult
		done    chan struct{}
	}
	work := make(chan *batchWork)

	go func() {
		defer close(work)
		for bi, batch := range batches {
			bw := &batchWork{
				index:   bi,
				results: make([]itemResult, len(batch)),
				done:    make(chan struct{}),
			}
			work <- bw
			go func(batch []WorkItem, bw *batchWork) {
				defer close(bw.done)
				s.runBatch(ctx, batch, names, bw.results, &prog)
			}(batch, bw)
		}
	}()

	var pages []page         // combine mode, survives batch reduction
	var pending []itemResult // combine mode successes awaiting the document write

	for bw := range work {
		<-bw.done
		for _, r := range bw.results {
			if s.cfg.combine && r.err == nil {
				pages = append(pages, *r.pg)
				r.pg = nil
				pending = append(pending, r)
				continue
			}
			stats.record(r)
		}
		s.log.Debug().
			Int("batch", bw.index+1).
			Int("of", len(batches)).
			Msg("batch reduced")
	}

	var runErr error
	if s.cfg.combine {
		key, err := s.writeCombined(ctx, pages)
		if err != nil {
			for _, r := range pending {
				r.stage = stageConvert
				r.err = err
				stats.record(r)
			}
			if len(pending) == 0 && ctx.Err() == nil {
				runErr = err
			}
		} else {
			for _, r := range pending {
				r.outputKey = key
				r.pages = 1
				stats.record(r)
			}
		}
	}

	report := stats.finalize(s.now())
	s.logSummary(report)
	return report, runErr
}

// runBatch downloads a batch under the concurrency gate and pipes each
// successful payload straight into the conversion pool, so a batch's two
// phases overlap item by item. Every slot in results is terminal when
// this returns.
func (s *Service) runBatch(ctx context.Context, items []WorkItem, names *namer, results []itemResult, prog *progress) {
	jobs := make(chan convertJob)

	var cwg sync.WaitGroup
	for w := 0; w < s.pool.Size(); w++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			s.convertWorker(ctx, jobs, results, prog)
		}()
	}

	var dwg sync.WaitGroup
	for i, item := range items {
		dwg.Add(1)
		go func(slot int, item WorkItem) {
			defer dwg.Done()

			out := s.fetcher.Fetch(ctx, item)
			if out.Err != nil {
				results[slot] = itemResult{item: item, stage: stageDownload, err: out.Err}
				prog.failed.Add(1)
				s.log.Warn().
					Str("url", item.URL).
					Str("kind", string(KindOf(out.Err))).
					Err(out.Err).
					Msg("download failed")
				return
			}
			prog.fetched.Add(1)
			s.log.Debug().
				Str("url", item.URL).
				Int("bytes", len(out.Body)).
				Str("format", string(out.Format)).
				Msg("downloaded")

			stem := names.stem(item, out.Filename)
			if s.cfg.keepImages {
				s.saveOriginal(ctx, stem, out)
			}

			job := convertJob{slot: slot, item: item, body: out.Body}
			if !s.cfg.combine {
				job.key = pdfPrefix + stem + ".pdf"
			}
			jobs <- job
		}(i, item)
	}

	dwg.Wait()
	close(jobs)
	cwg.Wait()
}

// convertJob carries one downloaded payload to the conversion pool.
type convertJob struct {
	slot int
	item WorkItem
	body []byte
	key  string // empty in combine mode
}

func (s *Service) convertWorker(ctx context.Context, jobs <-chan convertJob, results []itemResult, prog *progress) {
	for job := range jobs {
		start := time.Now()
		res := s.convertOne(ctx, job)
		convertDuration.Observe(time.Since(start).Seconds())
		convertTotal.WithLabelValues(resultLabel(res.err)).Inc()

		if res.err != nil {
			prog.failed.Add(1)
			s.log.Warn().
				Str("url", job.item.URL).
				Str("kind", string(KindOf(res.err))).
				Err(res.err).
				Msg("conversion failed")
		} else {
			prog.converted.Add(1)
			if res.outputKey != "" {
				s.log.Debug().
					Str("url", job.item.URL).
					Str("key", res.outputKey).
					Msg("converted")
			}
		}
		results[job.slot] = res
	}
}

// convertOne renders a payload and, outside combine mode, writes its
// single-page document. Jobs found after cancellation are not started;
// a write interrupted mid-flight leaves no partial artifact because
// blob writers commit on Close.
func (s *Service) convertOne(ctx context.Context, job convertJob) itemResult {
	res := itemResult{item: job.item, stage: stageConvert}
	if ctx.Err() != nil {
		res.err = ErrCancelled
		return res
	}

	r := s.pool.Acquire()
	pg, err := r.renderPage(job.item.Index, job.body)
	s.pool.Release(r)
	if err != nil {
		res.err = err
		return res
	}

	if s.cfg.combine {
		res.pg = &pg
		return res
	}

	doc, err := buildDocument([]page{pg}, s.cfg.dpi, s.now())
	if err != nil {
		res.err = err
		return res
	}
	if err := s.writeArtifact(ctx, job.key, "application/pdf", doc); err != nil {
		if ctx.Err() != nil {
			res.err = ErrCancelled
		} else {
			res.err = err
		}
		return res
	}
	pagesWritten.Inc()
	res.outputKey = job.key
	res.pages = 1
	return res
}

// writeCombined assembles all collected pages into one document in
// ordinal order and commits it under a timestamped key.
func (s *Service) writeCombined(ctx context.Context, pages []page) (string, error) {
	if len(pages) == 0 {
		return "", ErrEmptyDocument
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].index < pages[j].index })

	doc, err := buildDocument(pages, s.cfg.dpi, s.now())
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%scombined_%d.pdf", pdfPrefix, s.now().Unix())
	if err := s.writeArtifact(ctx, key, "application/pdf", doc); err != nil {
		if ctx.Err() != nil {
			return "", ErrCancelled
		}
		return "", err
	}
	pagesWritten.Add(float64(len(pages)))
	s.log.Info().Str("key", key).Int("pages", len(pages)).Msg("combined document written")
	return key, nil
}

// saveOriginal stores the raw payload next to the PDFs. Best effort: a
// failure here never fails the item.
func (s *Service) saveOriginal(ctx context.Context, stem string, out DownloadOutcome) {
	key := imgPrefix + stem + "." + out.Format.Ext()
	contentType := out.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.writeArtifact(ctx, key, contentType, out.Body); err != nil {
		s.log.Warn().Str("key", key).Err(err).Msg("keep-images write failed")
	}
}

// writeArtifact commits data under key. blob writers buffer until Close,
// so a failed or cancelled write leaves nothing behind.
func (s *Service) writeArtifact(ctx context.Context, key, contentType string, data []byte) error {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// probeDestination verifies the bucket accepts writes before any work is
// admitted. A read-only or misconfigured destination fails the run once
// instead of once per item.
func (s *Service) probeDestination(ctx context.Context) error {
	const key = ".img2pdf-probe"
	if err := s.writeArtifact(ctx, key, "application/octet-stream", []byte("probe")); err != nil {
		return fmt.Errorf("%w: %v", ErrDestination, errors.Unwrap(err))
	}
	_ = s.bucket.Delete(ctx, key)
	return nil
}

// monitor logs live progress counters until the run finishes.
func (s *Service) monitor(ctx context.Context, prog *progress, total int) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fetched := prog.fetched.Load()
			converted := prog.converted.Load()
			failed := prog.failed.Load()
			s.log.Info().
				Int64("fetched", fetched).
				Int64("converted", converted).
				Int64("failed", failed).
				Int("total", total).
				Str("progress", fmt.Sprintf("%.1f%%", float64(converted+failed)/float64(total)*100)).
				Msg("run progress")
		}
	}
}

func (s *Service) logSummary(r *Report) {
	s.log.Info().
		Int("attempted", r.Attempted).
		Int("succeeded", r.Succeeded).
		Int("download_failures", r.DownloadFailures).
		Int("conversion_failures", r.ConversionFailures).
		Str("success_rate", fmt.Sprintf("%.1f%%", r.SuccessRate())).
		Dur("elapsed", r.Elapsed).
		Interface("by_kind", r.ByKind).
		Msg("run complete")
}

// validateItems guards the ordinal invariant for caller-built item sets.
func validateItems(items []WorkItem) error {
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if it.Index < 0 {
			return fmt.Errorf("%w: negative index %d", ErrDuplicateItem, it.Index)
		}
		if _, dup := seen[it.Index]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateItem, it.Index)
		}
		seen[it.Index] = struct{}{}
	}
	return nil
}

// splitBatches slices items into runs of at most size.
func splitBatches(items []WorkItem, size int) [][]WorkItem {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]WorkItem
	for len(items) > size {
		batches = append(batches, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		batches = append(batches, items)
	}
	return batches
}
