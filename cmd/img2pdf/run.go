package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"

	// Bucket URL openers for remote destinations. memblob backs mem://
	// destinations used by the test suite.
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/cache"
	"github.com/alnah/go-img2pdf/internal/config"
	"github.com/alnah/go-img2pdf/internal/fmtutil"
	"github.com/alnah/go-img2pdf/internal/hints"
	"github.com/alnah/go-img2pdf/internal/logging"
	"github.com/alnah/go-img2pdf/internal/urlutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// cachePingTimeout bounds the startup reachability check against Redis.
const cachePingTimeout = 5 * time.Second

// Sentinel errors for run setup.
var (
	ErrOpenBucket       = errors.New("failed to open output destination")
	ErrLogFile          = errors.New("failed to open log file")
	ErrCacheUnavailable = errors.New("payload cache unreachable")
)

// run dispatches the top-level command and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "convert":
		return runConvert(ctx, rest, env)
	case "check":
		return runCheck(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "completion":
		if err := runCompletion(rest, env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "version":
		fmt.Fprintf(env.Stdout, "img2pdf %s\n", Version)
		return ExitSuccess
	case "help", "--help", "-h":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// runConvert executes the convert command end to end: resolve config,
// gather URLs, open the destination, and drive the service.
func runConvert(ctx context.Context, args []string, env *Environment) int {
	f, urls, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	warnUnknownEnvVars(env.Stderr)

	cfg, err := resolveConfig(f, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	logger, closeLog, err := setupLogging(f, cfg, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	defer closeLog()

	urls, entries, err := gatherURLs(f, urls, env.Stdin)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	bucket, err := openBucket(ctx, cfg.Output.Destination)
	if err != nil {
		fmt.Fprintf(env.Stderr, "%v%s\n", err, hints.ForDestination(cfg.Output.Destination))
		return exitCodeFor(err)
	}
	defer bucket.Close()

	if len(entries) > 0 {
		if err := writeCSVArtifacts(ctx, bucket, entries); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
	}

	payloadCache, closeCache, err := setupCache(ctx, cfg, f.download.cacheTTL)
	if err != nil {
		fmt.Fprintf(env.Stderr, "%v%s\n", err, hints.ForCache())
		return exitCodeFor(err)
	}
	defer closeCache()

	if f.metricsAddr != "" {
		serveMetrics(f.metricsAddr, logger)
	}

	svc := img2pdf.New(bucket, serviceOptions(cfg, payloadCache, logger, env.Now)...)
	defer svc.Close()

	report, err := svc.Run(ctx, urls)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, img2pdf.ErrDestination) {
			msg += hints.ForDestination(cfg.Output.Destination)
		}
		fmt.Fprintln(env.Stderr, msg)
		return exitCodeFor(err)
	}

	printSummary(env.Stdout, report, cfg.Output.Destination, f.common.quiet, f.common.verbose)

	if report.Attempted > 0 && report.Succeeded == 0 {
		return ExitGeneral
	}
	return ExitSuccess
}

// resolveConfig builds the effective configuration: file (when named),
// then environment overrides, then explicit command-line flags.
func resolveConfig(f *convertFlags, env *Environment) (*config.Config, error) {
	ec := loadEnvConfig(env.Stderr)

	name := f.common.config
	if name == "" {
		name = ec.ConfigPath
	}

	var cfg *config.Config
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				err = fmt.Errorf("%w%s", err, hints.ForConfigNotFound(nil))
			}
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	applyEnvConfig(cfg, ec)
	if err := applyFlags(cfg, f); err != nil {
		return nil, err
	}

	if cfg.Output.Destination == "" {
		cfg.Output.Destination = defaultOutput
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overlays explicitly set command-line flags onto cfg.
// Flags always win over file and environment values.
func applyFlags(cfg *config.Config, f *convertFlags) error {
	if f.changed("output") {
		cfg.Output.Destination = f.output.output
	}
	if f.changed("keep-images") {
		cfg.Output.KeepImages = f.output.keepImages
	}

	if f.changed("concurrency") {
		cfg.Download.Concurrency = f.download.concurrency
	}
	if f.changed("timeout") {
		secs := int(f.download.timeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		cfg.Download.TimeoutSeconds = secs
	}
	if f.changed("retries") {
		cfg.Download.Retries = f.download.retries
	}
	if f.changed("host-rate") {
		cfg.Download.HostRate = f.download.hostRate
	}
	if f.changed("user-agent") {
		cfg.Download.UserAgent = f.download.userAgent
	}
	if f.changed("max-payload") {
		n, err := fmtutil.ParseBytes(f.download.maxPayload)
		if err != nil {
			return err
		}
		cfg.Download.MaxPayloadMB = int((n + (1 << 20) - 1) >> 20)
	}
	if f.changed("cache-url") {
		cfg.Cache.RedisURL = f.download.cacheURL
		cfg.Cache.Enabled = f.download.cacheURL != ""
	}
	if f.changed("cache-ttl") {
		cfg.Cache.TTLHours = int(f.download.cacheTTL / time.Hour)
	}

	if f.changed("dpi") {
		cfg.Convert.DPI = f.render.dpi
	}
	if f.changed("workers") {
		cfg.Convert.Workers = f.render.workers
	}
	if f.changed("batch-size") {
		cfg.Convert.BatchSize = f.render.batchSize
	}
	if f.changed("combine") {
		cfg.Convert.Combine = f.render.combine
	}

	if f.changed("log-level") {
		cfg.Log.Level = f.common.logLevel
	}
	if f.changed("log-file") {
		cfg.Log.File = f.common.logFile
	}
	return nil
}

// setupLogging configures the zerolog pipeline. Quiet and verbose trump
// the configured level; a log file receives the same stream as stderr.
func setupLogging(f *convertFlags, cfg *config.Config, env *Environment) (zerolog.Logger, func(), error) {
	level := logging.Level(cfg.Log.Level)
	switch {
	case f.common.quiet:
		level = logging.LevelError
	case f.common.verbose:
		level = logging.LevelDebug
	case level == "":
		level = logging.LevelInfo
	}

	output := io.Writer(env.Stderr)
	closer := func() {}
	if cfg.Log.File != "" {
		file, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePermissions) // #nosec G304 -- user-provided log path
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("%w: %v", ErrLogFile, err)
		}
		output = zerolog.MultiLevelWriter(output, file)
		closer = func() { _ = file.Close() }
	}

	logger := logging.Setup(logging.Config{
		Level:  level,
		Pretty: cfg.Log.Pretty,
		Output: output,
	})
	return logger, closer, nil
}

// openBucket opens the artifact destination. A URL goes through the
// registered blob openers; anything else is treated as a local
// directory and created if missing.
func openBucket(ctx context.Context, dest string) (*blob.Bucket, error) {
	if strings.Contains(dest, "://") {
		bucket, err := blob.OpenBucket(ctx, dest)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOpenBucket, err)
		}
		return bucket, nil
	}

	if err := os.MkdirAll(dest, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenBucket, err)
	}
	bucket, err := fileblob.OpenBucket(dest, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenBucket, err)
	}
	return bucket, nil
}

// setupCache connects the Redis payload cache when configured. The
// reachability check happens once here so a dead cache fails fast
// instead of slowing down every item.
func setupCache(ctx context.Context, cfg *config.Config, flagTTL time.Duration) (img2pdf.PayloadCache, func(), error) {
	noop := func() {}
	if !cfg.Cache.Enabled || cfg.Cache.RedisURL == "" {
		return nil, noop, nil
	}

	opt, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		return nil, noop, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, noop, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = flagTTL
	}
	c := cache.NewRedis(client, ttl, logging.NewLogger("cache"))
	return c, func() { _ = client.Close() }, nil
}

// serviceOptions translates the resolved configuration into library
// options, leaving unset tunables to the library defaults.
func serviceOptions(cfg *config.Config, payloadCache img2pdf.PayloadCache, logger zerolog.Logger, now func() time.Time) []img2pdf.Option {
	opts := []img2pdf.Option{
		img2pdf.WithLogger(logger),
		img2pdf.WithClock(now),
		img2pdf.WithCombine(cfg.Convert.Combine),
		img2pdf.WithKeepImages(cfg.Output.KeepImages),
		img2pdf.WithWorkers(cfg.Convert.Workers),
	}

	if cfg.Download.Concurrency > 0 {
		opts = append(opts, img2pdf.WithConcurrency(cfg.Download.Concurrency))
	}
	if cfg.Download.TimeoutSeconds > 0 {
		opts = append(opts, img2pdf.WithRequestTimeout(time.Duration(cfg.Download.TimeoutSeconds)*time.Second))
	}
	if cfg.Download.Retries >= 0 {
		opts = append(opts, img2pdf.WithRetries(cfg.Download.Retries))
	}
	if cfg.Download.HostRate > 0 {
		opts = append(opts, img2pdf.WithHostRate(cfg.Download.HostRate))
	}
	if cfg.Download.UserAgent != "" {
		opts = append(opts, img2pdf.WithUserAgent(cfg.Download.UserAgent))
	}
	if cfg.Download.MaxPayloadMB > 0 {
		opts = append(opts, img2pdf.WithMaxPayload(int64(cfg.Download.MaxPayloadMB)<<20))
	}
	if cfg.Convert.DPI > 0 {
		opts = append(opts, img2pdf.WithDPI(cfg.Convert.DPI))
	}
	if cfg.Convert.BatchSize > 0 {
		opts = append(opts, img2pdf.WithBatchSize(cfg.Convert.BatchSize))
	}
	if payloadCache != nil {
		opts = append(opts, img2pdf.WithCache(payloadCache))
	}
	return opts
}

// serveMetrics exposes the Prometheus registry on addr in the
// background for the lifetime of the process.
func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Str("addr", addr).Err(err).Msg("metrics server stopped")
		}
	}()
}

// writeCSVArtifacts stores the extracted URL list and the
// filename-to-URL map next to the output documents, mirroring the
// source CSV for later auditing.
func writeCSVArtifacts(ctx context.Context, bucket *blob.Bucket, entries []csvEntry) error {
	var list strings.Builder
	var mapping strings.Builder
	mapping.WriteString("FILENAME,URL\n")
	for _, e := range entries {
		list.WriteString(e.URL)
		list.WriteByte('\n')
		name := e.Filename
		if name == "" {
			name = urlutil.Stem(e.URL)
		}
		fmt.Fprintf(&mapping, "%s,%s\n", name, e.URL)
	}

	if err := writeBucketFile(ctx, bucket, "extracted_urls.txt", "text/plain", list.String()); err != nil {
		return err
	}
	return writeBucketFile(ctx, bucket, "url_filename_map.csv", "text/csv", mapping.String())
}

func writeBucketFile(ctx context.Context, bucket *blob.Bucket, key, contentType, data string) error {
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenBucket, err)
	}
	if _, err := io.WriteString(w, data); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: %v", ErrOpenBucket, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrOpenBucket, err)
	}
	return nil
}

// printSummary renders the final run report. Quiet mode suppresses it
// entirely; verbose mode adds the per-kind failure breakdown and mean
// item latency.
func printSummary(w io.Writer, r *img2pdf.Report, dest string, quiet, verbose bool) {
	if quiet {
		return
	}

	fmt.Fprintf(w, "Converted %d of %d images (%.1f%%) in %s\n",
		r.Succeeded, r.Attempted, r.SuccessRate(), fmtutil.FormatDuration(r.Elapsed))

	if r.Failed() > 0 {
		fmt.Fprintf(w, "  download failures:   %d\n", r.DownloadFailures)
		fmt.Fprintf(w, "  conversion failures: %d\n", r.ConversionFailures)

		kinds := make([]string, 0, len(r.ByKind))
		for kind := range r.ByKind {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(w, "    %-20s %d\n", kind+":", r.ByKind[img2pdf.Kind(kind)])
		}
	}

	if verbose && r.Attempted > 0 {
		fmt.Fprintf(w, "  mean per item: %s\n", r.MeanPerItem().Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Output: %s\n", dest)
}
