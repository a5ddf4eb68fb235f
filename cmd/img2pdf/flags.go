package main

import (
	"io"
	"time"

	flag "github.com/spf13/pflag"

	img2pdf "github.com/alnah/go-img2pdf"
)

// defaultOutput is where artifacts land when no destination is given.
const defaultOutput = "./output"

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config   string
	quiet    bool
	verbose  bool
	logLevel string
	logFile  string
}

// inputFlags holds URL source flags. URLs can also be passed as
// positional arguments; all three sources combine into one run.
type inputFlags struct {
	file    string
	csv     string
	baseURL string
}

// outputFlags holds destination flags.
type outputFlags struct {
	output     string
	keepImages bool
}

// downloadFlags holds fetch stage flags.
type downloadFlags struct {
	concurrency int
	timeout     time.Duration
	retries     int
	hostRate    float64
	userAgent   string
	maxPayload  string
	cacheURL    string
	cacheTTL    time.Duration
}

// renderFlags holds conversion stage flags.
type renderFlags struct {
	dpi       int
	workers   int
	batchSize int
	combine   bool
}

// convertFlags holds all flags for the convert command. The FlagSet is
// kept so config merging can ask which flags were explicitly set.
type convertFlags struct {
	common      commonFlags
	input       inputFlags
	output      outputFlags
	download    downloadFlags
	render      renderFlags
	metricsAddr string

	fs *flag.FlagSet
}

// changed reports whether the named flag was set on the command line.
func (f *convertFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-item detail")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFile, "log-file", "", "also append logs to this file")
}

// addInputFlags adds URL source flags to a FlagSet.
func addInputFlags(fs *flag.FlagSet, f *inputFlags) {
	fs.StringVarP(&f.file, "file", "f", "", "read URLs from file, one per line (\"-\" = stdin)")
	fs.StringVar(&f.csv, "csv", "", "extract preview URLs from a CSV export")
	fs.StringVar(&f.baseURL, "base-url", "", "base URL for relative CSV references")
}

// addOutputFlags adds destination flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.output, "output", "o", defaultOutput, "output directory or bucket URL (s3://, gs://)")
	fs.BoolVar(&f.keepImages, "keep-images", false, "also store raw downloads under imgs/")
}

// addDownloadFlags adds fetch stage flags to a FlagSet.
func addDownloadFlags(fs *flag.FlagSet, f *downloadFlags) {
	fs.IntVar(&f.concurrency, "concurrency", img2pdf.DefaultConcurrency, "max downloads in flight")
	fs.DurationVarP(&f.timeout, "timeout", "t", img2pdf.DefaultTimeout, "per-request deadline (e.g., 30s, 2m)")
	fs.IntVar(&f.retries, "retries", img2pdf.DefaultRetries, "retry attempts for transient failures (0 = off)")
	fs.Float64Var(&f.hostRate, "host-rate", 0, "max requests/second per host (0 = unlimited)")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent header override")
	fs.StringVar(&f.maxPayload, "max-payload", "", "response body cap (e.g., 50MB)")
	fs.StringVar(&f.cacheURL, "cache-url", "", "redis URL for the payload cache")
	fs.DurationVar(&f.cacheTTL, "cache-ttl", 24*time.Hour, "payload cache entry lifetime")
}

// addRenderFlags adds conversion stage flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.IntVar(&f.dpi, "dpi", img2pdf.DefaultDPI, "resolution for page size derivation")
	fs.IntVarP(&f.workers, "workers", "w", 0, "conversion pool size (0 = auto)")
	fs.IntVar(&f.batchSize, "batch-size", img2pdf.DefaultBatchSize, "items held in memory per batch")
	fs.BoolVar(&f.combine, "combine", false, "merge all pages into one document")
}

// buildConvertFlagSet creates the convert FlagSet bound to f. Shared
// between parsing and completion generation so the flag inventory has a
// single source of truth.
func buildConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	addCommonFlags(fs, &f.common)
	addInputFlags(fs, &f.input)
	addOutputFlags(fs, &f.output)
	addDownloadFlags(fs, &f.download)
	addRenderFlags(fs, &f.render)

	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, errOut io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := buildConvertFlagSet(f)
	fs.SetOutput(errOut)
	fs.Usage = func() { printConvertUsage(errOut) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.fs = fs

	return f, fs.Args(), nil
}
