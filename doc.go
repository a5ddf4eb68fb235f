// Package img2pdf downloads images over HTTP and converts them to PDF
// documents stored in blob storage.
//
// # Quick Start
//
// Open a destination bucket, create a service, and run a list of URLs:
//
//	bucket, err := fileblob.OpenBucket("./output", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bucket.Close()
//
//	svc := img2pdf.New(bucket)
//	defer svc.Close()
//
//	report, err := svc.Run(ctx, []string{
//	    "https://example.com/photo.jpg",
//	    "https://example.com/scan.png",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d of %d converted\n", report.Succeeded, report.Attempted)
//
// Each URL becomes one single-page PDF under pdfs/ in the bucket. A
// failing URL never fails the run; the Report carries a terminal
// outcome count for every input.
//
// # Pipeline
//
// A run moves through these stages:
//
//  1. Batched download under a shared concurrency gate (retries with
//     exponential backoff, optional per-host rate limiting)
//  2. Payload classification by content sniffing, falling back to the
//     Content-Type header and then the URL suffix
//  3. Pooled rendering: decode, flatten transparency onto white,
//     re-encode as JPEG
//  4. Document assembly and commit to the destination bucket
//
// Downloads stream straight into the conversion pool, and at most two
// batches of payloads are resident at once, so memory stays bounded on
// arbitrarily long input lists.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := img2pdf.New(bucket,
//	    img2pdf.WithConcurrency(50),
//	    img2pdf.WithRequestTimeout(10*time.Second),
//	    img2pdf.WithDPI(150),
//	    img2pdf.WithRetries(5),
//	    img2pdf.WithHostRate(2.0),
//	)
//
// # Combined Documents
//
// WithCombine(true) renders every image as one page of a single PDF
// instead of one file per image. Pages appear in input order no matter
// which download finishes first:
//
//	svc := img2pdf.New(bucket, img2pdf.WithCombine(true))
//
// # Destinations
//
// The bucket comes from gocloud.dev/blob, so the same service writes to
// a local directory (fileblob), S3 (s3blob), GCS (gcsblob), or memory
// (memblob, useful in tests). The caller owns the bucket and closes it
// after the service.
//
// # Error Handling
//
// Per-item failures are values, not control flow. Every failure maps to
// a sentinel (ErrTimeout, ErrHTTPStatus, ErrCorruptImage, ...) and a
// stable Kind string for aggregation:
//
//	for kind, n := range report.ByKind {
//	    fmt.Printf("%s: %d\n", kind, n)
//	}
//
// The run itself only errors on unusable input, an unwritable
// destination, or a combined document with zero pages.
//
// # Caching
//
// WithCache plugs in a shared payload cache keyed by URL, so repeated
// runs skip downloads that already succeeded. A Redis-backed
// implementation lives in internal/cache; any PayloadCache works.
package img2pdf
