package img2pdf

import (
	"net/http"
	"testing"
	"time"
)

func TestDefaultServiceConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultServiceConfig()
	if cfg.concurrency != DefaultConcurrency {
		t.Errorf("concurrency = %d, want %d", cfg.concurrency, DefaultConcurrency)
	}
	if cfg.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", cfg.timeout, DefaultTimeout)
	}
	if cfg.batchSize != DefaultBatchSize {
		t.Errorf("batchSize = %d, want %d", cfg.batchSize, DefaultBatchSize)
	}
	if cfg.dpi != DefaultDPI {
		t.Errorf("dpi = %d, want %d", cfg.dpi, DefaultDPI)
	}
	if cfg.workers != 0 {
		t.Errorf("workers = %d, want 0 (auto)", cfg.workers)
	}
	if cfg.combine || cfg.keepImages {
		t.Error("combine and keepImages should default to false")
	}
}

func TestOptions_Apply(t *testing.T) {
	t.Parallel()

	bucket := openTestBucket(t)
	now := func() time.Time { return time.Unix(42, 0) }
	client := &http.Client{}

	svc := New(bucket,
		WithConcurrency(5),
		WithRequestTimeout(7*time.Second),
		WithWorkers(2),
		WithBatchSize(10),
		WithDPI(150),
		WithCombine(true),
		WithKeepImages(true),
		WithRetries(0),
		WithHostRate(1.5),
		WithUserAgent("custom/1.0"),
		WithMaxPayload(1<<20),
		WithHTTPClient(client),
		WithClock(now),
	)
	defer svc.Close()

	if svc.cfg.concurrency != 5 || svc.cfg.timeout != 7*time.Second {
		t.Errorf("download config = %+v", svc.cfg)
	}
	if svc.cfg.batchSize != 10 || svc.cfg.dpi != 150 {
		t.Errorf("render config = %+v", svc.cfg)
	}
	if !svc.cfg.combine || !svc.cfg.keepImages {
		t.Errorf("mode flags = %+v", svc.cfg)
	}
	if svc.cfg.retries != 0 || svc.cfg.hostRate != 1.5 {
		t.Errorf("retry config = %+v", svc.cfg)
	}
	if svc.cfg.userAgent != "custom/1.0" || svc.cfg.maxPayload != 1<<20 {
		t.Errorf("transport config = %+v", svc.cfg)
	}
	if svc.client != client {
		t.Error("injected HTTP client not used")
	}
	if svc.now().Unix() != 42 {
		t.Error("injected clock not used")
	}
	if svc.pool.Size() != 2 {
		t.Errorf("pool size = %d, want 2", svc.pool.Size())
	}
}

func TestOptions_EmptyUserAgentKeepsDefault(t *testing.T) {
	t.Parallel()

	bucket := openTestBucket(t)
	svc := New(bucket, WithUserAgent(""))
	defer svc.Close()

	if svc.cfg.userAgent != DefaultUserAgent {
		t.Errorf("userAgent = %q, want default preserved", svc.cfg.userAgent)
	}
}

func TestOutcomeOK(t *testing.T) {
	t.Parallel()

	if !(DownloadOutcome{}).OK() {
		t.Error("download outcome without error should be OK")
	}
	if (DownloadOutcome{Err: ErrTimeout}).OK() {
		t.Error("failed download reported OK")
	}
	if !(ConversionOutcome{OutputKey: "pdfs/x.pdf"}).OK() {
		t.Error("conversion outcome without error should be OK")
	}
	if (ConversionOutcome{Err: ErrCorruptImage}).OK() {
		t.Error("failed conversion reported OK")
	}
}
