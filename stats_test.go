package img2pdf

import (
	"testing"
	"time"
)

func TestRunStats_Record(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stats := newRunStats(started)

	stats.record(itemResult{item: WorkItem{Index: 0}, outputKey: "pdfs/a.pdf", pages: 1})
	stats.record(itemResult{item: WorkItem{Index: 1}, stage: stageDownload, err: ErrTimeout})
	stats.record(itemResult{item: WorkItem{Index: 2}, stage: stageDownload, err: &StatusError{Code: 404}})
	stats.record(itemResult{item: WorkItem{Index: 3}, stage: stageConvert, err: ErrCorruptImage})
	stats.record(itemResult{item: WorkItem{Index: 4}, outputKey: "pdfs/b.pdf", pages: 1})

	report := stats.finalize(started.Add(10 * time.Second))

	if report.Attempted != 5 {
		t.Errorf("Attempted = %d, want 5", report.Attempted)
	}
	if report.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", report.Succeeded)
	}
	if report.DownloadFailures != 2 {
		t.Errorf("DownloadFailures = %d, want 2", report.DownloadFailures)
	}
	if report.ConversionFailures != 1 {
		t.Errorf("ConversionFailures = %d, want 1", report.ConversionFailures)
	}
	if report.Failed() != 3 {
		t.Errorf("Failed() = %d, want 3", report.Failed())
	}
	if report.Elapsed != 10*time.Second {
		t.Errorf("Elapsed = %v, want 10s", report.Elapsed)
	}

	wantKinds := map[Kind]int{
		KindTimeout:      1,
		KindHTTPStatus:   1,
		KindCorruptImage: 1,
	}
	for kind, want := range wantKinds {
		if got := report.ByKind[kind]; got != want {
			t.Errorf("ByKind[%s] = %d, want %d", kind, got, want)
		}
	}
	if len(report.ByKind) != len(wantKinds) {
		t.Errorf("ByKind has %d entries, want %d", len(report.ByKind), len(wantKinds))
	}
}

func TestReport_SuccessRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		attempted int
		succeeded int
		want      float64
	}{
		{"all succeeded", 4, 4, 100.0},
		{"half succeeded", 4, 2, 50.0},
		{"none succeeded", 4, 0, 0.0},
		{"empty run", 0, 0, 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := Report{Attempted: tt.attempted, Succeeded: tt.succeeded}
			if got := r.SuccessRate(); got != tt.want {
				t.Errorf("SuccessRate() = %.1f, want %.1f", got, tt.want)
			}
		})
	}
}

func TestReport_MeanPerItem(t *testing.T) {
	t.Parallel()

	r := Report{Attempted: 4, Elapsed: 2 * time.Second}
	if got := r.MeanPerItem(); got != 500*time.Millisecond {
		t.Errorf("MeanPerItem() = %v, want 500ms", got)
	}

	empty := Report{}
	if got := empty.MeanPerItem(); got != 0 {
		t.Errorf("MeanPerItem() on empty report = %v, want 0", got)
	}
}
