package img2pdf

import (
	"sync/atomic"
	"time"
)

// stage names the pipeline phase that produced a terminal state.
type stage int

const (
	stageDownload stage = iota
	stageConvert
)

// itemResult is the terminal state of one work item. In combine mode a
// successful conversion parks its rendered page here until the shared
// document is written.
type itemResult struct {
	item      WorkItem
	stage     stage
	err       error
	outputKey string
	pages     int
	pg        *page
}

// Report summarizes one run.
type Report struct {
	Attempted          int
	Succeeded          int
	DownloadFailures   int
	ConversionFailures int
	ByKind             map[Kind]int
	Elapsed            time.Duration
}

// Failed returns the total number of items that produced no output.
func (r *Report) Failed() int {
	return r.DownloadFailures + r.ConversionFailures
}

// SuccessRate returns the share of attempted items that succeeded,
// in percent. An empty run counts as fully successful.
func (r *Report) SuccessRate() float64 {
	if r.Attempted == 0 {
		return 100.0
	}
	return float64(r.Succeeded) / float64(r.Attempted) * 100.0
}

// MeanPerItem returns elapsed wall time divided by attempted items.
func (r *Report) MeanPerItem() time.Duration {
	if r.Attempted == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Attempted)
}

// runStats folds terminal item results into a Report. Only the run's
// reduction loop writes to it, so no locking is needed; live counters
// for the monitor goroutine live separately in progress.
type runStats struct {
	started time.Time
	report  Report
}

func newRunStats(started time.Time) *runStats {
	return &runStats{
		started: started,
		report:  Report{ByKind: make(map[Kind]int)},
	}
}

func (s *runStats) record(r itemResult) {
	s.report.Attempted++
	if r.err == nil {
		s.report.Succeeded++
		return
	}

	switch r.stage {
	case stageDownload:
		s.report.DownloadFailures++
	case stageConvert:
		s.report.ConversionFailures++
	}
	s.report.ByKind[KindOf(r.err)]++
}

func (s *runStats) finalize(now time.Time) *Report {
	s.report.Elapsed = now.Sub(s.started)
	return &s.report
}

// progress carries live counters shared between pipeline goroutines and
// the monitor. Writers only Add; the monitor only Loads.
type progress struct {
	fetched   atomic.Int64
	converted atomic.Int64
	failed    atomic.Int64
}
