package img2pdf

import (
	"bytes"
	"errors"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"testing"
	"time"
)

func TestPageSizeMM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		pixels int
		dpi    int
		want   float64
	}{
		{"one inch at 300", 300, 300, 25.4},
		{"two inches at 300", 600, 300, 50.8},
		{"one inch at 72", 72, 72, 25.4},
		{"half inch at 96", 48, 96, 12.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := pageSizeMM(tt.pixels, tt.dpi)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("pageSizeMM(%d, %d) = %v, want %v", tt.pixels, tt.dpi, got, tt.want)
			}
		})
	}
}

func TestBuildDocument_Empty(t *testing.T) {
	t.Parallel()

	if _, err := buildDocument(nil, DefaultDPI, time.Now()); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("buildDocument(nil) error = %v, want ErrEmptyDocument", err)
	}
}

func TestBuildDocument_Deterministic(t *testing.T) {
	t.Parallel()

	pages := []page{
		{index: 0, jpeg: testJPEG(t, 40, 30, color.White), width: 40, height: 30},
		{index: 1, jpeg: testJPEG(t, 30, 40, color.Black), width: 30, height: 40},
	}
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first, err := buildDocument(pages, DefaultDPI, created)
	if err != nil {
		t.Fatalf("buildDocument() error = %v", err)
	}
	second, err := buildDocument(pages, DefaultDPI, created)
	if err != nil {
		t.Fatalf("buildDocument() error = %v", err)
	}

	if !bytes.HasPrefix(first, []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}
	if !bytes.Equal(first, second) {
		t.Error("identical inputs produced different bytes")
	}

	later, err := buildDocument(pages, DefaultDPI, created.Add(time.Hour))
	if err != nil {
		t.Fatalf("buildDocument() error = %v", err)
	}
	if bytes.Equal(first, later) {
		t.Error("creation date is not reflected in the output")
	}
}

// mediaBoxes extracts the page boxes in file order as [width, height]
// pairs in points. The last match is the document default, the ones
// before it belong to individual pages.
func mediaBoxes(t *testing.T, pdf []byte) [][2]float64 {
	t.Helper()

	re := regexp.MustCompile(`/MediaBox \[0 0 ([0-9.]+) ([0-9.]+)\]`)
	var boxes [][2]float64
	for _, m := range re.FindAllSubmatch(pdf, -1) {
		w, err := strconv.ParseFloat(string(m[1]), 64)
		if err != nil {
			t.Fatalf("parsing MediaBox width %q: %v", m[1], err)
		}
		h, err := strconv.ParseFloat(string(m[2]), 64)
		if err != nil {
			t.Fatalf("parsing MediaBox height %q: %v", m[2], err)
		}
		boxes = append(boxes, [2]float64{w, h})
	}
	return boxes
}

func TestBuildDocument_PageGeometry(t *testing.T) {
	t.Parallel()

	// 300x600 px at 300 DPI is a 1x2 inch page, 72x144 points.
	pages := []page{
		{index: 0, jpeg: testJPEG(t, 300, 600, color.White), width: 300, height: 600},
	}

	pdf, err := buildDocument(pages, 300, time.Now())
	if err != nil {
		t.Fatalf("buildDocument() error = %v", err)
	}

	boxes := mediaBoxes(t, pdf)
	if len(boxes) < 1 {
		t.Fatal("no MediaBox entries found")
	}
	got := boxes[0]
	if math.Abs(got[0]-72) > 0.05 || math.Abs(got[1]-144) > 0.05 {
		t.Errorf("page box = %.2fx%.2f pt, want 72x144", got[0], got[1])
	}
}

func TestBuildDocument_PreservesPageOrder(t *testing.T) {
	t.Parallel()

	// Distinct widths so each page is identifiable in the output.
	var pages []page
	for i := 0; i < 4; i++ {
		w := 10 + i
		pages = append(pages, page{
			index:  i,
			jpeg:   testJPEG(t, w, 20, color.White),
			width:  w,
			height: 20,
		})
	}

	pdf, err := buildDocument(pages, 72, time.Now())
	if err != nil {
		t.Fatalf("buildDocument() error = %v", err)
	}

	boxes := mediaBoxes(t, pdf)
	if len(boxes) < len(pages) {
		t.Fatalf("found %d MediaBox entries, want at least %d", len(boxes), len(pages))
	}
	for i := range pages {
		want := float64(10 + i)
		if math.Abs(boxes[i][0]-want) > 0.05 {
			t.Errorf("page %d width = %.2f pt, want %.2f", i, boxes[i][0], want)
		}
	}
}
