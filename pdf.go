package img2pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const mmPerInch = 25.4

// pageSizeMM converts a pixel dimension to millimeters at the given DPI.
func pageSizeMM(pixels, dpi int) float64 {
	return float64(pixels) / float64(dpi) * mmPerInch
}

// buildDocument assembles pages into a single PDF. Every page keeps its
// own dimensions. The output is a pure function of pages, dpi, and
// created: both document dates are pinned to created, so identical
// inputs yield identical bytes.
func buildDocument(pages []page, dpi int, created time.Time) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrEmptyDocument
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(created)
	doc.SetModificationDate(created)
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	for i, p := range pages {
		w := pageSizeMM(p.width, dpi)
		h := pageSizeMM(p.height, dpi)
		doc.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		name := fmt.Sprintf("page-%d", i)
		opts := fpdf.ImageOptions{ImageType: "JPG"}
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(p.jpeg))
		doc.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	return buf.Bytes(), nil
}
