package img2pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	// Register decoders with the image package. PNG, GIF, and JPEG come
	// from the standard library; BMP, TIFF, and WebP from x/image.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// jpegQuality is the encoder setting for flattened pages. High enough
// that recompression artifacts stay invisible at print resolution.
const jpegQuality = 95

// maxDecodePixels rejects decompression bombs before allocating pixels.
// 64M pixels is a 256MB RGBA canvas.
const maxDecodePixels = 1 << 26

// page is one rendered sheet: a flattened JPEG plus its pixel bounds.
// Pixel data is never resampled; the physical page size is derived from
// these bounds and the DPI at assembly time.
type page struct {
	index  int
	jpeg   []byte
	width  int
	height int
}

// renderer turns payloads into pages. It carries a reusable encode
// buffer and must not be shared between goroutines; the pool enforces
// exclusive use.
type renderer struct {
	buf bytes.Buffer
}

func newRenderer() *renderer { return &renderer{} }

// renderPage decodes, flattens, and re-encodes one payload.
func (r *renderer) renderPage(index int, body []byte) (page, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return page{}, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return page{}, fmt.Errorf("%w: %dx%d pixels", ErrCorruptImage, cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > maxDecodePixels {
		return page{}, fmt.Errorf("%w: %dx%d pixels decoded", ErrPayloadTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return page{}, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	flat := flattenWhite(src)

	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return page{}, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	encoded := make([]byte, r.buf.Len())
	copy(encoded, r.buf.Bytes())

	return page{
		index:  index,
		jpeg:   encoded,
		width:  flat.Bounds().Dx(),
		height: flat.Bounds().Dy(),
	}, nil
}

// flattenWhite composites the source over an opaque white canvas. Alpha
// is discarded the way a printed page would show it, and the result is
// always RGBA regardless of the source color model.
func flattenWhite(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}
