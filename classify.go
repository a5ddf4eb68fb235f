package img2pdf

import (
	"bytes"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
)

// Format identifies a raster image format the converter can decode.
// The zero value means unclassified.
type Format string

// Supported formats.
const (
	FormatUnknown Format = ""
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatWebP    Format = "webp"
)

// Ext returns the file extension conventionally used for the format,
// without the leading dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// signature is a magic-byte prefix identifying a format. WebP needs a
// second marker past the RIFF chunk header.
type signature struct {
	prefix []byte
	format Format
}

var signatures = []signature{
	{[]byte("\x89PNG\r\n\x1a\n"), FormatPNG},
	{[]byte("\xff\xd8\xff"), FormatJPEG},
	{[]byte("GIF87a"), FormatGIF},
	{[]byte("GIF89a"), FormatGIF},
	{[]byte("BM"), FormatBMP},
	{[]byte("II*\x00"), FormatTIFF},
	{[]byte("MM\x00*"), FormatTIFF},
}

// Sniff classifies a payload by magic bytes alone. Returns FormatUnknown
// when no signature matches.
func Sniff(body []byte) Format {
	for _, s := range signatures {
		if bytes.HasPrefix(body, s.prefix) {
			return s.format
		}
	}
	if len(body) >= 12 && bytes.HasPrefix(body, []byte("RIFF")) && bytes.Equal(body[8:12], []byte("WEBP")) {
		return FormatWebP
	}
	return FormatUnknown
}

// contentTypeFormats maps recognized Content-Type values to formats.
// Non-raster entries map to FormatUnknown: the type is recognized but
// cannot be rendered, which classifies as unsupported rather than unknown.
var contentTypeFormats = map[string]Format{
	"image/png":      FormatPNG,
	"image/jpeg":     FormatJPEG,
	"image/jpg":      FormatJPEG,
	"image/pjpeg":    FormatJPEG,
	"image/gif":      FormatGIF,
	"image/bmp":      FormatBMP,
	"image/x-bmp":    FormatBMP,
	"image/x-ms-bmp": FormatBMP,
	"image/tiff":     FormatTIFF,
	"image/webp":     FormatWebP,
	"image/svg+xml":  FormatUnknown,
	"text/html":      FormatUnknown,
	"text/plain":     FormatUnknown,
}

// suffixFormats maps URL path extensions to formats. As with content
// types, recognized non-raster suffixes map to FormatUnknown.
var suffixFormats = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".jpe":  FormatJPEG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".webp": FormatWebP,
	".svg":  FormatUnknown,
}

// FormatForContentType resolves a Content-Type header value, ignoring
// parameters such as charset. The second result reports whether the type
// is recognized at all; a recognized type may still resolve to
// FormatUnknown when it is not a raster format.
func FormatForContentType(header string) (Format, bool) {
	if header == "" {
		return FormatUnknown, false
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(header))
	}
	f, ok := contentTypeFormats[mediaType]
	return f, ok
}

// FormatForURL resolves the extension of a URL path. The second result
// reports whether the suffix is recognized.
func FormatForURL(rawURL string) (Format, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FormatUnknown, false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	f, ok := suffixFormats[ext]
	return f, ok
}

// Classify resolves the payload format for a downloaded item. Magic bytes
// are authoritative; the Content-Type header and URL suffix are weaker
// claims consulted in that order when sniffing fails. The first source
// that recognizes the payload decides, so a text/html header is final
// even when the URL ends in .png.
//
// A recognized claim that is not a decodable raster format (HTML error
// page served with 200, an SVG) yields ErrUnsupportedFormat. No claim at
// all yields ErrUnknownFormat.
func Classify(body []byte, contentType, rawURL string) (Format, error) {
	if f := Sniff(body); f != FormatUnknown {
		return f, nil
	}

	if f, ok := FormatForContentType(contentType); ok {
		if f != FormatUnknown {
			return f, nil
		}
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaTypeOf(contentType))
	}

	if f, ok := FormatForURL(rawURL); ok {
		if f != FormatUnknown {
			return f, nil
		}
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, urlExt(rawURL))
	}

	return FormatUnknown, ErrUnknownFormat
}

func mediaTypeOf(contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func urlExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}
