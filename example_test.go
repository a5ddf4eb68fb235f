package img2pdf_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"

	img2pdf "github.com/alnah/go-img2pdf"
	"gocloud.dev/blob/memblob"
)

// Example converts a single image served over HTTP into a PDF stored
// in an in-memory bucket. Real callers would open a fileblob or s3blob
// bucket instead.
func Example() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer srv.Close()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	svc := img2pdf.New(bucket)
	defer svc.Close()

	report, err := svc.Run(context.Background(), []string{srv.URL + "/photo.png"})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("%d of %d converted\n", report.Succeeded, report.Attempted)
	// Output: 1 of 1 converted
}

// Example_failureIsolation shows that a bad URL never fails the run;
// it is recorded in the report instead.
func Example_failureIsolation() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := image.NewGray(image.Rect(0, 0, 2, 2))
		img.Set(0, 0, color.Gray{Y: 0x80})
		w.Header().Set("Content-Type", "image/png")
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	svc := img2pdf.New(bucket)
	defer svc.Close()

	report, err := svc.Run(context.Background(), []string{
		srv.URL + "/good.png",
		"not a url at all",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("succeeded=%d failed=%d invalid=%d\n",
		report.Succeeded, report.Failed(), report.ByKind[img2pdf.KindInvalidURL])
	// Output: succeeded=1 failed=1 invalid=1
}

// Example_combine renders every input onto pages of one document.
func Example_combine() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := image.NewRGBA(image.Rect(0, 0, 3, 3))
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer srv.Close()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	svc := img2pdf.New(bucket, img2pdf.WithCombine(true), img2pdf.WithWorkers(1))
	defer svc.Close()

	report, err := svc.Run(context.Background(), []string{
		srv.URL + "/a.png",
		srv.URL + "/b.png",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("%d pages in one document\n", report.Succeeded)
	// Output: 2 pages in one document
}
