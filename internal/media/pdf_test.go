package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func testJPEG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestImagesToPDFOnePagePerImage(t *testing.T) {
	images := [][]byte{
		testJPEG(t, 200, 300, color.White),
		testJPEG(t, 200, 300, color.Black),
		testJPEG(t, 300, 200, color.RGBA{R: 255, A: 255}),
	}
	pdf, err := ImagesToPDF(images)
	if err != nil {
		t.Fatalf("ImagesToPDF: %v", err)
	}
	n, err := PageCount(pdf)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != len(images) {
		t.Fatalf("page count = %d, want %d", n, len(images))
	}
}

func TestImagesToPDFEmpty(t *testing.T) {
	if _, err := ImagesToPDF(nil); err == nil {
		t.Fatal("expected error for empty image set")
	}
}

func TestMergePDFsSumsPages(t *testing.T) {
	a, err := ImagesToPDF([][]byte{
		testJPEG(t, 100, 100, color.White),
		testJPEG(t, 100, 100, color.Black),
	})
	if err != nil {
		t.Fatalf("build first pdf: %v", err)
	}
	b, err := ImagesToPDF([][]byte{
		testJPEG(t, 100, 100, color.White),
	})
	if err != nil {
		t.Fatalf("build second pdf: %v", err)
	}

	merged, err := MergePDFs([][]byte{a, b})
	if err != nil {
		t.Fatalf("MergePDFs: %v", err)
	}
	n, err := PageCount(merged)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("merged page count = %d, want 3", n)
	}
}

func TestMergePDFsSingleDocPassthrough(t *testing.T) {
	a, err := ImagesToPDF([][]byte{testJPEG(t, 100, 100, color.White)})
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	merged, err := MergePDFs([][]byte{a})
	if err != nil {
		t.Fatalf("MergePDFs: %v", err)
	}
	if !bytes.Equal(merged, a) {
		t.Fatal("single-document merge should return the input unchanged")
	}
}

func TestRasterizePDFRoundTrip(t *testing.T) {
	pdf, err := ImagesToPDF([][]byte{
		testJPEG(t, 200, 300, color.White),
		testJPEG(t, 200, 300, color.Black),
	})
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	pages, err := RasterizePDF(pdf)
	if err != nil {
		t.Fatalf("RasterizePDF: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("rasterized %d pages, want 2", len(pages))
	}
	for i, p := range pages {
		if _, err := jpeg.Decode(bytes.NewReader(p)); err != nil {
			t.Fatalf("page %d is not a decodable jpeg: %v", i+1, err)
		}
	}
}

func TestRasterizePDFGarbageInput(t *testing.T) {
	if _, err := RasterizePDF([]byte("not a pdf")); err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}
