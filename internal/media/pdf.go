// Package media normalizes uploaded advertisement files: PDF merging,
// building a synthetic PDF from page images, and rasterizing PDFs into
// per-page JPEGs.
package media

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	// RasterDPI is the fixed resolution for PDF page rasterization.
	RasterDPI = 150
	// RasterMime is the content type of rasterized page images.
	RasterMime  = "image/jpeg"
	jpegQuality = 85
)

// MergePDFs concatenates the given PDF documents page-preserving, in input
// order, into one document.
func MergePDFs(docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to merge")
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	readers := make([]io.ReadSeeker, 0, len(docs))
	for _, d := range docs {
		readers = append(readers, bytes.NewReader(d))
	}
	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("merge pdfs: %w", err)
	}
	return buf.Bytes(), nil
}

// ImagesToPDF builds a synthetic PDF with one image per page, preserving
// input order, each image fit onto an A4 page.
func ImagesToPDF(images [][]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to place")
	}
	imp, err := api.Import("form:A4, pos:c, sc:1.0 rel", pdftypes.POINTS)
	if err != nil {
		return nil, fmt.Errorf("build import config: %w", err)
	}
	readers := make([]io.Reader, 0, len(images))
	for _, img := range images {
		readers = append(readers, bytes.NewReader(img))
	}
	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, imp, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("import images: %w", err)
	}
	return buf.Bytes(), nil
}

// RasterizePDF renders every page of the document to a JPEG at RasterDPI.
func RasterizePDF(doc []byte) ([][]byte, error) {
	fz, err := fitz.NewFromMemory(doc)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer fz.Close()

	pageCount := fz.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	out := make([][]byte, 0, pageCount)
	for n := 0; n < pageCount; n++ {
		img, err := fz.ImageDPI(n, RasterDPI)
		if err != nil {
			return nil, fmt.Errorf("rasterize page %d: %w", n+1, err)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", n+1, err)
		}
		out = append(out, buf.Bytes())
	}
	return out, nil
}

// PageCount reports the number of pages in the document.
func PageCount(doc []byte) (int, error) {
	fz, err := fitz.NewFromMemory(doc)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer fz.Close()
	return fz.NumPage(), nil
}
