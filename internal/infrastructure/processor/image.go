// Package processor turns an assembled upload blob into the fixed set of
// resized Image variants the catalogue serves.
package processor

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

type VariantSpec struct {
	Name   string
	MaxDim int // 0 means pass-through (original)
}

// Variants is the fixed catalogue a completed Upload is expanded into.
var Variants = []VariantSpec{
	{Name: "original", MaxDim: 0},
	{Name: "small", MaxDim: 256},
	{Name: "medium", MaxDim: 512},
	{Name: "large", MaxDim: 1024},
}

const jpegQuality = 85

// VariantOutput is one resized image, encoded and ready to be written to
// a BlobStore and recorded as an Image row.
type VariantOutput struct {
	Variant string
	Bytes   []byte
	Width   int
	Height  int
}

// GenerateVariants decodes src and produces one VariantOutput per entry
// in Variants. A decode failure aborts the whole operation (there is
// nothing to resize); an encode failure for one variant is returned in
// errs so callers can persist the rest, per the partial-failure policy.
func GenerateVariants(src io.Reader) (outputs []VariantOutput, errs map[string]error, err error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("decoding source image: %w", err)
	}

	errs = make(map[string]error)
	for _, spec := range Variants {
		out, genErr := generateOne(img, spec)
		if genErr != nil {
			errs[spec.Name] = genErr
			continue
		}
		outputs = append(outputs, *out)
	}

	return outputs, errs, nil
}

// generateOne resizes and encodes a single variant, guarded by recover so
// a panic inside disintegration/imaging (a corrupt scanline, an
// unexpected color model) costs only that one variant instead of the
// whole batch.
func generateOne(img image.Image, spec VariantSpec) (out *VariantOutput, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = fmt.Errorf("generating variant %s: panic: %v", spec.Name, p)
		}
	}()

	resized := resizeWithinBounds(img, spec.MaxDim)
	bounds := resized.Bounds()

	var buf bytes.Buffer
	if encErr := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); encErr != nil {
		return nil, fmt.Errorf("encoding variant %s: %w", spec.Name, encErr)
	}

	return &VariantOutput{
		Variant: spec.Name,
		Bytes:   buf.Bytes(),
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
	}, nil
}

// resizeWithinBounds scales img so its longer edge is at most maxDim,
// preserving aspect ratio. maxDim <= 0 or an image already within bounds
// passes through untouched; upscaling is never performed.
func resizeWithinBounds(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longEdge := w
	if h > longEdge {
		longEdge = h
	}
	if longEdge <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(longEdge)
	newW := int(math.Round(float64(w) * scale))
	newH := int(math.Round(float64(h) * scale))

	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}
