package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/wb-go/wbf/zlog"

	"github.com/craftspace/catalog/internal/model"
)

// decodableFormats maps content types the decoder understands to their
// encode format. WEBP and AVIF uploads pass through untouched.
var decodableFormats = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/jfif": imaging.JPEG,
	"image/png":  imaging.PNG,
}

// Preparer normalizes pending uploads before they reach storage:
// oversized images are scaled down and product images are watermarked.
type Preparer struct {
	maxDimension  int
	watermarkText string
	fontPath      string
}

// New creates a Preparer. maxDimension of 0 disables downscaling and an
// empty watermarkText disables watermarking.
func New(maxDimension int, watermarkText, fontPath string) *Preparer {
	return &Preparer{
		maxDimension:  maxDimension,
		watermarkText: watermarkText,
		fontPath:      fontPath,
	}
}

// Prepare returns the upload to actually store. The input is never
// mutated; when no processing applies it is returned as-is.
func (p *Preparer) Prepare(up *model.PendingUpload) (*model.PendingUpload, error) {
	format, ok := decodableFormats[up.ContentType]
	if !ok {
		return up, nil
	}

	img, err := imaging.Decode(bytes.NewReader(up.Data))
	if err != nil {
		return nil, fmt.Errorf("prepare: failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	processed := false

	if p.maxDimension > 0 && (bounds.Dx() > p.maxDimension || bounds.Dy() > p.maxDimension) {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
		processed = true
	}

	if up.Entity == model.EntityProduct && p.watermarkText != "" {
		if marked, ok := p.watermark(img); ok {
			img = marked
			processed = true
		}
	}

	if !processed {
		return up, nil
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, format); err != nil {
		return nil, fmt.Errorf("prepare: failed to encode image: %w", err)
	}

	out := *up
	out.Data = buf.Bytes()

	return &out, nil
}

// watermark draws the watermark text in the bottom-right corner.
func (p *Preparer) watermark(img image.Image) (image.Image, bool) {
	dc := gg.NewContextForImage(img)
	dc.SetColor(color.White)

	if err := dc.LoadFontFace(p.fontPath, 14); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to load watermark font, skipping watermark")
		return nil, false
	}

	margin := 10.0
	x := float64(dc.Width()) - margin
	y := float64(dc.Height()) - margin

	dc.DrawStringAnchored(p.watermarkText, x, y, 1, 1) // bottom-right corner
	dc.Fill()

	return dc.Image(), true
}
