package image

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/jmylchreest/palsnap/internal/colour"
)

// Sample returns the Oklab colour of every pixel of img in row-major order.
// Alpha is discarded. When maxDimension is positive and the image is larger,
// it is first fitted within maxDimension x maxDimension.
func Sample(img image.Image, maxDimension int) []colour.Lab {
	bounds := img.Bounds()
	if maxDimension > 0 && (bounds.Dx() > maxDimension || bounds.Dy() > maxDimension) {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	// NRGBA holds straight (non-premultiplied) channels.
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()

	samples := make([]colour.Lab, 0, w*h)
	for y := range h {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			samples = append(samples, colour.LabFromRGB8(row[x], row[x+1], row[x+2]))
		}
	}
	return samples
}
