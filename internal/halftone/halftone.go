// Package halftone turns continuous-tone images into grids of
// variable-radius dots.
package halftone

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"

	"github.com/a1x007/Qr-Scanner/internal/raster"
)

var ink = color.NRGBA{A: 255}

// DotRadius maps a luminance to a dot radius: black gives dotSize/2, white
// gives zero.
func DotRadius(gray uint8, dotSize int) float64 {
	return float64(dotSize) * (1 - float64(gray)/255) / 2
}

// Render returns a halftone rendition of img with the same pixel dimensions.
// The source is oversampled by resolutionFactor, covered with one dot per
// dotSize x dotSize cell and scaled back down. Cells without a dot stay
// transparent. Values below 1 are treated as 1.
func Render(img image.Image, colorized bool, dotSize, resolutionFactor int) *image.NRGBA {
	if dotSize < 1 {
		dotSize = 1
	}
	if resolutionFactor < 1 {
		resolutionFactor = 1
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	up := raster.Resize(img, w*resolutionFactor, h*resolutionFactor)
	dots := drawDots(up, colorized, dotSize)
	return raster.Resize(dots, w, h)
}

// drawDots samples src at the origin of every cell and fills a circle centred
// in the cell on a transparent canvas of the same size.
func drawDots(src *image.NRGBA, colorized bool, dotSize int) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)

	half := float64(dotSize) / 2
	for y := 0; y < h; y += dotSize {
		for x := 0; x < w; x += dotSize {
			c := src.NRGBAAt(x, y)
			r := DotRadius(raster.Mean(c), dotSize)
			if r <= 0 {
				continue
			}
			fill := ink
			if colorized {
				fill = c
			}
			filler.SetColor(fill)
			rasterx.AddCircle(float64(x)+half, float64(y)+half, r, filler)
			filler.Draw()
			filler.Clear()
		}
	}
	return dst
}
