// Package overlay stamps a rendered QR code on top of artwork.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/a1x007/Qr-Scanner/internal/raster"
)

// ErrDimensionMismatch is returned when the background is smaller than the QR.
var ErrDimensionMismatch = raster.ErrDimensionMismatch

// DarkThreshold is the per-channel limit below which a QR pixel counts as ink.
const DarkThreshold = 50

// Overlay keeps the dark QR pixels and shows the background everywhere else.
// The result has the QR's dimensions; background must already cover them.
func Overlay(background, qr image.Image) (*image.NRGBA, error) {
	q := raster.ToNRGBA(qr)
	w, h := q.Rect.Dx(), q.Rect.Dy()
	if !raster.Covers(background, w, h) {
		return nil, fmt.Errorf("%w: background %v smaller than qr %dx%d",
			ErrDimensionMismatch, background.Bounds().Size(), w, h)
	}
	bg := raster.ToNRGBA(background)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := q.PixOffset(x, y)
			px := q.Pix[s : s+4]
			if !isDark(px) {
				b := bg.PixOffset(x, y)
				px = bg.Pix[b : b+4]
			}
			copy(out.Pix[out.PixOffset(x, y):], px)
		}
	}
	return out, nil
}

func isDark(px []uint8) bool {
	return px[0] < DarkThreshold && px[1] < DarkThreshold && px[2] < DarkThreshold
}

// Paste draws qr over background at the given position with a uniform
// opacity (0 invisible, 255 opaque). The background is not modified.
func Paste(background, qr image.Image, at image.Point, opacity uint8) *image.NRGBA {
	out := raster.ToNRGBA(background)
	r := image.Rectangle{Min: at, Max: at.Add(qr.Bounds().Size())}
	mask := image.NewUniform(color.Alpha{A: opacity})
	draw.DrawMask(out, r, qr, qr.Bounds().Min, mask, image.Point{}, draw.Over)
	return out
}
