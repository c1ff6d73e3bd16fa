// Package raster holds the bitmap helpers shared by the styling stages.
//
// A bitmap is an *image.NRGBA with a zero origin: a contiguous row-major
// buffer of straight (non-premultiplied) 8-bit RGBA.
package raster

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrDimensionMismatch is returned when two bitmaps have incompatible sizes
// for the operation attempted.
var ErrDimensionMismatch = errors.New("bitmap dimensions mismatch")

// ToNRGBA returns a zero-origin copy of img. Gray, paletted and premultiplied
// inputs are normalised to 4 straight channels. The input is never aliased.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Resize scales img to w x h with a Catmull-Rom filter.
func Resize(img image.Image, w, h int) *image.NRGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	// Scaling happens in premultiplied space so transparent pixels do not
	// bleed their colour into neighbours.
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(tmp, tmp.Bounds(), img, img.Bounds(), draw.Src, nil)
	return ToNRGBA(tmp)
}

// FitInterior scales img so its shorter axis matches the target on that axis
// and its longer axis follows proportionally.
func FitInterior(img image.Image, targetW, targetH int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < h {
		return Resize(img, targetW, targetW*h/w)
	}
	return Resize(img, targetH*w/h, targetH)
}

// UpscaleNearest enlarges img by an integer factor with nearest-neighbour
// sampling, keeping hard module edges intact.
func UpscaleNearest(img *image.NRGBA, factor int) *image.NRGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w*factor, h*factor))
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		row := dst.Pix[y*factor*dst.Stride : y*factor*dst.Stride+dst.Stride]
		for x := 0; x < w; x++ {
			px := src[x*4 : x*4+4]
			for k := 0; k < factor; k++ {
				copy(row[(x*factor+k)*4:], px)
			}
		}
		for k := 1; k < factor; k++ {
			copy(dst.Pix[(y*factor+k)*dst.Stride:], row)
		}
	}
	return dst
}

// Covers reports whether img is at least w x h.
func Covers(img image.Image, w, h int) bool {
	b := img.Bounds()
	return b.Dx() >= w && b.Dy() >= h
}

// Luma is the ITU-R 601-2 luminance used for 1-bit conversion.
func Luma(c color.NRGBA) uint8 {
	return uint8((uint32(c.R)*19595 + uint32(c.G)*38470 + uint32(c.B)*7471 + 0x8000) >> 16)
}

// Mean is the plain channel average used for halftone dot sizing.
func Mean(c color.NRGBA) uint8 {
	return uint8((int(c.R) + int(c.G) + int(c.B)) / 3)
}

// IsGrayscale reports whether every pixel has equal red, green and blue.
func IsGrayscale(img *image.NRGBA) bool {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i] != img.Pix[i+1] || img.Pix[i+1] != img.Pix[i+2] {
			return false
		}
	}
	return true
}
