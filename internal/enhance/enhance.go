// Package enhance conditions frames before compositing: quality pre-resize,
// contrast and brightness, then either 1-bit reduction or halftone.
package enhance

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/a1x007/Qr-Scanner/internal/halftone"
	"github.com/a1x007/Qr-Scanner/internal/raster"
	"github.com/a1x007/Qr-Scanner/internal/style"
)

// Threshold splits luminance into black (<= Threshold) and white.
const Threshold = 128

// Adjust applies contrast and then brightness. Both are linear per-channel
// factors where 1.0 leaves the image unchanged. Contrast pulls every channel
// towards or away from the mean luminance, brightness scales towards black.
// Alpha is preserved.
func Adjust(img image.Image, contrast, brightness float64) *image.NRGBA {
	out := raster.ToNRGBA(img)
	if contrast != 1 {
		mean := meanLuma(out)
		for i := 0; i < len(out.Pix); i += 4 {
			for k := 0; k < 3; k++ {
				out.Pix[i+k] = clamp8(mean + contrast*(float64(out.Pix[i+k])-mean))
			}
		}
	}
	if brightness != 1 {
		for i := 0; i < len(out.Pix); i += 4 {
			for k := 0; k < 3; k++ {
				out.Pix[i+k] = clamp8(brightness * float64(out.Pix[i+k]))
			}
		}
	}
	return out
}

func meanLuma(img *image.NRGBA) float64 {
	n := len(img.Pix) / 4
	if n == 0 {
		return 0
	}
	var sum uint64
	for i := 0; i < len(img.Pix); i += 4 {
		sum += uint64(raster.Luma(color.NRGBA{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}))
	}
	return math.Floor(float64(sum)/float64(n) + 0.5)
}

// clamp8 truncates toward zero and clips to [0,255].
func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// ResizeForQuality scales a frame by its tier: Low /4, Medium /2, High x0.75,
// Ultra unchanged. Sides never drop below one pixel.
func ResizeForQuality(img image.Image, q style.Quality) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch q {
	case style.Low:
		w, h = w/4, h/4
	case style.Medium:
		w, h = w/2, h/2
	case style.High:
		w, h = int(float64(w)*0.75), int(float64(h)*0.75)
	default:
		return raster.ToNRGBA(img)
	}
	return imaging.Resize(img, max(w, 1), max(h, 1), imaging.Lanczos)
}

// Enhance applies contrast, brightness and the style branch to an already
// resized frame. Monochrome frames are thresholded (or dithered) to opaque
// black and white; colorized frames go through the halftone renderer.
func Enhance(frame image.Image, contrast, brightness float64, colorized bool, dotSize, resolutionFactor int, dither style.Dither) *image.NRGBA {
	adjusted := Adjust(frame, contrast, brightness)
	if !colorized {
		return Binarize(adjusted, dither)
	}
	return halftone.Render(adjusted, true, dotSize, resolutionFactor)
}

// Frame runs the whole per-frame pipeline for cfg. The quality pre-resize
// runs first since dot radius and thresholds depend on resolution.
func Frame(img image.Image, cfg style.Config) *image.NRGBA {
	cfg = cfg.Normalize()
	resized := ResizeForQuality(img, cfg.Quality)
	return Enhance(resized, cfg.Contrast, cfg.Brightness, cfg.Colorized, cfg.DotSize, cfg.ResolutionFactor, cfg.Dither)
}

// Decoration conditions a background frame for the compositor: quality
// pre-resize, contrast and brightness, then the halftone renderer when
// colorized. Monochrome decorations are left in colour because the
// compositor binarizes them itself, so callers pass the compositor a config
// with neutral contrast and brightness.
func Decoration(img image.Image, cfg style.Config) *image.NRGBA {
	cfg = cfg.Normalize()
	adjusted := Adjust(ResizeForQuality(img, cfg.Quality), cfg.Contrast, cfg.Brightness)
	if !cfg.Colorized {
		return adjusted
	}
	return halftone.Render(adjusted, true, cfg.DotSize, cfg.ResolutionFactor)
}
