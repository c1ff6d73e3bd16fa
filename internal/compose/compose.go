// Package compose decorates the data modules of a rendered QR code with a
// background image while leaving every structural pixel untouched.
//
// The QR bitmap is expected at ModulePixels pixels per module with a
// four-module quiet zone, so the symbol starts Margin pixels in.
package compose

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/a1x007/Qr-Scanner/internal/enhance"
	"github.com/a1x007/Qr-Scanner/internal/geometry"
	"github.com/a1x007/Qr-Scanner/internal/raster"
	"github.com/a1x007/Qr-Scanner/internal/style"
)

// ErrDimensionMismatch is returned when the QR bitmap is too small to have
// an interior or the background cannot cover it.
var ErrDimensionMismatch = raster.ErrDimensionMismatch

const (
	ModulePixels = 3
	// Margin is the quiet zone in pixels.
	Margin = 4 * ModulePixels
	// Corner is the side of a finder footprint (finder plus separator).
	Corner = 8 * ModulePixels
	// OutputScale is the final nearest-neighbour enlargement.
	OutputScale = 3

	timingFirst = 6 * ModulePixels
	timingLast  = timingFirst + ModulePixels - 1
)

// DefaultVersion is assumed when a caller neither pins nor infers a version.
const DefaultVersion = 2

// Combine merges background into qr. With colorized false the decoration is
// reduced to black and white first. A nil version skips alignment
// protection. The result is OutputScale times the size of qr.
func Combine(qr, background image.Image, colorized bool, contrast, brightness float64, version *int) (*image.NRGBA, error) {
	cfg := style.Default()
	cfg.Colorized = colorized
	cfg.Contrast = contrast
	cfg.Brightness = brightness
	return CombineWith(qr, background, cfg, version)
}

// CombineWith is Combine driven by a full style configuration; only
// Colorized, Contrast, Brightness and Dither are consulted. Quality and the
// halftone settings shape the background beforehand, see enhance.Decoration.
func CombineWith(qr, background image.Image, cfg style.Config, version *int) (*image.NRGBA, error) {
	out := raster.ToNRGBA(qr)
	w, h := out.Rect.Dx(), out.Rect.Dy()
	iw, ih := w-2*Margin, h-2*Margin
	if iw <= 0 || ih <= 0 {
		return nil, fmt.Errorf("%w: qr bitmap %dx%d has no interior", ErrDimensionMismatch, w, h)
	}
	if bb := background.Bounds(); bb.Dx() == 0 || bb.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty background", ErrDimensionMismatch)
	}

	protected, err := geometry.Cached(version, ModulePixels)
	if err != nil {
		return nil, err
	}
	if version != nil && protected.Size() != iw {
		slog.Debug("qr size does not match version", "version", *version, "symbol", protected.Size(), "interior", iw)
	}

	bg := enhance.Adjust(background, cfg.Contrast, cfg.Brightness)
	bg = raster.FitInterior(bg, iw, ih)
	if !raster.Covers(bg, iw, ih) {
		return nil, fmt.Errorf("%w: background %v does not cover %dx%d", ErrDimensionMismatch, bg.Bounds().Size(), iw, ih)
	}

	src := bg
	if !cfg.Colorized {
		src = enhance.Binarize(bg, cfg.Dither)
	}

	for j := 0; j < ih; j++ {
		for i := 0; i < iw; i++ {
			if structural(i, j, w, h) || bg.Pix[bg.PixOffset(i, j)+3] == 0 || protected.Contains(i, j) {
				continue
			}
			d := out.PixOffset(i+Margin, j+Margin)
			s := src.PixOffset(i, j)
			copy(out.Pix[d:d+4], src.Pix[s:s+4])
		}
	}

	return raster.UpscaleNearest(out, OutputScale), nil
}

// structural reports the fixed exclusions for interior pixel (i, j) of a
// w x h QR bitmap: timing band, the three finder corners and the centre
// pixel of every module.
func structural(i, j, w, h int) bool {
	if (i >= timingFirst && i <= timingLast) || (j >= timingFirst && j <= timingLast) {
		return true
	}
	if i < Corner && j < Corner {
		return true
	}
	if i < Corner && j > h-2*Corner-1 {
		return true
	}
	if i > w-2*Corner-1 && j < Corner {
		return true
	}
	return i%ModulePixels == 1 && j%ModulePixels == 1
}

// InferVersion derives the QR version from the bitmap size, assuming the
// ModulePixels/Margin geometry. ok is false when the size does not match
// any version.
func InferVersion(qr image.Image) (version int, ok bool) {
	w := qr.Bounds().Dx() - 2*Margin
	if w <= 0 || w%ModulePixels != 0 || qr.Bounds().Dy() != qr.Bounds().Dx() {
		return 0, false
	}
	modules := w / ModulePixels
	if (modules-17)%4 != 0 {
		return 0, false
	}
	v := (modules - 17) / 4
	if v < 1 || v > geometry.MaxVersion {
		return 0, false
	}
	return v, true
}
