package enhance

import (
	"image"

	"github.com/a1x007/Qr-Scanner/internal/raster"
	"github.com/a1x007/Qr-Scanner/internal/style"
)

type diffusion struct {
	dx, dy int
	weight int
}

var (
	floydSteinberg = []diffusion{{1, 0, 7}, {-1, 1, 3}, {0, 1, 5}, {1, 1, 1}}
	atkinson       = []diffusion{{1, 0, 1}, {2, 0, 1}, {-1, 1, 1}, {0, 1, 1}, {1, 1, 1}, {0, 2, 1}}
)

// Binarize reduces img to opaque black and white by luminance. With NoDither
// values above Threshold become white; the dithering modes diffuse the
// quantisation error to unvisited neighbours.
func Binarize(img image.Image, dither style.Dither) *image.NRGBA {
	src := raster.ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	lum := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lum[y*w+x] = int(raster.Luma(src.NRGBAAt(x, y)))
		}
	}

	var kernel []diffusion
	divisor := 1
	switch dither {
	case style.FloydSteinberg:
		kernel, divisor = floydSteinberg, 16
	case style.Atkinson:
		kernel, divisor = atkinson, 8
	}

	out := image.NewNRGBA(src.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			old := lum[y*w+x]
			v := 0
			if old > Threshold {
				v = 255
			}
			i := out.PixOffset(x, y)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = uint8(v), uint8(v), uint8(v), 255

			qerr := old - v
			for _, d := range kernel {
				nx, ny := x+d.dx, y+d.dy
				if nx < 0 || nx >= w || ny >= h {
					continue
				}
				lum[ny*w+nx] += qerr * d.weight / divisor
			}
		}
	}
	return out
}
