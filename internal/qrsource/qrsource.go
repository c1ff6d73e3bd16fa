// Package qrsource renders plain QR codes sized for the compositor:
// three pixels per module and a twelve pixel white border.
package qrsource

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	skip2 "github.com/skip2/go-qrcode"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/a1x007/Qr-Scanner/internal/compose"
	"github.com/a1x007/Qr-Scanner/internal/geometry"
	"github.com/a1x007/Qr-Scanner/internal/imageio"
)

var ErrEmptyText = fmt.Errorf("qr text is empty")

// Code is a rendered symbol and the version it was encoded at.
type Code struct {
	Image   *image.NRGBA
	Version int
}

// Matrix is the module grid of a symbol; true is a dark module.
type Matrix [][]bool

// FromText encodes text. A nil version lets the encoder pick the smallest
// one that fits; otherwise the symbol is forced to that version.
func FromText(text string, version *int) (Code, error) {
	if text == "" {
		return Code{}, ErrEmptyText
	}
	var (
		m   Matrix
		v   int
		err error
	)
	if version == nil {
		m, v, err = autoMatrix(text)
	} else {
		if *version < 1 || *version > geometry.MaxVersion {
			return Code{}, fmt.Errorf("%w: %d", geometry.ErrInvalidVersion, *version)
		}
		m, err = forcedMatrix(text, *version)
		v = *version
	}
	if err != nil {
		return Code{}, err
	}
	return Code{Image: Render(m), Version: v}, nil
}

// autoMatrix goes through a one pixel per module PNG because the encoder
// does not expose its matrix directly.
func autoMatrix(text string) (Matrix, int, error) {
	qrc, err := qrcode.NewWith(text, qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create QR code: %w", err)
	}

	tmpFile := filepath.Join(os.TempDir(), "qr_matrix_"+uuid.NewString()+".png")
	defer os.Remove(tmpFile)

	writer, err := standard.New(tmpFile,
		standard.WithQRWidth(1),
		standard.WithBorderWidth(0),
		standard.WithBgColor(color.RGBA{255, 255, 255, 255}),
		standard.WithFgColor(color.RGBA{0, 0, 0, 255}),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create QR writer for matrix extraction: %w", err)
	}
	if err := qrc.Save(writer); err != nil {
		return nil, 0, fmt.Errorf("failed to generate QR for matrix extraction: %w", err)
	}
	writer.Close()

	img, err := imageio.Load(tmpFile)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read matrix image: %w", err)
	}
	n := img.Bounds().Dx()
	m := make(Matrix, n)
	for y := range m {
		m[y] = make([]bool, n)
		for x := range m[y] {
			r, _, _, _ := img.At(x, y).RGBA()
			m[y][x] = r < 32768
		}
	}
	return m, (n - 17) / 4, nil
}

// forcedMatrix encodes at skip2.High, which is level Q like the automatic
// path, so a forced version holds the same amount of text.
func forcedMatrix(text string, version int) (Matrix, error) {
	q, err := skip2.NewWithForcedVersion(text, version, skip2.High)
	if err != nil {
		return nil, fmt.Errorf("failed to encode at version %d: %w", version, err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// Render draws m at compose.ModulePixels per module inside a white margin
// of compose.Margin pixels.
func Render(m Matrix) *image.NRGBA {
	n := len(m)
	size := n*compose.ModulePixels + 2*compose.Margin
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for y, row := range m {
		for x, dark := range row {
			if !dark {
				continue
			}
			for dy := 0; dy < compose.ModulePixels; dy++ {
				for dx := 0; dx < compose.ModulePixels; dx++ {
					px := compose.Margin + x*compose.ModulePixels + dx
					py := compose.Margin + y*compose.ModulePixels + dy
					img.SetNRGBA(px, py, color.NRGBA{0, 0, 0, 0xff})
				}
			}
		}
	}
	return img
}
