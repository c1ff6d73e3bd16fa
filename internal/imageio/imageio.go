// Package imageio reads and writes the still and animated formats the
// stylizer accepts.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/a1x007/Qr-Scanner/internal/raster"
)

var (
	ErrDecode            = fmt.Errorf("failed to decode image")
	ErrEncode            = fmt.Errorf("failed to encode image")
	ErrUnsupportedFormat = fmt.Errorf("unsupported image format")
)

// JPEGQuality is used for .jpg and .jpeg output.
const JPEGQuality = 95

// Ext returns the lower-cased extension of name including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsAnimated reports whether path names a format that may carry frames.
func IsAnimated(path string) bool {
	switch Ext(path) {
	case ".gif", ".apng":
		return true
	}
	return false
}

// Load decodes the still image at path. Animated files yield their first frame.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads a still image. name is only used to pick the SVG rasterizer.
func Decode(r io.Reader, name string) (*image.NRGBA, error) {
	if Ext(name) == ".svg" {
		return decodeSVG(r)
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}
	return raster.ToNRGBA(img), nil
}

// Save writes img to path, choosing the encoder from the extension.
func Save(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := Encode(&buf, img, path); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Encode writes img in the format named by name's extension.
func Encode(w io.Writer, img image.Image, name string) error {
	var err error
	switch Ext(name) {
	case ".png", ".apng":
		err = png.Encode(w, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case ".gif":
		err = gif.Encode(w, img, &gif.Options{NumColors: 256})
	case ".bmp":
		err = bmp.Encode(w, img)
	case ".tif", ".tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, Ext(name))
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, name, err)
	}
	return nil
}
