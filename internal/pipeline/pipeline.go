// Package pipeline wires the styling stages together for whole images,
// animations and files on disk.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/a1x007/Qr-Scanner/internal/compose"
	"github.com/a1x007/Qr-Scanner/internal/enhance"
	"github.com/a1x007/Qr-Scanner/internal/imageio"
	"github.com/a1x007/Qr-Scanner/internal/overlay"
	"github.com/a1x007/Qr-Scanner/internal/raster"
	"github.com/a1x007/Qr-Scanner/internal/sequence"
	"github.com/a1x007/Qr-Scanner/internal/style"
)

// DefaultCombinedName is written next to the background when no output is given.
const DefaultCombinedName = "combined_qrcode.png"

// Options controls a pipeline run.
type Options struct {
	Style style.Config
	// Version of the QR symbol. When nil and DetectVersion is set the
	// version is inferred from the QR bitmap size, falling back to
	// compose.DefaultVersion. Nil without detection protects no alignment
	// patterns.
	Version       *int
	DetectVersion bool
	// Workers bounds frame concurrency; <= 0 uses every CPU.
	Workers int
}

// DefaultOptions returns the default style with version detection on.
func DefaultOptions() Options {
	return Options{Style: style.Default(), DetectVersion: true}
}

func (o Options) validate() (Options, error) {
	if err := o.Style.Validate(); err != nil {
		return o, err
	}
	o.Style = o.Style.Normalize()
	return o, nil
}

// ConvertSequence enhances every frame of seq.
func ConvertSequence(ctx context.Context, seq sequence.Sequence, opts Options) (sequence.Sequence, error) {
	opts, err := opts.validate()
	if err != nil {
		return sequence.Sequence{}, err
	}
	return sequence.Process(ctx, seq, opts.Workers, func(ctx context.Context, i int, img *image.NRGBA) (*image.NRGBA, error) {
		slog.DebugContext(ctx, "enhancing frame", "frame", i, "size", img.Bounds().Size())
		return enhance.Frame(img, opts.Style), nil
	})
}

// CombineSequence conditions every frame of the background sequence with
// enhance.Decoration and decorates qr with it.
func CombineSequence(ctx context.Context, qr image.Image, background sequence.Sequence, opts Options) (sequence.Sequence, error) {
	opts, err := opts.validate()
	if err != nil {
		return sequence.Sequence{}, err
	}
	version := opts.Version
	if version == nil && opts.DetectVersion {
		v, ok := compose.InferVersion(qr)
		if !ok {
			v = compose.DefaultVersion
		}
		version = &v
		slog.DebugContext(ctx, "resolved qr version", "version", v, "detected", ok)
	}
	// contrast and brightness are applied once, while conditioning
	combineCfg := opts.Style
	combineCfg.Contrast, combineCfg.Brightness = 1, 1
	return sequence.Process(ctx, background, opts.Workers, func(ctx context.Context, i int, img *image.NRGBA) (*image.NRGBA, error) {
		return compose.CombineWith(qr, enhance.Decoration(img, opts.Style), combineCfg, version)
	})
}

// OverlaySequence stamps qr onto every background frame after resizing
// the frame to the QR's size.
func OverlaySequence(ctx context.Context, background sequence.Sequence, qr image.Image, opts Options) (sequence.Sequence, error) {
	size := qr.Bounds().Size()
	return sequence.Process(ctx, background, opts.Workers, func(ctx context.Context, i int, img *image.NRGBA) (*image.NRGBA, error) {
		return overlay.Overlay(raster.Resize(img, size.X, size.Y), qr)
	})
}

// PasteSequence draws qr over every background frame at a position with a
// uniform opacity. Frames keep their own size.
func PasteSequence(ctx context.Context, background sequence.Sequence, qr image.Image, at image.Point, opacity uint8, opts Options) (sequence.Sequence, error) {
	return sequence.Process(ctx, background, opts.Workers, func(ctx context.Context, i int, img *image.NRGBA) (*image.NRGBA, error) {
		return overlay.Paste(img, qr, at, opacity), nil
	})
}

// ConvertFile enhances the image at in and writes it to out. GIF and APNG
// inputs are processed frame by frame.
func ConvertFile(ctx context.Context, in, out string, opts Options) error {
	seq, err := load(in)
	if err != nil {
		return err
	}
	res, err := ConvertSequence(ctx, seq, opts)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", in, err)
	}
	return save(ctx, out, res)
}

// CombineFiles decorates the QR at qrPath with the background at bgPath and
// returns the path written. An empty out selects DefaultCombinedName in the
// background's directory, with the background's extension when it is
// animated. Multi-frame results written to a still format fail with
// imageio.ErrUnsupportedFormat.
func CombineFiles(ctx context.Context, qrPath, bgPath, out string, opts Options) (string, error) {
	qr, err := imageio.Load(qrPath)
	if err != nil {
		return "", err
	}
	return CombineImage(ctx, qr, bgPath, out, opts)
}

// CombineImage is CombineFiles for a QR already in memory.
func CombineImage(ctx context.Context, qr image.Image, bgPath, out string, opts Options) (string, error) {
	bg, err := load(bgPath)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = defaultCombinedPath(bgPath, bg)
	}
	res, err := CombineSequence(ctx, qr, bg, opts)
	if err != nil {
		return "", fmt.Errorf("failed to combine with %s: %w", bgPath, err)
	}
	return out, save(ctx, out, res)
}

// defaultCombinedPath keeps an animated background's container so no frames
// are dropped.
func defaultCombinedPath(bgPath string, bg sequence.Sequence) string {
	name := DefaultCombinedName
	if bg.Len() > 1 && imageio.IsAnimated(bgPath) {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + imageio.Ext(bgPath)
	}
	return filepath.Join(filepath.Dir(bgPath), name)
}

// OverlayFiles stamps the QR at qrPath onto the background at bgPath.
func OverlayFiles(ctx context.Context, bgPath, qrPath, out string, opts Options) error {
	qr, err := imageio.Load(qrPath)
	if err != nil {
		return err
	}
	bg, err := load(bgPath)
	if err != nil {
		return err
	}
	res, err := OverlaySequence(ctx, bg, qr, opts)
	if err != nil {
		return fmt.Errorf("failed to overlay %s on %s: %w", qrPath, bgPath, err)
	}
	return save(ctx, out, res)
}

// PasteFiles draws the QR at qrPath onto the background at bgPath.
func PasteFiles(ctx context.Context, bgPath, qrPath, out string, at image.Point, opacity uint8, opts Options) error {
	qr, err := imageio.Load(qrPath)
	if err != nil {
		return err
	}
	bg, err := load(bgPath)
	if err != nil {
		return err
	}
	res, err := PasteSequence(ctx, bg, qr, at, opacity, opts)
	if err != nil {
		return fmt.Errorf("failed to paste %s on %s: %w", qrPath, bgPath, err)
	}
	return save(ctx, out, res)
}

func load(path string) (sequence.Sequence, error) {
	if imageio.IsAnimated(path) {
		return imageio.LoadSequence(path)
	}
	img, err := imageio.Load(path)
	if err != nil {
		return sequence.Sequence{}, err
	}
	return sequence.Single(img), nil
}

func save(ctx context.Context, out string, seq sequence.Sequence) error {
	slog.InfoContext(ctx, "writing output", "path", out, "frames", seq.Len())
	return imageio.SaveSequence(out, seq)
}
