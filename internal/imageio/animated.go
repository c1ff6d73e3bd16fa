package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"os"
	"time"

	"github.com/kettek/apng"
	"golang.org/x/image/draw"

	"github.com/a1x007/Qr-Scanner/internal/sequence"
)

// LoadSequence decodes path into frames. GIF and APNG files keep their
// timing; any other still format becomes a one-frame sequence.
func LoadSequence(path string) (sequence.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeSequence(f, path)
}

func DecodeSequence(r io.Reader, name string) (sequence.Sequence, error) {
	switch Ext(name) {
	case ".gif":
		return decodeGIF(r)
	case ".apng":
		return decodeAPNG(r)
	}
	img, err := Decode(r, name)
	if err != nil {
		return sequence.Sequence{}, err
	}
	return sequence.Single(img), nil
}

// SaveSequence writes seq to path as an animated GIF or APNG. Animated
// output always loops forever whatever the source loop count was. Still
// formats accept only single-frame sequences.
func SaveSequence(path string, seq sequence.Sequence) error {
	var buf bytes.Buffer
	if err := EncodeSequence(&buf, seq, path); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func EncodeSequence(w io.Writer, seq sequence.Sequence, name string) error {
	if seq.Len() == 0 {
		return sequence.ErrEmptySequence
	}
	switch Ext(name) {
	case ".gif":
		return encodeGIF(w, seq)
	case ".apng":
		return encodeAPNG(w, seq)
	}
	if n := seq.Len(); n > 1 {
		return fmt.Errorf("%w: %d frames cannot be written to %s", ErrUnsupportedFormat, n, Ext(name))
	}
	return Encode(w, seq.Frames[0].Image, name)
}

func delayOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return sequence.DefaultDelay
	}
	return d
}

// decodeGIF composites each frame over the logical screen, honouring the
// per-frame disposal method, so every output frame is a full picture.
func decodeGIF(r io.Reader) (sequence.Sequence, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("%w: gif: %w", ErrDecode, err)
	}
	if len(g.Image) == 0 {
		return sequence.Sequence{}, sequence.ErrEmptySequence
	}

	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		b := g.Image[0].Bounds()
		screen = image.Rect(0, 0, b.Max.X, b.Max.Y)
	}
	canvas := image.NewNRGBA(screen)

	seq := sequence.Sequence{LoopCount: g.LoopCount}
	for i, frame := range g.Image {
		var previous *image.NRGBA
		if disposal(g, i) == gif.DisposalPrevious {
			previous = clone(canvas)
		}
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		delay := time.Duration(g.Delay[i]) * 10 * time.Millisecond
		seq.Frames = append(seq.Frames, sequence.Frame{
			Image: clone(canvas),
			Delay: delayOrDefault(delay),
		})

		switch disposal(g, i) {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return seq, nil
}

func disposal(g *gif.GIF, i int) byte {
	if i < len(g.Disposal) {
		return g.Disposal[i]
	}
	return gif.DisposalNone
}

func decodeAPNG(r io.Reader) (sequence.Sequence, error) {
	a, err := apng.DecodeAll(r)
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("%w: apng: %w", ErrDecode, err)
	}

	var canvas *image.NRGBA
	seq := sequence.Sequence{LoopCount: int(a.LoopCount)}
	for _, f := range a.Frames {
		if canvas == nil {
			b := f.Image.Bounds()
			canvas = image.NewNRGBA(image.Rect(0, 0, f.XOffset+b.Dx(), f.YOffset+b.Dy()))
		}
		if f.IsDefault {
			continue
		}

		var previous *image.NRGBA
		if f.DisposeOp == apng.DISPOSE_OP_PREVIOUS {
			previous = clone(canvas)
		}
		b := f.Image.Bounds()
		area := image.Rect(f.XOffset, f.YOffset, f.XOffset+b.Dx(), f.YOffset+b.Dy())
		op := draw.Over
		if f.BlendOp == apng.BLEND_OP_SOURCE {
			op = draw.Src
		}
		draw.Draw(canvas, area, f.Image, b.Min, op)

		seq.Frames = append(seq.Frames, sequence.Frame{
			Image: clone(canvas),
			Delay: delayOrDefault(apngDelay(f.DelayNumerator, f.DelayDenominator)),
		})

		switch f.DisposeOp {
		case apng.DISPOSE_OP_BACKGROUND:
			draw.Draw(canvas, area, image.Transparent, image.Point{}, draw.Src)
		case apng.DISPOSE_OP_PREVIOUS:
			canvas = previous
		}
	}
	if len(seq.Frames) == 0 {
		return sequence.Sequence{}, sequence.ErrEmptySequence
	}
	return seq, nil
}

// apngDelay converts an APNG fraction of a second; a zero denominator
// means hundredths.
func apngDelay(num, den uint16) time.Duration {
	if den == 0 {
		den = 100
	}
	return time.Duration(num) * time.Second / time.Duration(den)
}

// gifPalette is the web-safe cube plus one fully transparent entry.
var gifPalette = append(append(color.Palette{}, palette.WebSafe...), color.Transparent)

func encodeGIF(w io.Writer, seq sequence.Sequence) error {
	out := &gif.GIF{LoopCount: 0}
	for _, f := range seq.Frames {
		b := f.Image.Bounds()
		p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), gifPalette)
		draw.FloydSteinberg.Draw(p, p.Bounds(), f.Image, b.Min)

		out.Image = append(out.Image, p)
		out.Delay = append(out.Delay, int(delayOrDefault(f.Delay)/(10*time.Millisecond)))
		out.Disposal = append(out.Disposal, gif.DisposalBackground)
	}
	if err := gif.EncodeAll(w, out); err != nil {
		return fmt.Errorf("%w: gif: %w", ErrEncode, err)
	}
	return nil
}

func encodeAPNG(w io.Writer, seq sequence.Sequence) error {
	a := apng.APNG{LoopCount: 0}
	for _, f := range seq.Frames {
		a.Frames = append(a.Frames, apng.Frame{
			Image:            f.Image,
			DelayNumerator:   uint16(delayOrDefault(f.Delay) / time.Millisecond),
			DelayDenominator: 1000,
			DisposeOp:        apng.DISPOSE_OP_BACKGROUND,
			BlendOp:          apng.BLEND_OP_SOURCE,
		})
	}
	if err := apng.Encode(w, a); err != nil {
		return fmt.Errorf("%w: apng: %w", ErrEncode, err)
	}
	return nil
}

func clone(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}
