// Package sequence applies a per-frame operation to animated images.
package sequence

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrEmptySequence is returned when a sequence has no frames.
var ErrEmptySequence = fmt.Errorf("sequence has no frames")

// DefaultDelay is used for frames whose source carries no timing.
const DefaultDelay = 100 * time.Millisecond

type Frame struct {
	Image *image.NRGBA
	Delay time.Duration
}

// Sequence is an ordered list of frames. LoopCount 0 loops forever.
type Sequence struct {
	Frames    []Frame
	LoopCount int
}

// Single wraps one still image as a one-frame sequence.
func Single(img *image.NRGBA) Sequence {
	return Sequence{Frames: []Frame{{Image: img, Delay: DefaultDelay}}}
}

// Len returns the number of frames.
func (s Sequence) Len() int { return len(s.Frames) }

// FrameFunc transforms frame i.
type FrameFunc func(ctx context.Context, i int, img *image.NRGBA) (*image.NRGBA, error)

// Process runs fn over every frame using at most workers goroutines
// (runtime.NumCPU when workers <= 0). Output order, delays and loop count
// follow the input. The first error cancels the remaining work.
func Process(ctx context.Context, seq Sequence, workers int, fn FrameFunc) (Sequence, error) {
	if len(seq.Frames) == 0 {
		return Sequence{}, ErrEmptySequence
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]Frame, len(seq.Frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range seq.Frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := fn(ctx, i, f.Image)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			delay := f.Delay
			if delay <= 0 {
				delay = DefaultDelay
			}
			out[i] = Frame{Image: img, Delay: delay}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Sequence{}, err
	}
	return Sequence{Frames: out, LoopCount: seq.LoopCount}, nil
}
