// Package style holds the immutable styling record passed into every
// enhancement, halftone and compositing call.
package style

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned by Validate and the Parse helpers.
var ErrInvalidConfig = errors.New("invalid style configuration")

// Quality is the pre-resize tier applied to a frame before enhancement.
type Quality int

const (
	Ultra Quality = iota
	High
	Medium
	Low
)

// Scale returns the linear scale factor of the tier.
func (q Quality) Scale() float64 {
	switch q {
	case Low:
		return 0.25
	case Medium:
		return 0.5
	case High:
		return 0.75
	default:
		return 1
	}
}

func (q Quality) String() string {
	switch q {
	case Low:
		return "L"
	case Medium:
		return "M"
	case High:
		return "H"
	default:
		return "U"
	}
}

// ParseQuality accepts L, M, H, U (or low, medium, high, ultra) in any case.
// An empty string selects Ultra.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "u", "ultra":
		return Ultra, nil
	case "h", "high":
		return High, nil
	case "m", "medium":
		return Medium, nil
	case "l", "low":
		return Low, nil
	}
	return Ultra, fmt.Errorf("%w: unknown quality %q", ErrInvalidConfig, s)
}

// Dither selects how a frame is reduced to 1 bit.
type Dither int

const (
	// NoDither is a hard luminance threshold at 128.
	NoDither Dither = iota
	FloydSteinberg
	Atkinson
)

func (d Dither) String() string {
	switch d {
	case FloydSteinberg:
		return "floyd-steinberg"
	case Atkinson:
		return "atkinson"
	default:
		return "none"
	}
}

// ParseDither accepts none, floyd-steinberg (fs) and atkinson.
func ParseDither(s string) (Dither, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "threshold":
		return NoDither, nil
	case "fs", "floyd", "floyd-steinberg", "floydsteinberg":
		return FloydSteinberg, nil
	case "atkinson":
		return Atkinson, nil
	}
	return NoDither, fmt.Errorf("%w: unknown dither %q", ErrInvalidConfig, s)
}

// Config is passed by value and never mutated mid-pipeline.
type Config struct {
	Colorized        bool
	Contrast         float64
	Brightness       float64
	DotSize          int
	ResolutionFactor int
	Quality          Quality
	Dither           Dither
}

// Default returns the configuration used when a caller sets nothing.
func Default() Config {
	return Config{
		Contrast:         1.0,
		Brightness:       1.0,
		DotSize:          2,
		ResolutionFactor: 2,
		Quality:          Ultra,
		Dither:           NoDither,
	}
}

// Normalize returns a copy with DotSize and ResolutionFactor clamped to at least 1.
func (c Config) Normalize() Config {
	if c.DotSize < 1 {
		c.DotSize = 1
	}
	if c.ResolutionFactor < 1 {
		c.ResolutionFactor = 1
	}
	return c
}

// Validate reports contrast <= 0 or brightness < 0.
func (c Config) Validate() error {
	if c.Contrast <= 0 {
		return fmt.Errorf("%w: contrast must be > 0, got %v", ErrInvalidConfig, c.Contrast)
	}
	if c.Brightness < 0 {
		return fmt.Errorf("%w: brightness must be >= 0, got %v", ErrInvalidConfig, c.Brightness)
	}
	return nil
}
