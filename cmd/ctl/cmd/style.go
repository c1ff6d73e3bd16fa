package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a1x007/Qr-Scanner/internal/pipeline"
	"github.com/a1x007/Qr-Scanner/internal/style"
)

// addStyleFlags registers the flags mirroring the HTTP style parameters.
func addStyleFlags(cmd *cobra.Command) {
	def := style.Default()
	pf := cmd.Flags()
	pf.BoolP("colorized", "c", false, "halftone in colour instead of 1-bit black and white")
	pf.Float64("contrast", def.Contrast, "contrast factor (> 0)")
	pf.Float64("brightness", def.Brightness, "brightness factor (>= 0)")
	pf.Int("dot-size", def.DotSize, "halftone cell size in pixels")
	pf.Int("resolution", def.ResolutionFactor, "halftone supersampling factor")
	pf.StringP("quality", "q", "U", "pre-resize tier (L|M|H|U)")
	pf.String("dither", "none", "1-bit dithering (none|fs|atkinson)")
	pf.String("version", "auto", "QR version (auto|none|1-40)")
	pf.Int("workers", 0, "frame workers, 0 for one per CPU")
}

func styleOptions(cmd *cobra.Command) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	f := cmd.Flags()
	cfg := &opts.Style
	cfg.Colorized, _ = f.GetBool("colorized")
	cfg.Contrast, _ = f.GetFloat64("contrast")
	cfg.Brightness, _ = f.GetFloat64("brightness")
	cfg.DotSize, _ = f.GetInt("dot-size")
	cfg.ResolutionFactor, _ = f.GetInt("resolution")
	opts.Workers, _ = f.GetInt("workers")

	var err error
	q, _ := f.GetString("quality")
	if cfg.Quality, err = style.ParseQuality(q); err != nil {
		return opts, err
	}
	d, _ := f.GetString("dither")
	if cfg.Dither, err = style.ParseDither(d); err != nil {
		return opts, err
	}
	v, _ := f.GetString("version")
	if opts.Version, opts.DetectVersion, err = parseVersion(v); err != nil {
		return opts, err
	}
	return opts, cfg.Validate()
}

func parseVersion(s string) (*int, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return nil, true, nil
	case "none":
		return nil, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, false, fmt.Errorf("%w: version %q", style.ErrInvalidConfig, s)
	}
	return &v, false, nil
}
