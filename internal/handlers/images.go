package handlers

import (
	"fmt"
	"image"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/a1x007/Qr-Scanner/internal/pipeline"
	"github.com/a1x007/Qr-Scanner/internal/style"
)

// ConvertHandler halftones or binarizes an uploaded image or animation.
func (h *Handler) ConvertHandler(c *gin.Context) {
	opts, err := h.parseOptions(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	seq, name, err := readSequence(c, "image")
	if err != nil {
		h.fail(c, err)
		return
	}
	ext, err := outputExt(c, name)
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := pipeline.ConvertSequence(c.Request.Context(), seq, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeSequence(c, out, "converted", ext)
}

// OverlayHandler stamps a QR code onto an uploaded background.
//
// mode=blend (default) resizes the background to the QR and keeps only dark
// QR pixels. mode=paste draws the whole QR at x,y with the given opacity.
func (h *Handler) OverlayHandler(c *gin.Context) {
	opts, err := h.parseOptions(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	qr, err := readQR(c, &opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	bg, name, err := readSequence(c, "background")
	if err != nil {
		h.fail(c, err)
		return
	}
	ext, err := outputExt(c, name)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	switch mode := formValue(c, "mode", "blend"); mode {
	case "blend":
		out, err := pipeline.OverlaySequence(ctx, bg, qr, opts)
		if err != nil {
			h.fail(c, err)
			return
		}
		h.writeSequence(c, out, "overlay", ext)
	case "paste":
		at, opacity, err := parsePaste(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		out, err := pipeline.PasteSequence(ctx, bg, qr, at, opacity, opts)
		if err != nil {
			h.fail(c, err)
			return
		}
		h.writeSequence(c, out, "overlay", ext)
	default:
		h.fail(c, fmt.Errorf("%w: unknown overlay mode %q", style.ErrInvalidConfig, mode))
	}
}

// parsePaste reads x, y and opacity (0-255, default opaque).
func parsePaste(c *gin.Context) (image.Point, uint8, error) {
	x, err := strconv.Atoi(formValue(c, "x", "0"))
	if err != nil {
		return image.Point{}, 0, fmt.Errorf("%w: x: %w", style.ErrInvalidConfig, err)
	}
	y, err := strconv.Atoi(formValue(c, "y", "0"))
	if err != nil {
		return image.Point{}, 0, fmt.Errorf("%w: y: %w", style.ErrInvalidConfig, err)
	}
	opacity, err := strconv.ParseUint(formValue(c, "opacity", "255"), 10, 8)
	if err != nil {
		return image.Point{}, 0, fmt.Errorf("%w: opacity: %w", style.ErrInvalidConfig, err)
	}
	return image.Pt(x, y), uint8(opacity), nil
}
