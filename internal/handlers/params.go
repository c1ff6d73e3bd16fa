package handlers

import (
	"bytes"
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/a1x007/Qr-Scanner/internal/imageio"
	"github.com/a1x007/Qr-Scanner/internal/pipeline"
	"github.com/a1x007/Qr-Scanner/internal/qrsource"
	"github.com/a1x007/Qr-Scanner/internal/sequence"
	"github.com/a1x007/Qr-Scanner/internal/style"
)

var contentTypes = map[string]string{
	".png":  "image/png",
	".apng": "image/apng",
	".gif":  "image/gif",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// formValue looks in the multipart/urlencoded body first, then the query.
func formValue(c *gin.Context, key, def string) string {
	if v, ok := c.GetPostForm(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(c.DefaultQuery(key, def))
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// parseVersion accepts "auto" (detect from the QR), "none" (no protected
// alignment patterns) or a version number.
func parseVersion(s string) (version *int, detect bool, err error) {
	switch strings.ToLower(s) {
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

// parseOptions reads the style parameters shared by every endpoint.
func (h *Handler) parseOptions(c *gin.Context) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	opts.Workers = h.Workers
	cfg := &opts.Style

	var err error
	if cfg.Colorized, err = parseBool(formValue(c, "colorized", "false")); err != nil {
		return opts, fmt.Errorf("%w: colorized: %w", style.ErrInvalidConfig, err)
	}
	if cfg.Contrast, err = strconv.ParseFloat(formValue(c, "contrast", "1.0"), 64); err != nil {
		return opts, fmt.Errorf("%w: contrast: %w", style.ErrInvalidConfig, err)
	}
	if cfg.Brightness, err = strconv.ParseFloat(formValue(c, "brightness", "1.0"), 64); err != nil {
		return opts, fmt.Errorf("%w: brightness: %w", style.ErrInvalidConfig, err)
	}
	if cfg.DotSize, err = strconv.Atoi(formValue(c, "dotSize", strconv.Itoa(cfg.DotSize))); err != nil {
		return opts, fmt.Errorf("%w: dotSize: %w", style.ErrInvalidConfig, err)
	}
	if cfg.ResolutionFactor, err = strconv.Atoi(formValue(c, "resolution", strconv.Itoa(cfg.ResolutionFactor))); err != nil {
		return opts, fmt.Errorf("%w: resolution: %w", style.ErrInvalidConfig, err)
	}
	if cfg.Quality, err = style.ParseQuality(formValue(c, "quality", "")); err != nil {
		return opts, err
	}
	if cfg.Dither, err = style.ParseDither(formValue(c, "dither", "")); err != nil {
		return opts, err
	}
	if opts.Version, opts.DetectVersion, err = parseVersion(formValue(c, "version", "auto")); err != nil {
		return opts, err
	}
	return opts, cfg.Validate()
}

// readSequence decodes the uploaded file in field, animated or not.
func readSequence(c *gin.Context, field string) (sequence.Sequence, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return sequence.Sequence{}, "", fmt.Errorf("%w: %s file is required", imageio.ErrDecode, field)
	}
	seq, err := decodeUpload(fh)
	return seq, fh.Filename, err
}

func decodeUpload(fh *multipart.FileHeader) (sequence.Sequence, error) {
	f, err := fh.Open()
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return imageio.DecodeSequence(f, fh.Filename)
}

// readQR takes the uploaded "qr" file, or renders one from "text". A
// rendered code pins the options to its version.
func readQR(c *gin.Context, opts *pipeline.Options) (image.Image, error) {
	if fh, err := c.FormFile("qr"); err == nil {
		seq, err := decodeUpload(fh)
		if err != nil {
			return nil, err
		}
		return seq.Frames[0].Image, nil
	}
	text := formValue(c, "text", "")
	if text == "" {
		return nil, fmt.Errorf("%w: qr file or text is required", qrsource.ErrEmptyText)
	}
	code, err := qrsource.FromText(text, opts.Version)
	if err != nil {
		return nil, err
	}
	if opts.Version == nil && opts.DetectVersion {
		opts.Version = &code.Version
	}
	return code.Image, nil
}

// outputExt picks the response format: the "format" parameter, else the
// input's own animated format, else PNG.
func outputExt(c *gin.Context, input string) (string, error) {
	if f := strings.ToLower(formValue(c, "format", "")); f != "" {
		ext := "." + strings.TrimPrefix(f, ".")
		if _, ok := contentTypes[ext]; !ok {
			return "", fmt.Errorf("%w: %q", imageio.ErrUnsupportedFormat, f)
		}
		return ext, nil
	}
	if imageio.IsAnimated(input) {
		return imageio.Ext(input), nil
	}
	return ".png", nil
}

func generateUniqueFilename(prefix, extension string) string {
	return fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), extension)
}

// writeSequence encodes seq and sends it inline.
func (h *Handler) writeSequence(c *gin.Context, seq sequence.Sequence, prefix, ext string) {
	var buf bytes.Buffer
	if err := imageio.EncodeSequence(&buf, seq, "out"+ext); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", generateUniqueFilename(prefix, ext)))
	c.Header("X-Frame-Count", strconv.Itoa(seq.Len()))
	c.Data(http.StatusOK, contentTypes[ext], buf.Bytes())
}
