package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/a1x007/Qr-Scanner/internal/imageio"
	"github.com/a1x007/Qr-Scanner/internal/pipeline"
	"github.com/a1x007/Qr-Scanner/internal/qrsource"
)

// maxTextLength caps the encoded payload to avoid abuse.
const maxTextLength = 4096

// QRCodeHandler renders a plain QR code at the geometry the compositor
// expects: 3px modules and a 12px quiet zone.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text parameter is required"})
		return
	}
	if len(text) > maxTextLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is too long"})
		return
	}

	version, _, err := parseVersion(c.DefaultQuery("version", "auto"))
	if err != nil {
		h.fail(c, err)
		return
	}
	code, err := qrsource.FromText(text, version)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, code.Image, "qr.png"); err != nil {
		h.fail(c, err)
		return
	}
	slog.DebugContext(c.Request.Context(), "rendered qr", "version", code.Version, "bytes", buf.Len())

	c.Header("Cache-Control", "public, max-age=3600") // Cache for 1 hour
	c.Header("X-QR-Version", strconv.Itoa(code.Version))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// CombineHandler decorates a QR code with an uploaded background.
//
// Multipart fields: background (required), qr (file) or text, plus the
// style parameters read by parseOptions.
func (h *Handler) CombineHandler(c *gin.Context) {
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

	out, err := pipeline.CombineSequence(c.Request.Context(), qr, bg, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeSequence(c, out, "combined_qrcode", ext)
}
