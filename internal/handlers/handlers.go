package handlers

import (
    "errors"
    "log/slog"
    "net/http"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"

    "github.com/a1x007/Qr-Scanner/internal/geometry"
    "github.com/a1x007/Qr-Scanner/internal/imageio"
    "github.com/a1x007/Qr-Scanner/internal/logging"
    "github.com/a1x007/Qr-Scanner/internal/qrsource"
    "github.com/a1x007/Qr-Scanner/internal/raster"
    "github.com/a1x007/Qr-Scanner/internal/sequence"
    "github.com/a1x007/Qr-Scanner/internal/style"
)

// Handler carries the settings shared by the HTTP handlers.
type Handler struct {
    // Workers bounds per-request frame concurrency; <= 0 uses every CPU.
    Workers int
}

// New returns a new Handler instance.
func New() *Handler { return &Handler{} }

// Health reports that the service is up.
func (h *Handler) Health(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequestContext tags the request context with a request id so library
// log records can be correlated with the gin access log.
func RequestContext() gin.HandlerFunc {
    return func(c *gin.Context) {
        id := c.GetHeader("X-Request-ID")
        if id == "" {
            id = uuid.NewString()
        }
        c.Header("X-Request-ID", id)
        ctx := logging.AppendCtx(c.Request.Context(),
            slog.String("request_id", id),
            slog.String("route", c.FullPath()),
        )
        c.Request = c.Request.WithContext(ctx)
        c.Next()
    }
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
    switch {
    case errors.Is(err, sequence.ErrEmptySequence):
        return http.StatusUnprocessableEntity
    case errors.Is(err, style.ErrInvalidConfig),
        errors.Is(err, geometry.ErrInvalidVersion),
        errors.Is(err, raster.ErrDimensionMismatch),
        errors.Is(err, imageio.ErrDecode),
        errors.Is(err, imageio.ErrUnsupportedFormat),
        errors.Is(err, qrsource.ErrEmptyText):
        return http.StatusBadRequest
    }
    return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
    status := statusFor(err)
    if status >= http.StatusInternalServerError {
        slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
    }
    c.JSON(status, gin.H{"error": err.Error()})
}
