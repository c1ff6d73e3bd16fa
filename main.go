package main

import (
    "log/slog"
    "os"

    "github.com/a1x007/Qr-Scanner/internal/handlers"
    "github.com/a1x007/Qr-Scanner/internal/logging"
    "github.com/a1x007/Qr-Scanner/web/pages"
    "github.com/gin-gonic/gin"
)

// maxUploadMemory bounds the multipart bytes kept in memory per request.
const maxUploadMemory = 32 << 20

func main() {
    level, ok := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
    slog.SetDefault(logging.Logger(logging.Writer(os.Getenv("LOG_FILE")), false, level))
    if !ok && os.Getenv("LOG_LEVEL") != "" {
        slog.Warn("Invalid log level, defaulting to INFO", "level", os.Getenv("LOG_LEVEL"))
    }

    if os.Getenv(gin.EnvGinMode) == "" {
        gin.SetMode(gin.ReleaseMode)
    }
    r := newRouter(handlers.New())

    addr := getAddr()
    slog.Info("qr stylizer listening", "addr", addr)
    if err := r.Run(addr); err != nil {
        slog.Error("server stopped", "error", err)
        os.Exit(1)
    }
}

func newRouter(h *handlers.Handler) *gin.Engine {
    r := gin.New()
    r.Use(gin.Logger())
    r.Use(gin.Recovery())
    r.Use(handlers.RequestContext())
    r.MaxMultipartMemory = maxUploadMemory

    // API routes
    api := r.Group("/api")
    {
        api.GET("/qr", h.QRCodeHandler)
        api.POST("/combine", h.CombineHandler)
        api.POST("/convert", h.ConvertHandler)
        api.POST("/overlay", h.OverlayHandler)
    }
    r.GET("/healthz", h.Health)

    // Pages
    r.GET("/", func(c *gin.Context) {
        c.Header("Content-Type", "text/html; charset=utf-8")
        if err := pages.HomePage().Render(c.Request.Context(), c.Writer); err != nil {
            c.String(500, err.Error())
        }
    })
    return r
}

func getAddr() string {
    if port := os.Getenv("PORT"); port != "" {
        return ":" + port
    }
    return ":8080"
}
