package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cmd "github.com/a1x007/Qr-Scanner/cmd/ctl/cmd"
	"github.com/a1x007/Qr-Scanner/internal/logging"
)

var (
	GitSHA string = "NA"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup happens before os.Exit.
func run() int {
	// frame workers observe ctx, so an interrupt stops a long animation
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.SetDefault(logging.Logger(os.Stdout, false, slog.LevelInfo))
	ctx = logging.AppendCtx(ctx, slog.Group("qrctl", slog.String("git", GitSHA)))
	if err := cmd.NewRoot(ctx, GitSHA).Execute(); err != nil {
		return 1
	}
	return 0
}
