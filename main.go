package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"calendar/src-server/cli"
	"calendar/src-server/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Debug(err.Error())
	}
	level, err := utils.ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		slog.Warn("invalid LOG_LEVEL, using info", "error", err)
	}
	cli.LogLevel.Set(level)
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      cli.LogLevel,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
