package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"bookbot/internal/app"
	"bookbot/internal/config"
	"bookbot/internal/console"
	"bookbot/internal/platform/logger"
)

// bookbot-console runs the conversation against the live catalog in a
// terminal, as a single user.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl := logger.NewFileOnly(cfg.App.LogFilePath)
	defer func() { _ = zl.Sync() }()

	core, err := app.NewCore(cfg, zl)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	presenter := console.NewPresenter(os.Stdout)
	service := core.Service(cfg, presenter, zl)

	color.Cyan("bookbot console: type a menu label, free text, or #N to press a button. Ctrl-D quits.")
	if err := console.Run(ctx, os.Stdin, os.Stdout, presenter, service, 1); err != nil {
		log.Fatalf("console: %v", err)
	}
}
