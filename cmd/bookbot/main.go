package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bookbot/internal/app"
	"bookbot/internal/config"
	"bookbot/internal/httpx"
	"bookbot/internal/platform/logger"
	"bookbot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl := logger.New(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Error("bot stopped", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := app.NewCore(cfg, zl)
	if err != nil {
		return err
	}

	client := telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.Token, cfg.Telegram.SendRPS, 3)
	client.SetObserver(core.Metrics)
	presenter := telegram.NewPresenter(client, zl.Named("telegram"))
	service := core.Service(cfg, presenter, zl.Named("conversation"))
	poller := telegram.NewPoller(client, service, zl.Named("poller"), cfg.App.Workers, cfg.Telegram.PollTimeout)

	opsServer := &http.Server{
		Addr: cfg.App.Addr,
		Handler: httpx.NewOpsHandler(zl.Named("ops"), core.Metrics.Handler(), core.Sessions,
			map[string]httpx.ReadyFunc{"catalog": core.Breaker.Ready}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		zl.Info("starting ops server", zap.String("addr", cfg.App.Addr))
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("ops server error", zap.Error(err))
		}
	}()

	zl.Info("polling for updates",
		zap.Int("workers", cfg.App.Workers),
		zap.Duration("poll_timeout", cfg.Telegram.PollTimeout),
		zap.Int("genres", core.Genres.Len()),
	)
	err = poller.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := opsServer.Shutdown(shutdownCtx); serr != nil {
		zl.Warn("ops server shutdown", zap.Error(serr))
	}
	zl.Info("bot stopped", zap.Int("sessions", core.Sessions.Len()))
	return err
}
