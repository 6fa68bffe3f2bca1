package main

import (
	"context"
	"io"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"cafestock/internal/config"
	"cafestock/internal/http/handlers"
	applog "cafestock/internal/log"
	"cafestock/internal/repos"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	logger := applog.Logger()

	// Optional file logging
	var logFile *os.File
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logger.Warn().Err(err).Str("file", cfg.LogFile).Msg("could not open log file")
		} else {
			logFile = f
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
			logger = applog.Logger()
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Str("dsn", cfg.DBDSN).Msg("open database")
	}

	app, deps := handlers.NewApp(db, cfg)

	ctx := context.Background()
	if created, err := deps.Auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap admin")
	} else if created {
		logger.Info().Str("username", cfg.AdminUsername).Msg("admin account created")
	}
	if n, err := deps.Auth.PurgeExpired(ctx); err != nil {
		logger.Warn().Err(err).Msg("purge expired sessions")
	} else if n > 0 {
		logger.Info().Int64("sessions", n).Msg("expired sessions purged")
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
	code := <-wait
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("close database")
	}
	logger.Info().Int("code", code).Msg("exited")
	if logFile != nil {
		_ = logFile.Close()
	}
	os.Exit(code)
}
