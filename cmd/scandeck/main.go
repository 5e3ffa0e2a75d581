// Command scandeck runs the security-testing dashboard server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/scandeck/scandeck/pkg/api"
	"github.com/scandeck/scandeck/pkg/auth"
	"github.com/scandeck/scandeck/pkg/config"
	"github.com/scandeck/scandeck/pkg/defaults"
	"github.com/scandeck/scandeck/pkg/duration"
	"github.com/scandeck/scandeck/pkg/headercheck"
	"github.com/scandeck/scandeck/pkg/httpx"
	"github.com/scandeck/scandeck/pkg/probe"
	"github.com/scandeck/scandeck/pkg/scan"
	"github.com/scandeck/scandeck/pkg/store"
	"github.com/scandeck/scandeck/pkg/telemetry"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "scandeck:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint: cfg.OTLPEndpoint,
		Insecure: cfg.OTLPInsecure,
	})
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	authSvc := &auth.Service{Store: st}
	if cfg.BootstrapUser != "" && cfg.BootstrapPassword != "" {
		if _, err := st.GetUserByUsername(ctx, cfg.BootstrapUser); errors.Is(err, store.ErrNotFound) {
			if _, err := authSvc.Register(ctx, cfg.BootstrapUser, cfg.BootstrapPassword); err != nil {
				return fmt.Errorf("seed account: %w", err)
			}
			logger.Info("seeded bootstrap account", slog.String("username", cfg.BootstrapUser))
		}
	}

	probeClient := httpx.New(httpx.Config{
		Timeout:            cfg.ProbeTimeout.Std(),
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	dispatcher := probe.New(probe.Options{
		Client:            probeClient,
		RequestsPerSecond: cfg.ProbeRateLimit,
		Logger:            logger,
	})

	srv := &api.Server{
		Store:  st,
		Auth:   authSvc,
		XSS:    &scan.XSSScanner{Dispatcher: dispatcher, Logger: logger},
		SQLi: &scan.SQLiScanner{
			NewDispatcher: func(basicAuth *probe.BasicAuth) *probe.Dispatcher {
				return probe.New(probe.Options{
					Client:            probeClient,
					Auth:              basicAuth,
					RequestsPerSecond: cfg.ProbeRateLimit,
					Logger:            logger,
				})
			},
			Logger: logger,
		},
		Header: &headercheck.Checker{Dispatcher: dispatcher},
		Logger: logger,
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  duration.ServerRead,
		WriteTimeout: duration.ServerWrite,
		IdleTimeout:  duration.ServerIdle,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.String("addr", cfg.ListenAddr),
			slog.String("version", defaults.Version))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), duration.ShutdownGrace)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
