package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HannahMarsh/onionnet/config"
	"github.com/HannahMarsh/onionnet/internal/api/api_functions"
	"github.com/HannahMarsh/onionnet/internal/metrics"
	"github.com/HannahMarsh/onionnet/internal/network"
	"github.com/HannahMarsh/onionnet/pkg/infrastructure/logger"
	"github.com/HannahMarsh/onionnet/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	// Define command-line flags
	id := flag.Int("id", -1, "ID of the new relay (required)")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	// Check if the required flag is provided
	if *id == -1 {
		_, _ = fmt.Fprintf(os.Stderr, "Error: the -id flag is required\n")
		flag.Usage()
		os.Exit(2)
	}

	if _, err := config.InitGlobal(); err != nil {
		slog.Error("failed to init config", "err", err)
		os.Exit(1)
	}
	cfg := config.GlobalConfig

	if *logLevel == "" {
		*logLevel = cfg.LogLevel
	}
	logger.SetUpLogrusAndSlog(*logLevel)

	// set GOMAXPROCS
	if _, err := maxprocs.Set(); err != nil {
		slog.Error("failed set max procs", "err", err)
		os.Exit(1)
	}

	relayConfig, ok := cfg.GetRelay(*id)
	if !ok {
		relayConfig = config.Relay{ID: *id, Host: "localhost", Port: cfg.BaseRelayPort + *id, Address: cfg.RelayAddress(*id)}
	}

	slog.Info("⚡ init relay", "id", *id, "scheme", cfg.Scheme)

	listener, _, err := utils.Listen("", relayConfig.Port)
	if err != nil {
		slog.Error("failed to listen", "err", err)
		os.Exit(1)
	}

	r, directory, err := network.NewRelay(config.GlobalCtx, cfg, relayConfig.ID, relayConfig.Address, cfg.Directory.Address, nil)
	if err != nil {
		slog.Error("failed to create relay", "err", err)
		os.Exit(1)
	}
	if err = r.RegisterWithRetry(config.GlobalCtx, directory, 5*time.Second); err != nil {
		if errors.Is(err, api_functions.ErrRegistrationConflict) {
			slog.Error("relay id is taken by another key; pick a different id", "id", r.ID, "err", err)
		} else {
			slog.Error("failed to register with directory", "err", err)
		}
		os.Exit(1)
	}
	slog.Info("registered with directory", "id", r.ID)
	service := network.ServeRelay(r, listener)

	shutdownMetrics := metrics.ServeMetrics(relayConfig.PrometheusPort, metrics.RelayCollectors...)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case v := <-quit:
		config.GlobalCancel()
		slog.Info("", "signal.Notify", v)
	case done := <-config.GlobalCtx.Done():
		slog.Info("", "ctx.Done", done)
	}

	shutdownMetrics()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = service.Shutdown(ctx); err != nil {
		slog.Error("relay forced to shutdown", "err", err)
	}
}
