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
	"github.com/HannahMarsh/onionnet/internal/metrics"
	"github.com/HannahMarsh/onionnet/internal/network"
	"github.com/HannahMarsh/onionnet/pkg/infrastructure/logger"
	"github.com/HannahMarsh/onionnet/pkg/utils"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	id := flag.Int("id", -1, "ID of the user (required)")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if *id < 0 {
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

	userConfig, ok := cfg.GetUser(*id)
	if !ok {
		userConfig = config.User{ID: *id, Host: "localhost", Port: cfg.BaseUserPort + *id, Address: cfg.UserAddress(*id)}
	}

	slog.Info("⚡ init user", "id", *id, "mailbox", cfg.Mailbox.Kind)

	listener, _, err := utils.Listen("", userConfig.Port)
	if err != nil {
		slog.Error("failed to listen", "err", err)
		os.Exit(1)
	}
	_, service, err := network.StartUser(config.GlobalCtx, cfg, userConfig.ID, listener, userConfig.Address, cfg.Directory.Address)
	if err != nil {
		slog.Error("failed to start user", "err", err)
		os.Exit(1)
	}

	shutdownMetrics := metrics.ServeMetrics(userConfig.PrometheusPort, metrics.UserCollectors...)

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
		slog.Error("user forced to shutdown", "err", err)
	}
}
