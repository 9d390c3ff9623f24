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
	"github.com/HannahMarsh/onionnet/internal/network"
	"github.com/HannahMarsh/onionnet/pkg/infrastructure/logger"
	"github.com/HannahMarsh/onionnet/pkg/utils"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	logLevel := flag.String("log-level", "", "Log level (overrides config)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

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

	slog.Info("⚡ init directory", "store", cfg.Directory.Store.Kind)

	listener, _, err := utils.Listen("", cfg.Directory.Port)
	if err != nil {
		slog.Error("failed to listen", "err", err)
		os.Exit(1)
	}
	service, err := network.StartDirectory(config.GlobalCtx, cfg, listener, cfg.Directory.Address)
	if err != nil {
		slog.Error("failed to start directory", "err", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case v := <-quit:
		config.GlobalCancel()
		slog.Info("", "signal.Notify", v)
	case done := <-config.GlobalCtx.Done():
		slog.Info("", "ctx.Done", done)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = service.Shutdown(ctx); err != nil {
		slog.Error("directory forced to shutdown", "err", err)
	}
}
