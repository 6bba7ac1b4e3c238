package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jessevdk/go-flags"

	"AnimeNewsBot/internal/app"
	"AnimeNewsBot/internal/config"
	"AnimeNewsBot/internal/logging"
)

// Opts with all CLI options
type Opts struct {
	Config  string `short:"c" long:"config" env:"ANIMENEWSBOT_CONFIG" description:"path to yaml config"`
	DryRun  bool   `long:"dry-run" description:"log messages instead of posting"`
	Debug   bool   `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool   `short:"V" long:"version" description:"show version info"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if opts.Debug {
		level = "debug"
	}
	logger := logging.New(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("termination signal received")
		cancel()
	}()

	application, err := app.New(ctx, cfg, logger, opts.DryRun)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	// one run per invocation; recurring execution belongs to cron
	runErr := application.Run(ctx)
	if closeErr := application.Close(); closeErr != nil {
		logger.Warn("close failed", "error", closeErr)
	}
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
		os.Exit(1)
	}
}
