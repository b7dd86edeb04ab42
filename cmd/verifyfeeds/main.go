package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-health-news/internal/app"
	"github.com/samvad-hq/samvad-health-news/internal/config"
	"github.com/samvad-hq/samvad-health-news/internal/logger"
	"github.com/samvad-hq/samvad-health-news/internal/verify"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "verifyfeeds failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.NewFlagSet("verifyfeeds")
	strict := fs.Bool("strict", false, "exit non-zero when any feed fails verification")
	fs.Int("verify-concurrency", 0, "number of concurrent probes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vr, err := app.NewVerifierRuntime(cfg, os.Stdout, log)
	if err != nil {
		logger.ErrorObj("failed to initialize verifier", "error", err.Error())
		return err
	}

	results, err := vr.Run(ctx)
	if err != nil {
		return fmt.Errorf("verify feeds: %w", err)
	}
	if _, failed, invalid := verify.Tally(results); *strict && failed+invalid > 0 {
		return fmt.Errorf("%d feeds failed and %d returned non-feed content", failed, invalid)
	}
	return nil
}
