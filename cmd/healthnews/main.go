package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-health-news/internal/app"
	"github.com/samvad-hq/samvad-health-news/internal/config"
	"github.com/samvad-hq/samvad-health-news/internal/export"
	"github.com/samvad-hq/samvad-health-news/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "healthnews failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.NewFlagSet("healthnews")
	once := fs.Bool("once", false, "build the feed once, print it and exit")
	format := fs.String("format", "json", "output format for --once (json, jsonfeed, rss, atom)")
	output := fs.String("output", "", "write the --once feed to this file instead of stdout")
	fs.String("publishers-file", "", "path to the publishers YAML/JSON file")
	fs.Int("refresh-interval", 0, "refresh loop cadence in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}

	outFormat, err := export.ParseFormat(*format)
	if err != nil {
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

	logger.InfoObj("healthnews starting", "config", map[string]any{
		"app_env":          cfg.Env,
		"sources_file":     cfg.SourcesFile,
		"publishers_file":  cfg.PublishersFile,
		"storage_type":     cfg.StorageType,
		"refresh_interval": cfg.RefreshInterval.String(),
		"once":             *once,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err.Error())
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.ErrorObj("runtime close failed", "error", cerr.Error())
		}
	}()

	if !*once {
		if err := rt.Run(ctx); err != nil {
			return fmt.Errorf("runtime run: %w", err)
		}
		return nil
	}

	snap, err := rt.Once(ctx)
	if err != nil {
		return fmt.Errorf("build feed: %w", err)
	}
	body, err := export.Render(snap.Items, outFormat, export.Meta{
		Title:       "Health News",
		Link:        "https://github.com/samvad-hq/samvad-health-news",
		Description: "Health news from local and international sources",
		Updated:     snap.BuiltAt,
	})
	if err != nil {
		return fmt.Errorf("render feed: %w", err)
	}
	return writeOutput(*output, body)
}

func writeOutput(path string, body []byte) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
