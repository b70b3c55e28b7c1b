package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"AssetCompare/internal/collector"
	"AssetCompare/internal/config"
	"AssetCompare/internal/directory"
	"AssetCompare/internal/logger"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// app holds what every subcommand needs.
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	closer  io.Closer
	dir     *directory.Directory
	fetcher collector.Fetcher
}

func newApp() (*app, error) {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dir, err := directory.Load(cfg.Directory.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			closer.Close()
			return nil, err
		}
		log.WithField("path", cfg.Directory.Path).Warn("ticker directory not found, names fall back to provider data")
		dir = directory.New(nil)
	}

	var fetcher collector.Fetcher
	if cfg.DataSource.Provider == "rest" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy, log)
	}
	log.WithFields(logrus.Fields{
		"source":    fetcher.Name(),
		"directory": dir.Len(),
	}).Info("data source ready")

	return &app{
		cfg:     cfg,
		log:     log,
		closer:  closer,
		dir:     dir,
		fetcher: collector.NewCachedFetcher(fetcher, cfg.DataSource.CacheTTL, cfg.DataSource.RequestsPerSecond, log),
	}, nil
}

func (a *app) Close() {
	if err := a.closer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close log: %v\n", err)
	}
}

// withApp adapts a command body that needs the application context.
func withApp(run func(ctx context.Context, a *app) subcommands.ExitStatus) func(context.Context) subcommands.ExitStatus {
	return func(ctx context.Context) subcommands.ExitStatus {
		a, err := newApp()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer a.Close()
		return run(ctx, a)
	}
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&compareCmd{}, "")
	commander.Register(&watchCmd{}, "")
	commander.Register(&tickersCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
