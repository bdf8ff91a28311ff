package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/remapper/internal/cache"
	"github.com/panbanda/remapper/internal/output"
	"github.com/panbanda/remapper/internal/service/matching"
	"github.com/panbanda/remapper/pkg/config"
)

// env is the per-invocation state shared by commands that touch a repository.
type env struct {
	cfg       *config.Config
	cfgSource string
	root      string
	logger    *slog.Logger
	cache     *cache.Cache
}

func repoFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "repo",
		Aliases: []string{"r"},
		Value:   ".",
		Usage:   "Path inside the git repository",
	}
}

// loadEnv loads the config found near dir and builds the logger and cache.
func loadEnv(c *cli.Context, dir string) (*env, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path %s: %w", dir, err)
	}
	cfg, src, err := config.LoadOrDefault(c.String("config"), root)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, cfgSource: src, root: root, logger: newLogger(c, cfg)}
	if src != "" {
		e.logger.Debug("loaded config", "path", src)
	}

	enabled := cfg.Cache.Enabled && !c.Bool("no-cache")
	e.cache, err = cache.New(cacheDir(cfg, root), cfg.Cache.TTL, enabled)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return e, nil
}

func cacheDir(cfg *config.Config, root string) string {
	if filepath.IsAbs(cfg.Cache.Dir) {
		return cfg.Cache.Dir
	}
	return filepath.Join(root, cfg.Cache.Dir)
}

func newLogger(c *cli.Context, cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (e *env) service() *matching.Service {
	return matching.New(
		matching.WithConfig(e.cfg),
		matching.WithCache(e.cache),
		matching.WithLogger(e.logger),
	)
}

// newFormatter honours --format and --output over the config defaults.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	path := c.String("output")
	colored := cfg.Output.Color && !color.NoColor && path == ""
	return output.NewFormatter(output.ParseFormat(format), path, colored)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func parseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return time.Time{}, fmt.Errorf("--since must be a date (YYYY-MM-DD), RFC 3339 time or positive duration (got %q)", s)
	}
	return time.Now().Add(-d), nil
}
