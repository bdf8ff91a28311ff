package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the result cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache size and age",
				Flags:  []cli.Flag{repoFlag()},
				Action: runCacheStatsCmd,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached result",
				Flags:  []cli.Flag{repoFlag()},
				Action: runCacheClearCmd,
			},
		},
	}
}

func runCacheStatsCmd(c *cli.Context) error {
	e, err := loadEnv(c, c.String("repo"))
	if err != nil {
		return err
	}
	if !e.cache.Enabled() {
		color.Yellow("Cache is disabled")
		return nil
	}
	stats, err := e.cache.GetStats()
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Directory: %s\n", cacheDir(e.cfg, e.root))
	fmt.Fprintf(w, "Entries:   %d\n", stats.Entries)
	fmt.Fprintf(w, "Size:      %d bytes\n", stats.TotalSize)
	if stats.Entries > 0 {
		fmt.Fprintf(w, "Oldest:    %s\n", stats.OldestAge.Round(time.Second))
		fmt.Fprintf(w, "Newest:    %s\n", stats.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClearCmd(c *cli.Context) error {
	e, err := loadEnv(c, c.String("repo"))
	if err != nil {
		return err
	}
	if !e.cache.Enabled() {
		color.Yellow("Cache is disabled")
		return nil
	}
	if err := e.cache.Clear(); err != nil {
		return err
	}
	color.Green("Cache cleared")
	return nil
}
