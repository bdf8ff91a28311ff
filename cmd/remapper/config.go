package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/remapper/pkg/config"
)

func configFormatFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:  "config-format",
		Value: value,
		Usage: "Config syntax: toml, yaml or json",
	}
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Create or inspect configuration",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write a config file with default settings",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					configFormatFlag(""),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: runConfigInitCmd,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Flags:  []cli.Flag{repoFlag(), configFormatFlag("toml")},
				Action: runConfigShowCmd,
			},
		},
	}
}

// configFormat picks the syntax from the flag, then the file extension.
func configFormat(flag, path string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return "toml"
}

func runConfigInitCmd(c *cli.Context) error {
	path := "remapper.toml"
	if c.Args().Len() > 0 {
		path = c.Args().First()
	}
	format := configFormat(c.String("config-format"), path)
	if c.Args().Len() == 0 && format != "toml" {
		path = "remapper." + format
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	data, err := config.DefaultConfig().Marshal(format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	color.Green("Created %s", path)
	return nil
}

func runConfigShowCmd(c *cli.Context) error {
	e, err := loadEnv(c, c.String("repo"))
	if err != nil {
		return err
	}
	data, err := e.cfg.Marshal(configFormat(c.String("config-format"), ""))
	if err != nil {
		return err
	}
	if e.cfgSource != "" {
		fmt.Fprintf(c.App.ErrWriter, "# loaded from %s\n", e.cfgSource)
	} else {
		fmt.Fprintln(c.App.ErrWriter, "# built-in defaults")
	}
	_, err = c.App.Writer.Write(data)
	return err
}
