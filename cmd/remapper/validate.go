package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/remapper/internal/output"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check JSON reports against the report schema",
		ArgsUsage: "<report.json>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "schema",
				Usage: "Print the report JSON schema and exit",
			},
		},
		Action: runValidateCmd,
	}
}

func runValidateCmd(c *cli.Context) error {
	if c.Bool("schema") {
		_, err := fmt.Fprint(c.App.Writer, output.ReportSchema())
		return err
	}
	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one report file is required")
	}

	var errs []error
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := output.ValidateReport(data); err != nil {
			color.Red("%s: %v", path, err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		color.Green("%s: valid", path)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
