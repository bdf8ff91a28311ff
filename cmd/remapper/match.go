package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/remapper/internal/output"
	"github.com/panbanda/remapper/internal/progress"
	"github.com/panbanda/remapper/internal/service/matching"
	"github.com/panbanda/remapper/internal/vcs"
	"github.com/panbanda/remapper/pkg/models"
)

func viewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "unchanged",
			Usage: "Include entities that are identical on both sides",
		},
		&cli.BoolFlag{
			Name:  "no-statements",
			Usage: "Omit statement block pairs",
		},
	}
}

func matchCmd() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Aliases:   []string{"m"},
		Usage:     "Match the entities of commits against their first parents",
		ArgsUsage: "<commit>...",
		Flags:     append([]cli.Flag{repoFlag()}, viewFlags()...),
		Action:    runMatchCmd,
	}
}

func runMatchCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one commit is required")
	}
	e, err := loadEnv(c, c.String("repo"))
	if err != nil {
		return err
	}
	svc := e.service()
	repo, err := svc.Open(e.root)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	results := make([]models.CommitResult, 0, c.Args().Len())
	for _, rev := range c.Args().Slice() {
		res, err := svc.MatchCommit(ctx, repo, rev)
		if err != nil {
			return fmt.Errorf("match %s: %w", rev, err)
		}
		results = append(results, *res)
	}
	return writeResults(c, e, results)
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Match every commit of a first-parent range, newest first",
		Flags: append([]cli.Flag{
			repoFlag(),
			&cli.StringFlag{
				Name:  "from",
				Usage: "Oldest revision, exclusive",
			},
			&cli.StringFlag{
				Name:  "to",
				Value: "HEAD",
				Usage: "Newest revision",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "Only commits authored after a date (YYYY-MM-DD), RFC 3339 time or duration (e.g. 720h)",
			},
			&cli.IntFlag{
				Name:  "max",
				Usage: "Maximum number of commits (0 = unlimited)",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide the progress bar",
			},
		}, viewFlags()...),
		Action: runHistoryCmd,
	}
}

func runHistoryCmd(c *cli.Context) error {
	since, err := parseSince(c.String("since"))
	if err != nil {
		return err
	}
	if c.Int("max") < 0 {
		return fmt.Errorf("--max must not be negative (got %d)", c.Int("max"))
	}
	e, err := loadEnv(c, c.String("repo"))
	if err != nil {
		return err
	}
	svc := e.service()
	repo, err := svc.Open(e.root)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	var tracker *progress.Tracker
	opts := matching.HistoryOptions{
		HistoryOptions: vcs.HistoryOptions{
			To:    c.String("to"),
			From:  c.String("from"),
			Since: since,
			Max:   c.Int("max"),
		},
	}
	if !c.Bool("no-progress") {
		opts.OnStart = func(total int) { tracker = progress.New(os.Stderr, "Matching commits...", total) }
		opts.OnCommit = func(info vcs.CommitInfo) { tracker.Step(info.SHA) }
	}

	results, err := svc.History(ctx, repo, opts)
	if err != nil {
		if errors.Is(err, matching.ErrNoCommits) {
			color.Yellow("No commits in range")
			return nil
		}
		tracker.Fail(err)
		return err
	}
	tracker.Done()
	return writeResults(c, e, results)
}

// writeResults applies the view flags and renders results.
func writeResults(c *cli.Context, e *env, results []models.CommitResult) error {
	for i := range results {
		if !c.Bool("unchanged") {
			results[i].UnchangedEntities = nil
			results[i].UnchangedStatements = nil
		}
		if c.Bool("no-statements") {
			results[i].MatchedStatements = nil
			results[i].UnchangedStatements = nil
			results[i].AddedStatements = nil
			results[i].DeletedStatements = nil
		}
	}

	formatter, err := newFormatter(c, e.cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(output.NewMatchView(results...))
}
