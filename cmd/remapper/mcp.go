package main

import (
	"github.com/urfave/cli/v2"

	"github.com/panbanda/remapper/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes commit matching
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "remapper": {
        "command": "remapper",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - match_commit      Entity and statement pairs of one commit
  - match_history     match_commit over a first-parent range
  - validate_report   Schema check of a persisted JSON report`,
		Flags:  []cli.Flag{repoFlag()},
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest (server.json)",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	e, err := loadEnv(c, c.String("repo"))
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(c)
	defer cancel()

	server := mcpserver.NewServer(version,
		mcpserver.WithConfig(e.cfg),
		mcpserver.WithCache(e.cache),
		mcpserver.WithLogger(e.logger),
	)
	return server.Run(ctx)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(append(data, '\n'))
	return err
}
