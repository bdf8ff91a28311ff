package mcpserver

import (
	"encoding/json"
)

// Manifest is the registry entry (server.json) of the remapper MCP server,
// schema version 2025-10-17.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes one way to launch the server.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	Version              string        `json:"version"`
	Transport            Transport     `json:"transport"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
}

// Argument is a command-line argument passed after the image or binary.
type Argument struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"isRequired,omitempty"`
}

type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"isRequired,omitempty"`
}

type Transport struct {
	Type string `json:"type"`
}

const manifestDescription = "Matches the Java types, methods, fields and statement blocks of a " +
	"git commit with those of its parent, following renames, moves and edits"

// GenerateManifest creates the MCP server manifest JSON. The container image
// expects the repository to analyze mounted at /repo.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	manifest := Manifest{
		Schema:      "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json",
		Name:        "io.github.panbanda/remapper",
		Title:       "Remapper",
		Description: manifestDescription,
		Version:     version,
		Repository: &Repository{
			URL:    "https://github.com/panbanda/remapper",
			Source: "github",
		},
		Packages: []Package{
			{
				RegistryType: "oci",
				Identifier:   "ghcr.io/panbanda/remapper:" + version,
				Version:      version,
				Transport:    Transport{Type: "stdio"},
				PackageArguments: []Argument{
					{Type: "positional", Value: "mcp"},
					{
						Type:        "named",
						Name:        "--repo",
						Value:       "/repo",
						Description: "Git repository whose commits are matched",
						IsRequired:  true,
					},
				},
				EnvironmentVariables: []EnvVariable{
					{Name: "REMAPPER_CONFIG", Description: "Path to a remapper config file (TOML, YAML, or JSON)"},
				},
			},
		},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
