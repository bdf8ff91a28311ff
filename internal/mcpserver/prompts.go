package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

type promptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Default     string `yaml:"default"`
}

// promptFrontmatter is parsed from YAML frontmatter in prompt files.
type promptFrontmatter struct {
	Description string           `yaml:"description"`
	Arguments   []promptArgument `yaml:"arguments"`
}

type promptDefinition struct {
	Name string
	promptFrontmatter
	Body string
}

// loadPrompts reads every embedded prompt, sorted by file name.
func loadPrompts() []promptDefinition {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil
	}
	var defs []promptDefinition
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			continue
		}
		fm, body := parseFrontmatter(content)
		defs = append(defs, promptDefinition{
			Name:              strings.TrimSuffix(entry.Name(), ".md"),
			promptFrontmatter: fm,
			Body:              body,
		})
	}
	return defs
}

func (s *Server) registerPrompts() {
	for _, def := range loadPrompts() {
		prompt := &mcp.Prompt{
			Name:        def.Name,
			Description: def.Description,
		}
		for _, a := range def.Arguments {
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        a.Name,
				Description: a.Description,
				Required:    a.Default == "",
			})
		}
		s.server.AddPrompt(prompt, makePromptHandler(def))
	}
}

// parseFrontmatter extracts YAML frontmatter and returns it with the body.
func parseFrontmatter(content []byte) (promptFrontmatter, string) {
	var fm promptFrontmatter
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return fm, string(content)
	}
	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return fm, string(content)
	}
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return promptFrontmatter{}, string(content)
	}
	return fm, strings.TrimPrefix(string(rest[end+5:]), "\n")
}

func substituteArg(text, key string, args map[string]string, defaultVal string) string {
	val := args[key]
	if val == "" {
		val = defaultVal
	}
	return strings.ReplaceAll(text, "{{"+key+"}}", val)
}

func makePromptHandler(def promptDefinition) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		body := def.Body
		for _, a := range def.Arguments {
			body = substituteArg(body, a.Name, args, a.Default)
		}
		return &mcp.GetPromptResult{
			Description: def.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: body},
				},
			},
		}, nil
	}
}
