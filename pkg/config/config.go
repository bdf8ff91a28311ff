// Package config loads remapper settings from TOML, YAML or JSON files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml"
	yamlv3 "gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration options for remapper.
type Config struct {
	// Matching thresholds
	Matcher MatcherConfig `koanf:"matcher" toml:"matcher" yaml:"matcher" json:"matcher"`

	// Which files take part in matching
	Files FilesConfig `koanf:"files" toml:"files" yaml:"files" json:"files"`

	// Result cache
	Cache CacheConfig `koanf:"cache" toml:"cache" yaml:"cache" json:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output" json:"output"`

	Log LogConfig `koanf:"log" toml:"log" yaml:"log" json:"log"`
}

// MatcherConfig holds the similarity thresholds of the matching pipeline.
type MatcherConfig struct {
	MinDice          float64 `koanf:"min_dice" toml:"min_dice" yaml:"min_dice" json:"min_dice"`
	FallbackDice     float64 `koanf:"fallback_dice" toml:"fallback_dice" yaml:"fallback_dice" json:"fallback_dice"`
	MaxIterations    int     `koanf:"max_iterations" toml:"max_iterations" yaml:"max_iterations" json:"max_iterations"`
	MinStatementDice float64 `koanf:"min_statement_dice" toml:"min_statement_dice" yaml:"min_statement_dice" json:"min_statement_dice"`
	// FullGraph parses every source file of both commits to build the usage
	// graphs instead of only the changed ones.
	FullGraph bool `koanf:"full_graph" toml:"full_graph" yaml:"full_graph" json:"full_graph"`
}

// FilesConfig selects source files.
type FilesConfig struct {
	Extensions  []string `koanf:"extensions" toml:"extensions" yaml:"extensions" json:"extensions"`
	ExcludeDirs []string `koanf:"exclude_dirs" toml:"exclude_dirs" yaml:"exclude_dirs" json:"exclude_dirs"`
	Patterns    []string `koanf:"exclude_patterns" toml:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
	MaxFileSize int64    `koanf:"max_file_size" toml:"max_file_size" yaml:"max_file_size" json:"max_file_size"` // bytes, 0 = unlimited
	Workers     int      `koanf:"workers" toml:"workers" yaml:"workers" json:"workers"`                         // 0 = GOMAXPROCS
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir" json:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl" json:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level string `koanf:"level" toml:"level" yaml:"level" json:"level"` // debug, info, warn, error
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Matcher: MatcherConfig{
			MinDice:          0.5,
			FallbackDice:     0.8,
			MaxIterations:    10,
			MinStatementDice: 0.5,
		},
		Files: FilesConfig{
			Extensions: []string{".java"},
			ExcludeDirs: []string{
				".git",
				".remapper",
				"build",
				"target",
				"node_modules",
			},
			Patterns:    []string{"package-info.java", "module-info.java"},
			MaxFileSize: 1 << 20,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".remapper/cache",
			TTL:     24 * 7,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a file over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// configNames are searched, in order, in each search directory.
var configNames = []string{
	"remapper.toml",
	"remapper.yaml",
	"remapper.yml",
	"remapper.json",
	".remapper.toml",
	".remapper.yaml",
	".remapper.yml",
	".remapper.json",
}

// Find returns the first config file found in dir or dir/.remapper, or ""
// when there is none.
func Find(dir string) string {
	for _, d := range []string{dir, filepath.Join(dir, ".remapper")} {
		for _, name := range configNames {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads the file at path, or the first config file found in
// dir when path is empty. It returns the defaults when no file exists. The
// returned source is the path that was loaded, "" for defaults.
func LoadOrDefault(path, dir string) (*Config, string, error) {
	if path == "" {
		path = Find(dir)
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	unit := func(name string, v float64) {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%w: %s must be in (0, 1], got %v", ErrInvalid, name, v))
		}
	}
	unit("matcher.min_dice", c.Matcher.MinDice)
	unit("matcher.fallback_dice", c.Matcher.FallbackDice)
	unit("matcher.min_statement_dice", c.Matcher.MinStatementDice)
	if c.Matcher.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("%w: matcher.max_iterations must be at least 1", ErrInvalid))
	}
	if len(c.Files.Extensions) == 0 {
		errs = append(errs, fmt.Errorf("%w: files.extensions is empty", ErrInvalid))
	}
	switch c.Output.Format {
	case "text", "json", "markdown", "toon":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown output.format %q", ErrInvalid, c.Output.Format))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log.level %q", ErrInvalid, c.Log.Level))
	}
	return errors.Join(errs...)
}

// ShouldExclude checks if a slash-separated repository path is excluded.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Files.ExcludeDirs {
		if strings.HasPrefix(path, dir+"/") || strings.Contains(path, "/"+dir+"/") {
			return true
		}
	}
	base := filepath.Base(path)
	for _, pattern := range c.Files.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// Accept reports whether path is a source file that takes part in matching.
func (c *Config) Accept(path string) bool {
	if c.ShouldExclude(path) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Files.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// Marshal renders the config as toml, yaml or json.
func (c *Config) Marshal(format string) ([]byte, error) {
	switch format {
	case "", "toml":
		return gotoml.Marshal(c)
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yamlv3.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "json":
		return json.MarshalIndent(c, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}
