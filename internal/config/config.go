// Package config loads yamlassist.toml and environment overrides and turns
// them into explicit engine options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar"
	"github.com/joho/godotenv"

	"yamlassist/internal/assist"
	"yamlassist/internal/telemetry"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "yamlassist.toml"

// Environment variables that override file values.
const (
	EnvSchema     = "YAMLASSIST_SCHEMA"
	EnvTraceLevel = "YAMLASSIST_TRACE_LEVEL"
	EnvDeindent   = "YAMLASSIST_DEINDENT"
	EnvMetrics    = "YAMLASSIST_METRICS"
	EnvTraces     = "YAMLASSIST_TRACES"
)

// Config is the resolved configuration.
type Config struct {
	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
	// Root is the directory relative paths resolve against.
	Root string `toml:"-"`

	Schema     SchemaConfig     `toml:"schema"`
	Completion CompletionConfig `toml:"completion"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`

	// AssociationTable is the raw [associations] table.
	AssociationTable map[string]string `toml:"associations"`
	// Associations maps document globs to schema files, in file order.
	Associations []Association `toml:"-"`
	// TraceLevel comes from the environment only.
	TraceLevel string `toml:"-"`
}

type SchemaConfig struct {
	Path  string `toml:"path"`
	Cache bool   `toml:"cache"`
}

type CompletionConfig struct {
	Indent     int     `toml:"indent"`
	Deindent   bool    `toml:"deindent"`
	Deprecated bool    `toml:"deprecated"`
	MaxItems   int     `toml:"max-items"`
	Weights    Weights `toml:"weights"`
}

type Weights struct {
	Tier        float64 `toml:"tier"`
	NextContext float64 `toml:"next-context"`
	IndentLevel float64 `toml:"indent-level"`
	Dash        float64 `toml:"dash"`
}

type TelemetryConfig struct {
	Metrics bool `toml:"metrics"`
	Traces  bool `toml:"traces"`
}

// Association binds documents matching Pattern to a schema file.
type Association struct {
	Pattern string
	Schema  string
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	d := assist.DefaultOptions()
	return &Config{
		Schema: SchemaConfig{Cache: true},
		Completion: CompletionConfig{
			Indent:   d.IndentUnit,
			Deindent: d.DeindentProposals,
			Weights: Weights{
				Tier:        d.TierDeemphasis,
				NextContext: d.NextContextDeemphasis,
				IndentLevel: d.IndentDeemphasis,
				Dash:        d.DashDeemphasis,
			},
		},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads the configuration file at path on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	for _, key := range meta.Keys() {
		if len(key) == 2 && key[0] == "associations" {
			cfg.Associations = append(cfg.Associations, Association{
				Pattern: key[1],
				Schema:  cfg.AssociationTable[key[1]],
			})
		}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("completion", "indent") && cfg.Completion.Indent <= 0 {
		return nil, fmt.Errorf("%s: [completion].indent must be positive", path)
	}
	if cfg.Completion.MaxItems < 0 {
		return nil, fmt.Errorf("%s: [completion].max-items must not be negative", path)
	}
	w := cfg.Completion.Weights
	if w.Tier < 0 || w.NextContext < 0 || w.IndentLevel < 0 || w.Dash < 0 {
		return nil, fmt.Errorf("%s: [completion.weights] must not be negative", path)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// Discover finds and loads the configuration for startDir, falling back to
// the defaults rooted at startDir.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		cfg := Default()
		root, err := filepath.Abs(startDir)
		if err != nil {
			return nil, err
		}
		cfg.Root = root
		return cfg, nil
	}
	return Load(path)
}

// ApplyEnv loads the given .env files, when they exist, and applies the
// YAMLASSIST_* overrides.
func (c *Config) ApplyEnv(envFiles ...string) error {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return fmt.Errorf("load env: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSchema)); v != "" {
		c.Schema.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTraceLevel)); v != "" {
		c.TraceLevel = v
	}
	c.Completion.Deindent = telemetry.EnvBool(os.Getenv(EnvDeindent), c.Completion.Deindent)
	c.Telemetry.Metrics = telemetry.EnvBool(os.Getenv(EnvMetrics), c.Telemetry.Metrics)
	c.Telemetry.Traces = telemetry.EnvBool(os.Getenv(EnvTraces), c.Telemetry.Traces)
	return nil
}

// Resolve makes p absolute against the configuration root.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}

// SchemaPath returns the default schema file, or "".
func (c *Config) SchemaPath() string { return c.Resolve(c.Schema.Path) }

// SchemaFor returns the schema associated with docPath. The first matching
// association wins; the default schema is used otherwise.
func (c *Config) SchemaFor(docPath string) string {
	rel := docPath
	if c.Root != "" && filepath.IsAbs(docPath) {
		if r, err := filepath.Rel(c.Root, docPath); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	for _, a := range c.Associations {
		if ok, err := doublestar.Match(a.Pattern, rel); err == nil && ok {
			return c.Resolve(a.Schema)
		}
	}
	return c.SchemaPath()
}

// AssistOptions builds the engine options this configuration describes.
func (c *Config) AssistOptions() assist.Options {
	opts := assist.DefaultOptions()
	opts.IndentUnit = c.Completion.Indent
	opts.SeqIndent = c.Completion.Indent
	opts.DeindentProposals = c.Completion.Deindent
	opts.SuggestDeprecated = c.Completion.Deprecated
	opts.MaxItems = c.Completion.MaxItems
	opts.TierDeemphasis = c.Completion.Weights.Tier
	opts.NextContextDeemphasis = c.Completion.Weights.NextContext
	opts.IndentDeemphasis = c.Completion.Weights.IndentLevel
	opts.DashDeemphasis = c.Completion.Weights.Dash
	return opts
}

// TelemetryConfig returns the telemetry settings.
func (c *Config) TelemetryConfig() telemetry.Config {
	return telemetry.Config{
		EnableMetrics: c.Telemetry.Metrics,
		EnableTraces:  c.Telemetry.Traces,
	}
}
