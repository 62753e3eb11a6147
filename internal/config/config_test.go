package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), strings.Join([]string{
		"[schema]",
		`path = "schemas/app.yaml"`,
		"",
		"[completion]",
		"indent = 4",
		"deprecated = true",
		"max-items = 20",
		"",
		"[completion.weights]",
		"tier = 50.0",
		"",
		"[associations]",
		`"deploy/**/*.yaml" = "schemas/deploy.yaml"`,
		`"*.yaml" = "schemas/other.yaml"`,
	}, "\n"))
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != filepath.Join(root, FileName) {
		t.Fatalf("unexpected config path %q", cfg.Path)
	}
	if got := cfg.SchemaPath(); got != filepath.Join(root, "schemas", "app.yaml") {
		t.Fatalf("unexpected schema path %q", got)
	}
	opts := cfg.AssistOptions()
	if opts.IndentUnit != 4 || !opts.SuggestDeprecated || opts.MaxItems != 20 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.TierDeemphasis != 50 || opts.NextContextDeemphasis != 10 {
		t.Fatalf("expected weights merged with defaults, got %+v", opts)
	}
	if !opts.DeindentProposals {
		t.Fatalf("expected deindent default to survive")
	}

	if got := cfg.SchemaFor(filepath.Join(root, "deploy", "prod", "x.yaml")); got != filepath.Join(root, "schemas", "deploy.yaml") {
		t.Fatalf("unexpected association %q", got)
	}
	if got := cfg.SchemaFor(filepath.Join(root, "top.yaml")); got != filepath.Join(root, "schemas", "other.yaml") {
		t.Fatalf("unexpected association %q", got)
	}
	if got := cfg.SchemaFor(filepath.Join(root, "nested", "x.json")); got != cfg.SchemaPath() {
		t.Fatalf("expected the default schema, got %q", got)
	}
}

func TestDiscoverWithoutFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != "" || cfg.Completion.Indent != 2 || !cfg.Schema.Cache {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "[completion]\nwidth = 3\n",
		"zero indent":     "[completion]\nindent = 0\n",
		"negative weight": "[completion.weights]\ndash = -1.0\n",
		"broken toml":     "[completion\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, content)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "YAMLASSIST_SCHEMA=from-env.yaml\nYAMLASSIST_DEINDENT=off\n")
	t.Setenv(EnvSchema, "")
	t.Setenv(EnvDeindent, "")
	t.Setenv(EnvTraceLevel, "detail")
	os.Unsetenv(EnvSchema)
	os.Unsetenv(EnvDeindent)

	cfg := Default()
	cfg.Root = dir
	if err := cfg.ApplyEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Schema.Path != "from-env.yaml" {
		t.Fatalf("expected schema from .env, got %q", cfg.Schema.Path)
	}
	if cfg.Completion.Deindent {
		t.Fatalf("expected deindent disabled by env")
	}
	if cfg.TraceLevel != "detail" {
		t.Fatalf("expected trace level from env, got %q", cfg.TraceLevel)
	}
}
