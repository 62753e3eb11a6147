package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"yamlassist/internal/assist"
	"yamlassist/internal/config"
	"yamlassist/internal/schema"
	"yamlassist/internal/telemetry"
)

const cacheApp = "yamlassist"

// loadConfig reads --config, or discovers yamlassist.toml from the working
// directory, then applies .env files and environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}
	envFiles := []string{filepath.Join(cfg.Root, ".env")}
	if wd, err := os.Getwd(); err == nil && wd != cfg.Root {
		envFiles = append(envFiles, filepath.Join(wd, ".env"))
	}
	if err := cfg.ApplyEnv(envFiles...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDiskCache returns the schema disk cache when the configuration enables
// it. A cache that cannot be opened is reported and skipped.
func openDiskCache(cmd *cobra.Command, cfg *config.Config) *schema.DiskCache {
	if !cfg.Schema.Cache {
		return nil
	}
	cache, err := schema.OpenDiskCache(cacheApp)
	if err != nil {
		if !quiet(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: schema cache disabled: %v\n", err)
		}
		return nil
	}
	return cache
}

// resolveSchemaPath prefers an explicit --schema, then the associations and
// default schema of the configuration.
func resolveSchemaPath(cfg *config.Config, flagValue, docPath string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if docPath != "" {
		if abs, err := filepath.Abs(docPath); err == nil {
			docPath = abs
		}
	}
	if p := cfg.SchemaFor(docPath); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("no schema: pass --schema or set [schema].path in %s", config.FileName)
}

func loadEngine(cmd *cobra.Command, cfg *config.Config, schemaPath string) (*assist.Engine, error) {
	s, err := schema.LoadCached(schemaPath, openDiskCache(cmd, cfg))
	if err != nil {
		return nil, err
	}
	return assist.NewEngine(s, cfg.AssistOptions()), nil
}

// setupTelemetry starts the providers the configuration enables. The
// returned shutdown flushes them.
func setupTelemetry(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*telemetry.Instruments, func(), error) {
	tcfg := cfg.TelemetryConfig()
	tcfg.TraceOutput = cmd.ErrOrStderr()
	provider, err := telemetry.Setup(ctx, tcfg)
	if err != nil {
		return nil, nil, err
	}
	shutdown := func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "telemetry: shutdown error: %v\n", err)
		}
	}
	return provider.Instruments(), shutdown, nil
}
