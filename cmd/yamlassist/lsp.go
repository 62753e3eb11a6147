package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"yamlassist/internal/lsp"
	"yamlassist/internal/trace"
	"yamlassist/internal/version"
)

var lspSchemaCacheSize int

func init() {
	lspCmd.Flags().IntVar(&lspSchemaCacheSize, "schema-cache-size", 16, "schemas kept in memory")
}

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the yamlassist language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	instruments, shutdown, err := setupTelemetry(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Config:          cfg,
		SchemaCacheSize: lspSchemaCacheSize,
		DiskCache:       openDiskCache(cmd, cfg),
		Telemetry:       instruments,
		Tracer:          trace.FromContext(ctx),
		Log:             cmd.ErrOrStderr(),
		Version:         version.Get().Version,
	})
	if err := server.Run(ctx); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
