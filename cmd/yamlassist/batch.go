package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"yamlassist/internal/batch"
	"yamlassist/internal/prof"
	"yamlassist/internal/ui"
)

var (
	batchSchema string
	batchJobs   int
	batchUI     string
	batchFormat string
	batchLimit  int
	batchProf   prof.Options
)

func init() {
	batchCmd.Flags().StringVar(&batchSchema, "schema", "", "schema file (default: from yamlassist.toml)")
	batchCmd.Flags().IntVarP(&batchJobs, "jobs", "j", 0, "files processed in parallel (0 = GOMAXPROCS)")
	batchCmd.Flags().StringVar(&batchUI, "ui", "auto", "progress UI (auto|on|off)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "pretty", "output format (pretty|json)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 10, "maximum proposals printed per probe (0 = all)")
	batchCmd.Flags().StringVar(&batchProf.CPU, "cpuprofile", "", "write a CPU profile to this file")
	batchCmd.Flags().StringVar(&batchProf.Mem, "memprofile", "", "write a heap profile to this file")
	batchCmd.Flags().StringVar(&batchProf.Trace, "runtime-trace", "", "write a Go runtime trace to this file")
}

var batchCmd = &cobra.Command{
	Use:   "batch <files...>",
	Short: "Run completion at every <caret> marker in the given files",
	Args:  cobra.MinimumNArgs(1),
	// probe failures are reported in the output; the command fails only on
	// unreadable files or cancellation
	SilenceUsage: true,
	RunE:         runBatch,
}

type batchProbeJSON struct {
	Line      int            `json:"line"`
	Column    int            `json:"column"`
	Error     string         `json:"error,omitempty"`
	Proposals []proposalJSON `json:"proposals"`
}

type batchFileJSON struct {
	File   string           `json:"file"`
	Error  string           `json:"error,omitempty"`
	Probes []batchProbeJSON `json:"probes,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(batchFormat)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", batchFormat)
	}
	mode, err := readUIMode(batchUI)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	schemaPath, err := resolveSchemaPath(cfg, batchSchema, args[0])
	if err != nil {
		return err
	}
	engine, err := loadEngine(cmd, cfg, schemaPath)
	if err != nil {
		return err
	}
	req := batch.Request{Files: args, Jobs: batchJobs, Engine: engine, Limit: batchLimit}

	session, err := prof.Start(batchProf)
	if err != nil {
		return err
	}
	started := time.Now()
	var results []batch.FileResult
	if shouldUseTUI(mode) && !quiet(cmd) && format == "pretty" {
		results, err = runBatchWithUI(cmd.Context(), "completing", req)
	} else {
		results, err = batch.Run(cmd.Context(), req, nil)
	}
	if stopErr := session.Stop(); stopErr != nil && !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", stopErr)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		err = writeBatchJSON(out, results)
	} else {
		err = writeBatchPretty(out, results)
	}
	if err != nil {
		return err
	}
	if timingsEnabled(cmd) {
		printBatchTimings(cmd.ErrOrStderr(), results, time.Since(started))
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func writeBatchPretty(w io.Writer, results []batch.FileResult) error {
	opts := ui.TableOptions{Color: useColor()}
	for _, r := range results {
		if r.Err != nil {
			if _, err := fmt.Fprintf(w, "%s: error: %v\n", r.Path, r.Err); err != nil {
				return err
			}
			continue
		}
		if len(r.Probes) == 0 {
			if _, err := fmt.Fprintf(w, "%s: no %s markers\n", r.Path, batch.Caret); err != nil {
				return err
			}
			continue
		}
		for _, p := range r.Probes {
			if _, err := fmt.Fprintf(w, "%s:%d:%d\n", r.Path, p.Line+1, p.Column+1); err != nil {
				return err
			}
			body := ui.RenderProposals(p.Proposals, opts)
			if p.Err != nil {
				body = fmt.Sprintf("error: %v\n", p.Err)
			}
			if _, err := io.WriteString(w, body+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeBatchJSON(w io.Writer, results []batch.FileResult) error {
	out := make([]batchFileJSON, 0, len(results))
	for _, r := range results {
		fj := batchFileJSON{File: r.Path}
		if r.Err != nil {
			fj.Error = r.Err.Error()
		}
		for _, p := range r.Probes {
			pj := batchProbeJSON{Line: p.Line + 1, Column: p.Column + 1, Proposals: proposalsJSON(r.Text, p.Proposals)}
			if p.Err != nil {
				pj.Error = p.Err.Error()
			}
			fj.Probes = append(fj.Probes, pj)
		}
		out = append(out, fj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printBatchTimings(w io.Writer, results []batch.FileResult, total time.Duration) {
	var sum batch.Timings
	for _, r := range results {
		for _, stage := range []batch.Stage{batch.StageLoad, batch.StageProbe, batch.StageComplete} {
			sum.Set(stage, sum.Duration(stage)+r.Timings.Duration(stage))
		}
	}
	fmt.Fprintf(w, "loaded %.1f ms\n", toMillis(sum.Duration(batch.StageLoad)))
	fmt.Fprintf(w, "probed %.1f ms\n", toMillis(sum.Duration(batch.StageProbe)))
	fmt.Fprintf(w, "completed %.1f ms\n", toMillis(sum.Duration(batch.StageComplete)))
	fmt.Fprintf(w, "wall %.1f ms\n", toMillis(total))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
