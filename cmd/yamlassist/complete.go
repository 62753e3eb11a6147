package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"yamlassist/internal/assist"
	"yamlassist/internal/batch"
	"yamlassist/internal/document"
	"yamlassist/internal/observ"
	"yamlassist/internal/telemetry"
	"yamlassist/internal/ui"
)

var (
	completeSchema string
	completeOffset int
	completePos    string
	completeFormat string
	completeLimit  int
)

func init() {
	completeCmd.Flags().StringVar(&completeSchema, "schema", "", "schema file (default: from yamlassist.toml)")
	completeCmd.Flags().IntVar(&completeOffset, "offset", -1, "byte offset of the cursor")
	completeCmd.Flags().StringVar(&completePos, "pos", "", "cursor as LINE:COL, both 1-based")
	completeCmd.Flags().StringVar(&completeFormat, "format", "pretty", "output format (pretty|json)")
	completeCmd.Flags().IntVar(&completeLimit, "limit", 0, "maximum proposals to print (0 = config max-items)")
}

var completeCmd = &cobra.Command{
	Use:   "complete <file>",
	Short: "Print completion proposals at a cursor position",
	Long: `Print completion proposals for a YAML file. The cursor is given with
--offset or --pos, or marked in the file with <caret>.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runComplete,
}

type editJSON struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

type proposalJSON struct {
	Label      string     `json:"label"`
	Kind       string     `json:"kind"`
	Detail     string     `json:"detail,omitempty"`
	Score      float64    `json:"score"`
	Deprecated bool       `json:"deprecated,omitempty"`
	Snippet    bool       `json:"snippet,omitempty"`
	Edits      []editJSON `json:"edits,omitempty"`
	Result     string     `json:"result,omitempty"`
}

type completeOutput struct {
	File      string         `json:"file"`
	Offset    int            `json:"offset"`
	Line      int            `json:"line"`
	Column    int            `json:"column"`
	Proposals []proposalJSON `json:"proposals"`
}

func runComplete(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(completeFormat)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", completeFormat)
	}
	ctx := cmd.Context()
	timer := observ.NewTimer()
	path := args[0]

	idx := timer.Begin("config")
	cfg, err := loadConfig(cmd)
	timer.End(idx, "")
	if err != nil {
		return err
	}

	var engine *assist.Engine
	err = timer.Measure("schema", func() error {
		schemaPath, err := resolveSchemaPath(cfg, completeSchema, path)
		if err != nil {
			return err
		}
		engine, err = loadEngine(cmd, cfg, schemaPath)
		return err
	})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	text, offset, err := cursorOffset(string(data), completeOffset, completePos)
	if err != nil {
		return err
	}
	doc := document.New(path, text)

	instruments, shutdown, err := setupTelemetry(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	var proposals []assist.Proposal
	err = timer.Measure("complete", func() error {
		h, reqCtx := instruments.Start(ctx, telemetry.RequestInfo{Method: "complete", URI: path})
		var err error
		proposals, err = engine.Complete(reqCtx, doc, offset)
		instruments.Finish(h, len(proposals), err)
		return err
	})
	if err != nil {
		return err
	}
	assist.Sort(proposals)
	proposals = assist.Dedupe(proposals)
	limit := completeLimit
	if limit <= 0 {
		limit = cfg.Completion.MaxItems
	}
	if limit > 0 && len(proposals) > limit {
		proposals = proposals[:limit]
	}

	out := cmd.OutOrStdout()
	line, col := doc.LineOfOffset(offset), doc.Column(offset)
	if format == "json" {
		err = writeCompleteJSON(out, path, text, offset, line, col, proposals)
	} else {
		if !quiet(cmd) {
			fmt.Fprintf(out, "%s:%d:%d\n", path, line+1, col+1)
		}
		_, err = io.WriteString(out, ui.RenderProposals(proposals, ui.TableOptions{Color: useColor()}))
	}
	if err != nil {
		return err
	}
	if timingsEnabled(cmd) {
		return timer.Write(cmd.ErrOrStderr(), format == "json")
	}
	return nil
}

// cursorOffset picks the cursor from --offset, --pos or a caret marker, and
// returns the text with any markers removed.
func cursorOffset(text string, offset int, pos string) (string, int, error) {
	stripped, carets := batch.ParseProbes(text)
	switch {
	case offset >= 0 && pos != "":
		return "", 0, fmt.Errorf("--offset and --pos are mutually exclusive")
	case offset >= 0:
		if offset > len(stripped) {
			return "", 0, fmt.Errorf("offset %d is beyond the end of the file (%d bytes)", offset, len(stripped))
		}
		return stripped, offset, nil
	case pos != "":
		line, col, err := parsePos(pos)
		if err != nil {
			return "", 0, err
		}
		doc := document.New("", stripped)
		if line > doc.LineCount() {
			return "", 0, fmt.Errorf("line %d is beyond the end of the file (%d lines)", line, doc.LineCount())
		}
		start := doc.LineStart(line - 1)
		return stripped, min(start+col-1, doc.LineEnd(line-1)), nil
	case len(carets) == 1:
		return stripped, carets[0], nil
	case len(carets) > 1:
		return "", 0, fmt.Errorf("found %d %s markers; use the batch command for several probes", len(carets), batch.Caret)
	default:
		return "", 0, fmt.Errorf("no cursor: pass --offset, --pos or put %s in the file", batch.Caret)
	}
}

func parsePos(pos string) (int, int, error) {
	lineStr, colStr, ok := strings.Cut(pos, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --pos %q (expected LINE:COL)", pos)
	}
	line, err := strconv.Atoi(strings.TrimSpace(lineStr))
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("invalid line in --pos %q", pos)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colStr))
	if err != nil || col < 1 {
		return 0, 0, fmt.Errorf("invalid column in --pos %q", pos)
	}
	return line, col, nil
}

func proposalsJSON(text string, ps []assist.Proposal) []proposalJSON {
	out := make([]proposalJSON, 0, len(ps))
	for _, p := range ps {
		pj := proposalJSON{
			Label:      p.Label,
			Kind:       p.Kind.String(),
			Detail:     p.Detail,
			Score:      p.Score(),
			Deprecated: p.Deprecated,
		}
		if p.Edits != nil && !p.Edits.IsEmpty() {
			pj.Snippet = p.Edits.IsSnippet()
			for _, op := range p.Edits.Ops() {
				pj.Edits = append(pj.Edits, editJSON{Start: op.Start, End: op.End, Text: op.Text})
			}
			if result, err := p.Edits.Apply(text); err == nil {
				pj.Result = result
			}
		}
		out = append(out, pj)
	}
	return out
}

func writeCompleteJSON(w io.Writer, path, text string, offset, line, col int, ps []assist.Proposal) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(completeOutput{
		File:      path,
		Offset:    offset,
		Line:      line + 1,
		Column:    col + 1,
		Proposals: proposalsJSON(text, ps),
	})
}
