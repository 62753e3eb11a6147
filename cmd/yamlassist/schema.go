package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yamlassist/internal/schema"
)

var schemaFormat string

func init() {
	schemaCmd.Flags().StringVar(&schemaFormat, "format", "pretty", "output format (pretty|json)")
}

var schemaCmd = &cobra.Command{
	Use:          "schema [file]",
	Short:        "Load a schema and summarise its types",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runSchema,
}

type propertyJSON struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Required   bool   `json:"required,omitempty"`
	Primary    bool   `json:"primary,omitempty"`
	Deprecated bool   `json:"deprecated,omitempty"`
}

type typeJSON struct {
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	Of         string         `json:"of,omitempty"`
	Members    []string       `json:"members,omitempty"`
	Values     []string       `json:"values,omitempty"`
	Properties []propertyJSON `json:"properties,omitempty"`
	Snippets   int            `json:"snippets,omitempty"`
	Assistant  string         `json:"assistant,omitempty"`
}

type schemaJSON struct {
	Root   string     `json:"root"`
	Tiered bool       `json:"tiered"`
	Types  []typeJSON `json:"types"`
}

func runSchema(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(schemaFormat)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", schemaFormat)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cfg.SchemaPath()
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no schema: pass a file or set [schema].path")
	}
	s, err := schema.LoadCached(path, openDiskCache(cmd, cfg))
	if err != nil {
		return err
	}
	summary := summarizeSchema(s)
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	writeSchemaPretty(cmd.OutOrStdout(), summary)
	return nil
}

func summarizeSchema(s *schema.Schema) schemaJSON {
	out := schemaJSON{Tiered: s.Tiered()}
	if root := s.Root(); root != nil {
		out.Root = root.Name
	}
	for _, t := range s.Types() {
		tj := typeJSON{Name: t.Name, Kind: t.Kind.String(), Assistant: t.Assistant, Snippets: len(t.Snippets)}
		if t.Domain != nil {
			tj.Of = t.Domain.Name
		}
		for _, m := range t.Members {
			tj.Members = append(tj.Members, m.Name)
		}
		for _, h := range t.Hints {
			tj.Values = append(tj.Values, h.Value)
		}
		for _, p := range t.Props {
			pj := propertyJSON{Name: p.Name, Required: p.Required, Primary: p.Primary, Deprecated: p.Deprecated}
			if p.Type != nil {
				pj.Type = p.Type.Name
			}
			tj.Properties = append(tj.Properties, pj)
		}
		out.Types = append(out.Types, tj)
	}
	return out
}

func writeSchemaPretty(w io.Writer, s schemaJSON) {
	name := color.New(color.Bold)
	dim := color.New(color.Faint)
	fmt.Fprintf(w, "root: %s", s.Root)
	if s.Tiered {
		fmt.Fprint(w, " (tiered)")
	}
	fmt.Fprintln(w)
	for _, t := range s.Types {
		fmt.Fprintf(w, "\n%s %s", name.Sprint(t.Name), dim.Sprint(t.Kind))
		switch {
		case t.Of != "":
			fmt.Fprintf(w, " of %s", t.Of)
		case len(t.Members) > 0:
			fmt.Fprintf(w, " of %s", strings.Join(t.Members, " | "))
		}
		if t.Assistant != "" {
			fmt.Fprintf(w, " [assistant %s]", t.Assistant)
		}
		fmt.Fprintln(w)
		if len(t.Values) > 0 {
			fmt.Fprintf(w, "  values: %s\n", strings.Join(t.Values, ", "))
		}
		for _, p := range t.Properties {
			var flags []string
			if p.Primary {
				flags = append(flags, "primary")
			}
			if p.Required {
				flags = append(flags, "required")
			}
			if p.Deprecated {
				flags = append(flags, "deprecated")
			}
			line := fmt.Sprintf("  %s: %s", p.Name, p.Type)
			if len(flags) > 0 {
				line += " " + dim.Sprintf("(%s)", strings.Join(flags, ", "))
			}
			fmt.Fprintln(w, line)
		}
		if t.Snippets > 0 {
			fmt.Fprintf(w, "  snippets: %d\n", t.Snippets)
		}
	}
}
