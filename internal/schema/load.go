package schema

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definitions as read from a schema file, before references are linked. They
// are plain data so the disk cache can store them.
type fileDef struct {
	Version uint16
	Root    string
	Tiered  bool
	Types   []namedTypeDef
}

type namedTypeDef struct {
	Name string
	Def  typeDef
}

type typeRef struct {
	Name   string
	Inline *typeDef
}

type typeDef struct {
	Kind               string
	Description        string
	Of                 *typeRef
	Keys               []hintDef
	Properties         []propDef
	Members            []typeRef
	Discriminator      string
	DiscriminatorValue string
	Values             []hintDef
	ValuesFrom         string
	Snippets           []snippetDef
	Assistant          string
}

type propDef struct {
	Name        string
	Type        typeRef
	Required    bool
	Primary     bool
	Deprecated  bool
	Description string
	Snippet     string
}

type hintDef struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
	Doc   string `yaml:"doc"`
	Extra string `yaml:"extra"`
}

type snippetDef struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Template    string   `yaml:"template"`
	Introduces  []string `yaml:"introduces"`
}

const fileFormatVersion uint16 = 1

var builtinNames = map[string]struct{}{
	"string": {}, "int": {}, "float": {}, "bool": {}, "duration": {}, "any": {},
}

func builtin(name string) *Type {
	switch name {
	case "bool":
		return &Type{Name: name, Kind: Atomic, Hints: []HintValue{{Value: "true"}, {Value: "false"}}}
	case "duration":
		return &Type{Name: name, Kind: Atomic, Assistant: "duration"}
	case "any":
		return &Type{Name: name, Kind: Bean}
	default:
		return &Type{Name: name, Kind: Atomic}
	}
}

// Load reads and links the schema file at path.
func Load(path string) (*Schema, error) {
	return LoadCached(path, nil)
}

// LoadCached is Load backed by a disk cache of decoded schema files. A nil
// cache disables caching.
func LoadCached(path string, cache *DiskCache) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	key := sha256.Sum256(data)
	var def fileDef
	hit, err := cache.Get(key, &def)
	if err != nil || !hit || def.Version != fileFormatVersion {
		decoded, derr := decodeFile(data)
		if derr != nil {
			return nil, fmt.Errorf("%s: %w", path, derr)
		}
		def = *decoded
		_ = cache.Put(key, &def)
	}
	s, err := link(&def, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and links schema text. Relative hint sources resolve
// against dir.
func Parse(data []byte, dir string) (*Schema, error) {
	def, err := decodeFile(data)
	if err != nil {
		return nil, err
	}
	return link(def, dir)
}

func decodeFile(data []byte) (*fileDef, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	def := &fileDef{Version: fileFormatVersion, Tiered: true}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("schema: empty document")
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schema: line %d: expected a mapping", doc.Line)
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "root":
			def.Root = val.Value
		case "tiered":
			if err := val.Decode(&def.Tiered); err != nil {
				return nil, fmt.Errorf("schema: line %d: %w", val.Line, err)
			}
		case "types":
			if val.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("schema: line %d: types must be a mapping", val.Line)
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				td, err := decodeType(val.Content[j+1])
				if err != nil {
					return nil, err
				}
				def.Types = append(def.Types, namedTypeDef{Name: val.Content[j].Value, Def: td})
			}
		default:
			return nil, fmt.Errorf("schema: line %d: unknown field %q", key.Line, key.Value)
		}
	}
	if def.Root == "" {
		return nil, fmt.Errorf("schema: missing root")
	}
	return def, nil
}

func decodeType(n *yaml.Node) (typeDef, error) {
	var td typeDef
	if n.Kind != yaml.MappingNode {
		return td, fmt.Errorf("schema: line %d: type must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var err error
		switch key.Value {
		case "kind":
			td.Kind = val.Value
		case "description":
			td.Description = val.Value
		case "discriminator":
			td.Discriminator = val.Value
		case "discriminator-value":
			td.DiscriminatorValue = val.Value
		case "values-from":
			td.ValuesFrom = val.Value
		case "assistant":
			td.Assistant = val.Value
		case "of":
			var ref typeRef
			ref, err = decodeRef(val)
			td.Of = &ref
		case "keys":
			td.Keys, err = decodeHints(val)
		case "values":
			td.Values, err = decodeHints(val)
		case "members":
			if val.Kind != yaml.SequenceNode {
				return td, fmt.Errorf("schema: line %d: members must be a list", val.Line)
			}
			for _, m := range val.Content {
				ref, rerr := decodeRef(m)
				if rerr != nil {
					return td, rerr
				}
				td.Members = append(td.Members, ref)
			}
		case "properties":
			if val.Kind != yaml.MappingNode {
				return td, fmt.Errorf("schema: line %d: properties must be a mapping", val.Line)
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				p, perr := decodeProp(val.Content[j].Value, val.Content[j+1])
				if perr != nil {
					return td, perr
				}
				td.Properties = append(td.Properties, p)
			}
		case "snippets":
			err = val.Decode(&td.Snippets)
		default:
			return td, fmt.Errorf("schema: line %d: unknown field %q", key.Line, key.Value)
		}
		if err != nil {
			return td, fmt.Errorf("schema: line %d: %w", val.Line, err)
		}
	}
	return td, nil
}

func decodeRef(n *yaml.Node) (typeRef, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return typeRef{Name: n.Value}, nil
	case yaml.MappingNode:
		td, err := decodeType(n)
		if err != nil {
			return typeRef{}, err
		}
		return typeRef{Inline: &td}, nil
	default:
		return typeRef{}, fmt.Errorf("schema: line %d: expected a type name or definition", n.Line)
	}
}

func decodeProp(name string, n *yaml.Node) (propDef, error) {
	p := propDef{Name: name, Type: typeRef{Name: "any"}}
	switch n.Kind {
	case yaml.ScalarNode:
		p.Type = typeRef{Name: n.Value}
		return p, nil
	case yaml.MappingNode:
	default:
		return p, fmt.Errorf("schema: line %d: property %q must be a type name or mapping", n.Line, name)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var err error
		switch key.Value {
		case "type":
			p.Type, err = decodeRef(val)
		case "required":
			err = val.Decode(&p.Required)
		case "primary":
			err = val.Decode(&p.Primary)
		case "deprecated":
			err = val.Decode(&p.Deprecated)
		case "description":
			p.Description = val.Value
		case "snippet":
			p.Snippet = val.Value
		default:
			return p, fmt.Errorf("schema: line %d: unknown property field %q", key.Line, key.Value)
		}
		if err != nil {
			return p, fmt.Errorf("schema: line %d: %w", val.Line, err)
		}
	}
	return p, nil
}

func decodeHints(n *yaml.Node) ([]hintDef, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("schema: line %d: expected a list of values", n.Line)
	}
	out := make([]hintDef, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind == yaml.ScalarNode {
			out = append(out, hintDef{Value: item.Value})
			continue
		}
		var h hintDef
		if err := item.Decode(&h); err != nil {
			return nil, fmt.Errorf("schema: line %d: %w", item.Line, err)
		}
		out = append(out, h)
	}
	return out, nil
}

type linker struct {
	s   *Schema
	dir string
}

func link(def *fileDef, dir string) (*Schema, error) {
	s := &Schema{tiered: def.Tiered, types: make(map[string]*Type)}
	for name := range builtinNames {
		s.types[name] = builtin(name)
	}
	for _, nt := range def.Types {
		if _, taken := s.types[nt.Name]; taken {
			return nil, fmt.Errorf("schema: type %q defined twice", nt.Name)
		}
		s.types[nt.Name] = &Type{Name: nt.Name}
	}
	l := linker{s: s, dir: dir}
	for _, nt := range def.Types {
		if err := l.fill(s.types[nt.Name], &nt.Def); err != nil {
			return nil, fmt.Errorf("type %s: %w", nt.Name, err)
		}
	}
	root, err := l.resolve(typeRef{Name: def.Root})
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	s.root = root
	return s, nil
}

func (l linker) fill(t *Type, d *typeDef) error {
	t.Description = d.Description
	t.Discriminator = d.Discriminator
	t.DiscriminatorValue = d.DiscriminatorValue
	t.Assistant = d.Assistant
	for _, sn := range d.Snippets {
		t.Snippets = append(t.Snippets, Snippet(sn))
	}
	kind := d.Kind
	if kind == "" {
		switch {
		case len(d.Properties) > 0:
			kind = "bean"
		case len(d.Members) > 0:
			kind = "union"
		case d.Of != nil:
			kind = "seq"
		default:
			kind = "atomic"
		}
	}
	var err error
	switch kind {
	case "bean", "object":
		t.Kind = Bean
		for _, pd := range d.Properties {
			pt, perr := l.resolve(pd.Type)
			if perr != nil {
				return fmt.Errorf("property %s: %w", pd.Name, perr)
			}
			t.Props = append(t.Props, &Property{
				Name:        pd.Name,
				Type:        pt,
				Required:    pd.Required,
				Primary:     pd.Primary,
				Deprecated:  pd.Deprecated,
				Description: pd.Description,
				Snippet:     pd.Snippet,
			})
		}
	case "map":
		t.Kind = Map
		t.Domain, err = l.resolveOf(d.Of)
		t.KeyHints = toHints(d.Keys)
	case "seq", "sequence", "list":
		t.Kind = Sequence
		t.Domain, err = l.resolveOf(d.Of)
	case "union":
		t.Kind = Union
		for _, m := range d.Members {
			mt, merr := l.resolve(m)
			if merr != nil {
				return merr
			}
			t.Members = append(t.Members, mt)
		}
	case "atomic", "enum", "string", "scalar":
		t.Kind = Atomic
		t.Hints = toHints(d.Values)
		if d.ValuesFrom != "" {
			t.HintSource = d.ValuesFrom
			if !filepath.IsAbs(t.HintSource) {
				t.HintSource = filepath.Join(l.dir, t.HintSource)
			}
		}
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	return err
}

func (l linker) resolveOf(ref *typeRef) (*Type, error) {
	if ref == nil {
		return l.s.types["any"], nil
	}
	return l.resolve(*ref)
}

func (l linker) resolve(ref typeRef) (*Type, error) {
	if ref.Inline != nil {
		t := &Type{Name: "object"}
		if err := l.fill(t, ref.Inline); err != nil {
			return nil, err
		}
		if t.Kind != Bean {
			t.Name = t.Kind.String()
		}
		return t, nil
	}
	expr := strings.TrimSpace(ref.Name)
	if open := strings.IndexByte(expr, '('); open > 0 && strings.HasSuffix(expr, ")") {
		args := splitArgs(expr[open+1 : len(expr)-1])
		ctor := strings.TrimSpace(expr[:open])
		var members []*Type
		for _, a := range args {
			m, err := l.resolve(typeRef{Name: a})
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		switch {
		case (ctor == "seq" || ctor == "list") && len(members) == 1:
			return &Type{Name: expr, Kind: Sequence, Domain: members[0]}, nil
		case ctor == "map" && len(members) == 1:
			return &Type{Name: expr, Kind: Map, Domain: members[0]}, nil
		case ctor == "union" && len(members) > 0:
			return &Type{Name: expr, Kind: Union, Members: members}, nil
		default:
			return nil, fmt.Errorf("malformed type expression %q", expr)
		}
	}
	t, ok := l.s.types[expr]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, expr)
	}
	return t, nil
}

func toHints(defs []hintDef) []HintValue {
	if len(defs) == 0 {
		return nil
	}
	out := make([]HintValue, len(defs))
	for i, d := range defs {
		out[i] = HintValue(d)
	}
	return out
}

// splitArgs splits a comma separated argument list, respecting parentheses.
func splitArgs(s string) []string {
	var out []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
