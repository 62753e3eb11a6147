package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const serviceSchema = `
root: Service
types:
  Service:
    properties:
      kind: {type: Kind, primary: true}
      name: {type: string, required: true, description: Service name}
      deps: seq(Dep)
      legacy: {type: string, deprecated: true}
      labels: map(string)
    snippets:
      - name: web service
        template: "kind: web\nname: ${1:api}"
        introduces: [kind, name]
  Kind:
    values:
      - web
      - {value: cli, doc: Command line tool}
  Dep:
    properties:
      id: {type: string, required: true}
      optional: bool
`

type fakeContext struct {
	defined map[string]string
}

func (f fakeContext) DefinedProperties() map[string]struct{} {
	out := make(map[string]struct{}, len(f.defined))
	for k := range f.defined {
		out[k] = struct{}{}
	}
	return out
}

func (f fakeContext) ValueOf(name string) (string, bool) {
	v, ok := f.defined[name]
	return v, ok
}

func mustParse(t *testing.T, text string) *Schema {
	t.Helper()
	s, err := Parse([]byte(text), t.TempDir())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func TestParseService(t *testing.T) {
	s := mustParse(t, serviceSchema)
	root := s.Root()
	if root == nil || root.Name != "Service" || !s.IsBean(root) {
		t.Fatalf("expected bean root Service, got %v", root)
	}
	props := s.Properties(root, nil)
	var names []string
	for _, p := range props {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "kind,name,deps,legacy,labels" {
		t.Fatalf("expected declaration order, got %s", got)
	}
	deps := s.PropertiesByName(root, nil)["deps"]
	if !s.IsSequencable(deps.Type) || s.DomainType(deps.Type).Name != "Dep" {
		t.Fatalf("expected deps to be a sequence of Dep, got %v", deps.Type)
	}
	kind := s.PropertiesByName(root, nil)["kind"].Type
	hints, err := s.HintValues(kind, nil)
	if err != nil || len(hints) != 2 || hints[1].Doc != "Command line tool" {
		t.Fatalf("unexpected hints %+v (err %v)", hints, err)
	}
	if len(s.Snippets(root)) != 1 || s.Snippets(root)[0].Introduces[1] != "name" {
		t.Fatalf("expected one snippet, got %+v", s.Snippets(root))
	}
	boolHints, _ := s.HintValues(s.PropertiesByName(s.DomainType(deps.Type), nil)["optional"].Type, nil)
	if len(boolHints) != 2 {
		t.Fatalf("expected bool hints, got %+v", boolHints)
	}
	if name, ok := s.CustomAssistant(&Type{Assistant: "duration"}); !ok || name != "duration" {
		t.Fatalf("expected custom assistant")
	}
	if len(s.Types()) != 3 {
		t.Fatalf("expected 3 declared types, got %d", len(s.Types()))
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing root":  "types: {}",
		"unknown type":  "root: Nope\ntypes: {}",
		"unknown field": "root: A\ntypes:\n  A: {colour: red}",
		"bad expr":      "root: A\ntypes:\n  A: {properties: {x: 'seq(a,b)'}}",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(text), ""); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	_, err := Parse([]byte("root: Nope\ntypes: {}"), "")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestRecursiveTypes(t *testing.T) {
	s := mustParse(t, `
root: Node
types:
  Node:
    properties:
      name: string
      children: seq(Node)
`)
	children := s.PropertiesByName(s.Root(), nil)["children"].Type
	if s.DomainType(children) != s.Root() {
		t.Fatalf("expected recursive element type")
	}
}

func TestInferMoreSpecificType(t *testing.T) {
	s := mustParse(t, `
root: Step
types:
  Step:
    kind: union
    discriminator: type
    members: [Command, Wait]
  Command:
    discriminator-value: command
    properties:
      type: string
      command: string
  Wait:
    discriminator-value: wait
    properties:
      type: string
      wait: duration
`)
	root := s.Root()
	if !s.IsTrueUnion(root) {
		t.Fatalf("expected a true union")
	}
	if got := s.InferMoreSpecificType(root, fakeContext{defined: map[string]string{"type": "wait"}}); got.Name != "Wait" {
		t.Fatalf("expected discriminator to select Wait, got %v", got)
	}
	if got := s.InferMoreSpecificType(root, fakeContext{defined: map[string]string{"command": "make"}}); got.Name != "Command" {
		t.Fatalf("expected property presence to select Command, got %v", got)
	}
	if got := s.InferMoreSpecificType(root, fakeContext{}); got != root {
		t.Fatalf("expected union to stay unresolved, got %v", got)
	}
	if len(s.UnionMembers(root)) != 2 {
		t.Fatalf("expected union members to be unchanged")
	}
}

func TestHintSourceFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "regions.txt"), []byte("# regions\neu-west\n\nus-east\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	text := "root: R\ntypes:\n  R: {properties: {region: Region, zone: Zone}}\n  Region: {values-from: regions.txt}\n  Zone: {values-from: missing.txt}\n"
	s, err := Parse([]byte(text), dir)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	props := s.PropertiesByName(s.Root(), nil)
	hints, err := s.HintValues(props["region"].Type, nil)
	if err != nil || len(hints) != 2 || hints[1].Value != "us-east" {
		t.Fatalf("unexpected hints %+v (err %v)", hints, err)
	}
	if _, err := s.HintValues(props["zone"].Type, nil); !errors.Is(err, ErrHintSource) {
		t.Fatalf("expected ErrHintSource, got %v", err)
	}
}

func TestMapKeyHints(t *testing.T) {
	s := mustParse(t, "root: Env\ntypes:\n  Env: {kind: map, of: string, keys: [HOME, PATH]}\n")
	props := s.Properties(s.Root(), nil)
	if len(props) != 2 || props[1].Name != "PATH" || props[1].Type.Name != "string" {
		t.Fatalf("unexpected map properties %+v", props)
	}
}

func TestLoadCachedWritesAndReusesEntries(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("yamlassist-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	path := filepath.Join(t.TempDir(), "service.yaml")
	if err := os.WriteFile(path, []byte(serviceSchema), 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := LoadCached(path, cache)
	if err != nil {
		t.Fatalf("LoadCached: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(cache.Dir(), "schemas"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one cache entry, got %d (err %v)", len(entries), err)
	}
	second, err := LoadCached(path, cache)
	if err != nil {
		t.Fatalf("LoadCached (cached): %v", err)
	}
	if second.Root().Name != first.Root().Name || len(second.Root().Props) != len(first.Root().Props) {
		t.Fatalf("expected cached schema to match")
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
}
