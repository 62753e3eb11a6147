package schema

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	// ErrUnknownType reports a reference to a type that is not defined.
	ErrUnknownType = errors.New("unknown type")
	// ErrHintSource reports a failure to compute hint values.
	ErrHintSource = errors.New("hint source unavailable")
)

// Schema is a linked, read-only set of types.
type Schema struct {
	root     *Type
	tiered   bool
	types    map[string]*Type
	readFile func(string) ([]byte, error)
}

// Root returns the type expected at the top of every document.
func (s *Schema) Root() *Type { return s.root }

// Tiered reports whether key proposals are revealed tier by tier.
func (s *Schema) Tiered() bool { return s.tiered }

// Lookup returns a named type.
func (s *Schema) Lookup(name string) (*Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Types returns the declared (non-builtin) types sorted by name.
func (s *Schema) Types() []*Type {
	var out []*Type
	for name, t := range s.types {
		if _, builtin := builtinNames[name]; builtin {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Schema) IsMap(t *Type) bool         { return t != nil && t.Kind == Map }
func (s *Schema) IsBean(t *Type) bool        { return t != nil && t.Kind == Bean }
func (s *Schema) IsAtomic(t *Type) bool      { return t != nil && t.Kind == Atomic }
func (s *Schema) IsSequencable(t *Type) bool { return t != nil && t.Kind == Sequence }

// IsTrueUnion reports whether t still has more than one alternative.
func (s *Schema) IsTrueUnion(t *Type) bool {
	return t != nil && t.Kind == Union && len(t.Members) > 1
}

// DomainType returns the element type of a sequence or value type of a map.
func (s *Schema) DomainType(t *Type) *Type {
	if t == nil {
		return nil
	}
	if t.Kind == Union && len(t.Members) == 1 {
		return s.DomainType(t.Members[0])
	}
	return t.Domain
}

// UnionMembers returns the alternatives of a union.
func (s *Schema) UnionMembers(t *Type) []*Type {
	if t == nil || t.Kind != Union {
		return nil
	}
	return t.Members
}

// Properties returns the properties valid under t in declaration order. Map
// properties are derived from the map's key hints.
func (s *Schema) Properties(t *Type, _ DynamicContext) []*Property {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case Bean:
		return t.Props
	case Map:
		props := make([]*Property, 0, len(t.KeyHints))
		for _, k := range t.KeyHints {
			props = append(props, &Property{Name: k.Value, Type: t.Domain, Description: k.Doc})
		}
		return props
	case Union:
		if len(t.Members) == 1 {
			return s.Properties(t.Members[0], nil)
		}
	}
	return nil
}

// PropertiesByName indexes Properties by name.
func (s *Schema) PropertiesByName(t *Type, dc DynamicContext) map[string]*Property {
	props := s.Properties(t, dc)
	out := make(map[string]*Property, len(props))
	for _, p := range props {
		out[p.Name] = p
	}
	return out
}

// InferMoreSpecificType narrows a union using the document around the
// completion point. It returns t itself when nothing narrower is known.
func (s *Schema) InferMoreSpecificType(t *Type, dc DynamicContext) *Type {
	if t == nil || t.Kind != Union || dc == nil {
		return t
	}
	if len(t.Members) == 1 {
		return t.Members[0]
	}
	if t.Discriminator != "" {
		if v, ok := dc.ValueOf(t.Discriminator); ok {
			for _, m := range t.Members {
				if m.DiscriminatorValue == v {
					return m
				}
			}
		}
	}
	defined := dc.DefinedProperties()
	if len(defined) == 0 {
		return t
	}
	var fits []*Type
	for _, m := range t.Members {
		if m.Kind != Bean {
			continue
		}
		names := s.PropertiesByName(m, dc)
		ok := true
		for name := range defined {
			if _, has := names[name]; !has {
				ok = false
				break
			}
		}
		if ok {
			fits = append(fits, m)
		}
	}
	if len(fits) == 1 {
		return fits[0]
	}
	return t
}

// HintValues returns the literal values suggested for t.
func (s *Schema) HintValues(t *Type, dc DynamicContext) ([]HintValue, error) {
	if t == nil {
		return nil, nil
	}
	switch t.Kind {
	case Atomic:
		if t.HintSource != "" {
			return s.readHints(t.HintSource)
		}
		return t.Hints, nil
	case Union:
		var out []HintValue
		for _, m := range t.Members {
			if m.Kind != Atomic {
				continue
			}
			hints, err := s.HintValues(m, dc)
			if err != nil {
				return nil, err
			}
			out = append(out, hints...)
		}
		return out, nil
	}
	return nil, nil
}

func (s *Schema) readHints(path string) ([]HintValue, error) {
	read := s.readFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHintSource, path, err)
	}
	var out []HintValue
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, HintValue{Value: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHintSource, path, err)
	}
	return out, nil
}

// CustomAssistant returns the name of the value assistant attached to t.
func (s *Schema) CustomAssistant(t *Type) (string, bool) {
	if t == nil || t.Assistant == "" {
		return "", false
	}
	return t.Assistant, true
}

// Snippets returns the templates attached to t.
func (s *Schema) Snippets(t *Type) []Snippet {
	if t == nil {
		return nil
	}
	return t.Snippets
}
