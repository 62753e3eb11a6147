// Package schema models the types a YAML document is expected to follow and
// answers the queries the completion engine asks about them.
package schema

// Kind classifies a Type.
type Kind uint8

const (
	Atomic Kind = iota + 1
	Map
	Sequence
	Union
	Bean
)

func (k Kind) String() string {
	switch k {
	case Atomic:
		return "atomic"
	case Map:
		return "map"
	case Sequence:
		return "sequence"
	case Union:
		return "union"
	case Bean:
		return "bean"
	default:
		return "unknown"
	}
}

// Type is a node of the schema graph. Types may be recursive and are shared
// between requests, so they must not be modified after loading.
type Type struct {
	Name        string
	Kind        Kind
	Description string

	// Domain is the element type of a sequence or the value type of a map.
	Domain *Type
	// KeyHints lists the known keys of a map.
	KeyHints []HintValue
	// Props are the declared properties of a bean, in declaration order.
	Props []*Property
	// Members are the alternatives of a union.
	Members []*Type

	// Discriminator names the property whose value selects a union member.
	Discriminator string
	// DiscriminatorValue is the discriminator value that selects this member.
	DiscriminatorValue string

	// Hints are the literal values of an atomic type.
	Hints []HintValue
	// HintSource is a file with one literal value per line.
	HintSource string

	Snippets  []Snippet
	Assistant string
}

// Property is a named member of a bean or a known key of a map.
type Property struct {
	Name        string
	Type        *Type
	Required    bool
	Primary     bool
	Deprecated  bool
	Description string
	// Snippet replaces the synthesized text inserted after `name:`.
	Snippet string
}

// HintValue is a suggested literal.
type HintValue struct {
	Value string
	Label string
	Doc   string
	// Extra is inserted on the lines following the value.
	Extra string
}

// Snippet is a multi-line template offered where the owning type is expected.
type Snippet struct {
	Name        string
	Description string
	Template    string
	// Introduces lists the keys the template writes; the snippet is only
	// offered while none of them is defined.
	Introduces []string
}

// DynamicContext exposes facts about the document at the location being
// completed.
type DynamicContext interface {
	DefinedProperties() map[string]struct{}
	ValueOf(name string) (string, bool)
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}
