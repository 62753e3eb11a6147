package assist

import (
	"yamlassist/internal/fuzzy"
	"yamlassist/internal/schema"
	"yamlassist/internal/structure"
)

// TypeSchema is the view of the schema the engine needs.
type TypeSchema interface {
	Root() *schema.Type
	Tiered() bool
	IsMap(t *schema.Type) bool
	IsBean(t *schema.Type) bool
	IsAtomic(t *schema.Type) bool
	IsSequencable(t *schema.Type) bool
	IsTrueUnion(t *schema.Type) bool
	DomainType(t *schema.Type) *schema.Type
	UnionMembers(t *schema.Type) []*schema.Type
	Properties(t *schema.Type, dc schema.DynamicContext) []*schema.Property
	PropertiesByName(t *schema.Type, dc schema.DynamicContext) map[string]*schema.Property
	InferMoreSpecificType(t *schema.Type, dc schema.DynamicContext) *schema.Type
	HintValues(t *schema.Type, dc schema.DynamicContext) ([]schema.HintValue, error)
	CustomAssistant(t *schema.Type) (string, bool)
	Snippets(t *schema.Type) []schema.Snippet
}

// Matcher scores a typed prefix against a candidate; 0 means no match.
type Matcher interface {
	Score(query, candidate string) float64
}

// Options configures an Engine. Every engine receives its own value.
type Options struct {
	// IndentUnit is the width of one nesting level.
	IndentUnit int
	// SeqIndent is the width a `- ` decoration adds.
	SeqIndent int
	// DeindentProposals allows proposals that delete excess indentation.
	DeindentProposals bool
	// SuggestDeprecated keeps deprecated properties in key proposals.
	SuggestDeprecated bool
	// MaxItems caps the list a client shows; 0 means unlimited. The engine
	// itself never truncates.
	MaxItems int

	TierDeemphasis        float64
	NextContextDeemphasis float64
	IndentDeemphasis      float64
	DashDeemphasis        float64
	ErrorScore            float64

	// Assistants maps the assistant names used by schema types to their
	// implementations.
	Assistants map[string]CustomAssistant

	Structure structure.Provider
	Matcher   Matcher
}

// DefaultOptions returns a fresh default configuration.
func DefaultOptions() Options {
	return Options{
		IndentUnit:            2,
		SeqIndent:             2,
		DeindentProposals:     true,
		TierDeemphasis:        100,
		NextContextDeemphasis: 10,
		IndentDeemphasis:      1,
		DashDeemphasis:        0.001,
		ErrorScore:            -1e9,
		Assistants: map[string]CustomAssistant{
			"duration": DurationAssistant{},
			"csv":      ListAssistant{},
		},
		Structure: structure.LineParser{},
		Matcher:   fuzzy.Matcher{},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.IndentUnit <= 0 {
		o.IndentUnit = d.IndentUnit
	}
	if o.SeqIndent <= 0 {
		o.SeqIndent = d.SeqIndent
	}
	if o.ErrorScore == 0 {
		o.ErrorScore = d.ErrorScore
	}
	if o.Assistants == nil {
		o.Assistants = d.Assistants
	}
	if o.Structure == nil {
		o.Structure = d.Structure
	}
	if o.Matcher == nil {
		o.Matcher = d.Matcher
	}
	return o
}
