package fuzztests

import (
	"context"
	"errors"
	"testing"

	"yamlassist/internal/assist"
	"yamlassist/internal/document"
	"yamlassist/internal/schema"
)

const fuzzSchema = `
root: App
types:
  App:
    properties:
      name: {type: string, required: true}
      kind: {type: Kind, primary: true}
      spec: Spec
      items: seq(Item)
      labels: map(string)
      timeout: duration
  Kind:
    values: [web, cli]
  Spec:
    properties:
      image: string
      ports: seq(int)
  Item:
    properties:
      id: {type: string, required: true}
`

func FuzzEngineComplete(f *testing.F) {
	addProbeSeeds(f)
	s, err := schema.Parse([]byte(fuzzSchema), f.TempDir())
	if err != nil {
		f.Fatalf("schema.Parse: %v", err)
	}
	engine := assist.NewEngine(s, assist.DefaultOptions())
	f.Fuzz(func(t *testing.T, text string, at uint16) {
		text = string(clip([]byte(text)))
		offset := int(at) % (len(text) + 1)
		doc := document.New("fuzz.yaml", text)
		_, err := engine.Complete(context.Background(), doc, offset)
		if errors.Is(err, assist.ErrInternal) {
			t.Fatalf("Complete(%q, %d): %v", text, offset, err)
		}
	})
}
