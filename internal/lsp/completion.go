package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"

	"yamlassist/internal/assist"
	"yamlassist/internal/document"
	"yamlassist/internal/telemetry"
)

func (s *Server) handleCompletion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	empty := &protocol.CompletionList{Items: []protocol.CompletionItem{}}
	uri := string(params.TextDocument.URI)
	doc := s.document(uri)
	if doc == nil {
		return empty, nil
	}
	engine, err := s.engineFor(uri, doc)
	if err != nil {
		s.logf("completion: %s: %v", uri, err)
		return empty, nil
	}
	offset := doc.OffsetAt(params.Position.Line, params.Position.Character)

	h, ctx := s.instruments.Start(ctx, telemetry.RequestInfo{Method: "complete", URI: uri})
	proposals, err := engine.Complete(ctx, doc, offset)
	s.instruments.Finish(h, len(proposals), err)
	if err != nil {
		s.logf("completion: %s: %v", uri, err)
		return empty, nil
	}

	assist.Sort(proposals)
	proposals = assist.Dedupe(proposals)
	list := &protocol.CompletionList{Items: make([]protocol.CompletionItem, 0, len(proposals))}
	if limit := engine.Options().MaxItems; limit > 0 && len(proposals) > limit {
		proposals = proposals[:limit]
		list.IsIncomplete = true
	}
	for i, p := range proposals {
		list.Items = append(list.Items, completionItem(doc, offset, i, p))
	}
	return list, nil
}

func completionItem(doc *document.Document, offset, rank int, p assist.Proposal) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:            p.Label,
		Kind:             itemKind(p.Kind),
		Detail:           p.Detail,
		Deprecated:       p.Deprecated,
		SortText:         fmt.Sprintf("%06d", rank),
		InsertTextFormat: protocol.InsertTextFormatPlainText,
	}
	if p.Documentation != "" {
		item.Documentation = protocol.MarkupContent{Kind: protocol.Markdown, Value: p.Documentation}
	}
	ops := p.Edits.Ops()
	if p.Kind == assist.KindError || len(ops) == 0 {
		return item
	}
	if p.Edits.IsSnippet() {
		item.InsertTextFormat = protocol.InsertTextFormatSnippet
	}
	main := 0
	for i, op := range ops {
		if op.Start <= offset && offset <= op.End {
			main = i
			break
		}
	}
	for i, op := range ops {
		edit := protocol.TextEdit{Range: rangeOf(doc, op.Start, op.End), NewText: op.Text}
		if i == main {
			item.TextEdit = &edit
			continue
		}
		item.AdditionalTextEdits = append(item.AdditionalTextEdits, edit)
	}
	// clients filter on the text between the edit start and the cursor
	typedFrom := max(offset-len(p.Prefix), ops[main].Start)
	item.FilterText = doc.TextBetween(ops[main].Start, typedFrom) + p.Label
	return item
}

func itemKind(k assist.ProposalKind) protocol.CompletionItemKind {
	switch k {
	case assist.KindProperty:
		return protocol.CompletionItemKindProperty
	case assist.KindValue:
		return protocol.CompletionItemKindValue
	case assist.KindSnippet:
		return protocol.CompletionItemKindSnippet
	default:
		return protocol.CompletionItemKindText
	}
}

func rangeOf(doc *document.Document, start, end int) protocol.Range {
	sl, sc := doc.PositionAt(start)
	el, ec := doc.PositionAt(end)
	return protocol.Range{
		Start: protocol.Position{Line: sl, Character: sc},
		End:   protocol.Position{Line: el, Character: ec},
	}
}
