package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"yamlassist/internal/telemetry"
)

func (s *Server) handleHover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := string(params.TextDocument.URI)
	doc := s.document(uri)
	if doc == nil {
		return nil, nil
	}
	engine, err := s.engineFor(uri, doc)
	if err != nil {
		s.logf("hover: %s: %v", uri, err)
		return nil, nil
	}
	offset := doc.OffsetAt(params.Position.Line, params.Position.Character)

	h, ctx := s.instruments.Start(ctx, telemetry.RequestInfo{Method: "hover", URI: uri})
	info, ok, err := engine.Hover(ctx, doc, offset)
	s.instruments.Finish(h, 0, err)
	if err != nil {
		s.logf("hover: %s: %v", uri, err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	r := rangeOf(doc, info.Start, info.End)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: info.Markdown},
		Range:    &r,
	}, nil
}
