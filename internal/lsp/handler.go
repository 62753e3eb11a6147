package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"yamlassist/internal/trace"
)

func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		ctx = trace.WithTracer(ctx, s.tracer)
		switch req.Method() {
		case "initialize":
			var params protocol.InitializeParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, s.handleInitialize(&params), nil)

		case "initialized":
			return reply(ctx, nil, nil)

		case "shutdown":
			s.handleShutdown()
			return reply(ctx, nil, nil)

		case "exit":
			s.exit()
			return reply(ctx, nil, nil)

		case "workspace/didChangeConfiguration":
			var params protocol.DidChangeConfigurationParams
			if err := decode(req, &params); err != nil {
				s.logf("didChangeConfiguration: %v", err)
				return reply(ctx, nil, nil)
			}
			s.applySettings(params.Settings)
			return reply(ctx, nil, nil)

		case "textDocument/didOpen":
			var params protocol.DidOpenTextDocumentParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			s.handleDidOpen(&params)
			return reply(ctx, nil, nil)

		case "textDocument/didChange":
			var params protocol.DidChangeTextDocumentParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			s.handleDidChange(&params)
			return reply(ctx, nil, nil)

		case "textDocument/didClose":
			var params protocol.DidCloseTextDocumentParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			s.handleDidClose(&params)
			return reply(ctx, nil, nil)

		case "textDocument/completion":
			var params protocol.CompletionParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.handleCompletion(ctx, &params)
			return reply(ctx, result, err)

		case "textDocument/hover":
			var params protocol.HoverParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.handleHover(ctx, &params)
			if result == nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, result, err)

		default:
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
	}
}

func decode(req jsonrpc2.Request, v any) error {
	raw := req.Params()
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", jsonrpc2.ErrInvalidParams, req.Method(), err)
	}
	return nil
}
