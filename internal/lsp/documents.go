package lsp

import (
	"go.lsp.dev/protocol"

	"yamlassist/internal/document"
)

func (s *Server) handleDidOpen(params *protocol.DidOpenTextDocumentParams) {
	uri := string(params.TextDocument.URI)
	if uri == "" {
		return
	}
	s.mu.Lock()
	s.docs[uri] = document.New(uri, params.TextDocument.Text)
	s.mu.Unlock()
}

// handleDidChange takes the last full-text change; the server only
// advertises full synchronisation.
func (s *Server) handleDidChange(params *protocol.DidChangeTextDocumentParams) {
	uri := string(params.TextDocument.URI)
	if uri == "" || len(params.ContentChanges) == 0 {
		return
	}
	last := params.ContentChanges[len(params.ContentChanges)-1]
	s.mu.Lock()
	s.docs[uri] = document.New(uri, last.Text)
	s.mu.Unlock()
}

func (s *Server) handleDidClose(params *protocol.DidCloseTextDocumentParams) {
	s.mu.Lock()
	delete(s.docs, string(params.TextDocument.URI))
	s.mu.Unlock()
}

func (s *Server) document(uri string) *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[uri]
}
