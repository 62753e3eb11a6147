package lsp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"yamlassist/internal/config"
	"yamlassist/internal/document"
)

const appSchema = `
root: App
types:
  App:
    properties:
      name: {type: string, required: true, description: Application name}
      kind: {type: Kind, primary: true}
  Kind:
    values:
      - web
      - {value: cli, doc: Command line tool}
`

const modeline = "# yaml-language-server: $schema=app.yaml\n"

func writeSchema(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "app.yaml")
	if err := os.WriteFile(path, []byte(appSchema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	return NewServer(bytes.NewReader(nil), io.Discard, ServerOptions{Config: cfg, Log: io.Discard})
}

func openDoc(t *testing.T, s *Server, uri, text string) {
	t.Helper()
	s.handleDidOpen(&protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: protocol.DocumentURI(uri), LanguageID: "yaml", Version: 1, Text: text},
	})
}

func completionAt(t *testing.T, s *Server, uri string, line, char uint32) *protocol.CompletionList {
	t.Helper()
	list, err := s.handleCompletion(context.Background(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Position:     protocol.Position{Line: line, Character: char},
		},
	})
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if list == nil {
		t.Fatal("expected a completion list")
	}
	return list
}

func itemByLabel(t *testing.T, list *protocol.CompletionList, label string) protocol.CompletionItem {
	t.Helper()
	var seen []string
	for _, item := range list.Items {
		if item.Label == label {
			return item
		}
		seen = append(seen, item.Label)
	}
	t.Fatalf("no item %q in %v", label, seen)
	return protocol.CompletionItem{}
}

func TestCompletionWithModelineSchema(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir)
	s := newTestServer(t, nil)
	uri := pathToURI(filepath.Join(dir, "app-config.yaml"))
	openDoc(t, s, uri, modeline)

	list := completionAt(t, s, uri, 1, 0)
	item := itemByLabel(t, list, "name")
	if item.Kind != protocol.CompletionItemKindProperty {
		t.Fatalf("expected property kind, got %v", item.Kind)
	}
	if item.TextEdit == nil {
		t.Fatal("expected a text edit")
	}
	if item.TextEdit.NewText != "name: " {
		t.Fatalf("unexpected edit text %q", item.TextEdit.NewText)
	}
	start := item.TextEdit.Range.Start
	if start.Line != 1 || start.Character != 0 {
		t.Fatalf("unexpected edit start %+v", start)
	}
	for i := 1; i < len(list.Items); i++ {
		if list.Items[i-1].SortText >= list.Items[i].SortText {
			t.Fatalf("sort text out of order: %q then %q", list.Items[i-1].SortText, list.Items[i].SortText)
		}
	}
}

func TestCompletionValueItems(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir)
	s := newTestServer(t, nil)
	uri := pathToURI(filepath.Join(dir, "svc.yaml"))
	openDoc(t, s, uri, modeline+"kind: ")

	list := completionAt(t, s, uri, 1, 6)
	item := itemByLabel(t, list, "cli")
	if item.Kind != protocol.CompletionItemKindValue {
		t.Fatalf("expected value kind, got %v", item.Kind)
	}
	doc, ok := item.Documentation.(protocol.MarkupContent)
	if !ok || !strings.Contains(doc.Value, "Command line tool") {
		t.Fatalf("unexpected documentation %#v", item.Documentation)
	}
	itemByLabel(t, list, "web")
}

func TestCompletionAssociationFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir)
	cfg := config.Default()
	cfg.Root = dir
	cfg.Associations = []config.Association{{Pattern: "apps/**/*.yaml", Schema: "app.yaml"}}
	s := newTestServer(t, cfg)

	matched := pathToURI(filepath.Join(dir, "apps", "web", "main.yaml"))
	openDoc(t, s, matched, "")
	if list := completionAt(t, s, matched, 0, 0); len(list.Items) == 0 {
		t.Fatal("expected items for an associated document")
	}

	other := pathToURI(filepath.Join(dir, "other.yaml"))
	openDoc(t, s, other, "")
	if list := completionAt(t, s, other, 0, 0); len(list.Items) != 0 {
		t.Fatalf("expected no items without a schema, got %d", len(list.Items))
	}
}

func TestCompletionMaxItems(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir)
	s := newTestServer(t, nil)
	s.applySettings(map[string]any{
		"yamlassist": map[string]any{"completion": map[string]any{"maxItems": 1}},
	})
	uri := pathToURI(filepath.Join(dir, "svc.yaml"))
	openDoc(t, s, uri, modeline+"kind: ")

	list := completionAt(t, s, uri, 1, 6)
	if len(list.Items) != 1 || !list.IsIncomplete {
		t.Fatalf("expected one item and an incomplete list, got %d (incomplete=%v)", len(list.Items), list.IsIncomplete)
	}
}

func TestApplySettings(t *testing.T) {
	s := newTestServer(t, nil)
	s.applySettings(map[string]any{
		"yamlassist": map[string]any{"completion": map[string]any{"deindent": false, "deprecated": true}},
	})
	opts := s.options()
	if opts.DeindentProposals {
		t.Fatal("expected deindent proposals to be disabled")
	}
	if !opts.SuggestDeprecated {
		t.Fatal("expected deprecated proposals to be enabled")
	}
	s.applySettings("garbage")
	if s.options().SuggestDeprecated != true {
		t.Fatal("malformed settings must not reset options")
	}
}

func TestHoverKey(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir)
	s := newTestServer(t, nil)
	uri := pathToURI(filepath.Join(dir, "svc.yaml"))
	openDoc(t, s, uri, modeline+"name: x\n")

	hover, err := s.handleHover(context.Background(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Position:     protocol.Position{Line: 1, Character: 1},
		},
	})
	if err != nil {
		t.Fatalf("hover: %v", err)
	}
	if hover == nil {
		t.Fatal("expected hover")
	}
	if !strings.Contains(hover.Contents.Value, "**name**") || !strings.Contains(hover.Contents.Value, "Application name") {
		t.Fatalf("unexpected hover %q", hover.Contents.Value)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	uri := "file:///tmp/doc.yaml"
	openDoc(t, s, uri, "a: 1\n")
	s.handleDidChange(&protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "a: 1\n"}, {Text: "b: 2\n"}},
	})
	if doc := s.document(uri); doc == nil || doc.Text() != "b: 2\n" {
		t.Fatalf("expected last change to win, got %v", doc)
	}
	s.handleDidClose(&protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	})
	if s.document(uri) != nil {
		t.Fatal("expected document to be dropped on close")
	}
}

func TestModelineSchema(t *testing.T) {
	cases := []struct {
		text string
		want string
		ok   bool
	}{
		{"# yaml-language-server: $schema=app.yaml\n", "app.yaml", true},
		{"a: 1\n#   yaml-language-server:   $schema=../s.yaml extra\n", "../s.yaml", true},
		{"# $schema=app.yaml\n", "", false},
		{"a: 1\n", "", false},
	}
	for _, tc := range cases {
		got, ok := modelineSchema(document.New("x.yaml", tc.text))
		if got != tc.want || ok != tc.ok {
			t.Fatalf("modelineSchema(%q) = %q, %v; want %q, %v", tc.text, got, ok, tc.want, tc.ok)
		}
	}
}

func TestURIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir with space", "a.yaml")
	uri := pathToURI(path)
	if !strings.HasPrefix(uri, "file://") {
		t.Fatalf("expected file uri, got %q", uri)
	}
	if got := uriToPath(uri); got != path {
		t.Fatalf("round trip mismatch: %q != %q", got, path)
	}
	if got := uriToPath("untitled://buffer"); got != "" {
		t.Fatalf("expected empty path for non-file uri, got %q", got)
	}
}

func TestServeOverPipe(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir)
	serverSide, clientSide := net.Pipe()
	s := NewServer(serverSide, serverSide, ServerOptions{Log: io.Discard, Version: "test"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	client := jsonrpc2.NewConn(jsonrpc2.NewStream(clientSide))
	client.Go(ctx, jsonrpc2.MethodNotFoundHandler)
	defer client.Close()

	var init protocol.InitializeResult
	if _, err := client.Call(ctx, "initialize", protocol.InitializeParams{RootURI: protocol.DocumentURI(pathToURI(dir))}, &init); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if init.ServerInfo == nil || init.ServerInfo.Name != "yamlassist" {
		t.Fatalf("unexpected server info %+v", init.ServerInfo)
	}

	uri := pathToURI(filepath.Join(dir, "svc.yaml"))
	if err := client.Notify(ctx, "textDocument/didOpen", protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: protocol.DocumentURI(uri), LanguageID: "yaml", Version: 1, Text: modeline + "kind: "},
	}); err != nil {
		t.Fatalf("didOpen: %v", err)
	}

	var list protocol.CompletionList
	if _, err := client.Call(ctx, "textDocument/completion", protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Position:     protocol.Position{Line: 1, Character: 6},
		},
	}, &list); err != nil {
		t.Fatalf("completion: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 value items, got %d", len(list.Items))
	}

	var ignored any
	if _, err := client.Call(ctx, "shutdown", nil, &ignored); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := client.Notify(ctx, "exit", nil); err != nil {
		t.Fatalf("exit: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrExit) {
			t.Fatalf("expected ErrExit, got %v", err)
		}
	case <-ctx.Done():
		t.Fatal("server did not stop")
	}
}
