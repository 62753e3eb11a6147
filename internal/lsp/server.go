// Package lsp serves schema-driven YAML completion and hover over the
// Language Server Protocol.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"yamlassist/internal/config"
	"yamlassist/internal/document"
	"yamlassist/internal/schema"
	"yamlassist/internal/structure"
	"yamlassist/internal/telemetry"
	"yamlassist/internal/trace"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Config supplies the default schema, associations and engine options.
	Config *config.Config
	// SchemaCacheSize bounds the number of loaded schemas kept in memory.
	SchemaCacheSize int
	// DiskCache stores decoded schema files between runs; nil disables it.
	DiskCache *schema.DiskCache
	Telemetry *telemetry.Instruments
	Tracer    trace.Tracer
	// Log receives operational messages; stderr when nil.
	Log     io.Writer
	Version string
}

// Server handles stdio JSON-RPC for the yamlassist language server.
type Server struct {
	rwc  io.ReadWriteCloser
	conn jsonrpc2.Conn

	mu                sync.Mutex
	docs              map[string]*document.Document
	workspaceRoot     string
	shutdownRequested bool
	settings          settings

	cfg         *config.Config
	schemas     *schemaStore
	structure   structure.Provider
	instruments *telemetry.Instruments
	tracer      trace.Tracer
	log         io.Writer
	version     string

	exitOnce sync.Once
	exited   chan struct{}
	exitErr  error
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	size := opts.SchemaCacheSize
	if size <= 0 {
		size = 16
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	provider, err := structure.NewCachingProvider(structure.LineParser{}, 64)
	var sp structure.Provider = provider
	if err != nil {
		sp = structure.LineParser{}
	}
	s := &Server{
		rwc:         stdio{in: in, out: out},
		docs:        make(map[string]*document.Document),
		settings:    settingsFrom(cfg),
		cfg:         cfg,
		schemas:     newSchemaStore(size, opts.DiskCache),
		structure:   sp,
		instruments: opts.Telemetry,
		tracer:      tracer,
		log:         logw,
		version:     opts.Version,
		exited:      make(chan struct{}),
	}
	return s
}

// Run serves LSP requests until the client exits or the stream ends.
func (s *Server) Run(ctx context.Context) error {
	s.conn = jsonrpc2.NewConn(jsonrpc2.NewStream(s.rwc))
	s.conn.Go(ctx, s.handler())
	select {
	case <-s.conn.Done():
	case <-s.exited:
		s.conn.Close()
		<-s.conn.Done()
	case <-ctx.Done():
		s.conn.Close()
		<-s.conn.Done()
		return ctx.Err()
	}
	s.mu.Lock()
	exitErr := s.exitErr
	s.mu.Unlock()
	if exitErr != nil {
		return exitErr
	}
	if err := s.conn.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
		return err
	}
	return nil
}

func (s *Server) exit() {
	s.exitOnce.Do(func() {
		s.mu.Lock()
		if s.shutdownRequested {
			s.exitErr = ErrExit
		} else {
			s.exitErr = ErrExitWithoutShutdown
		}
		s.mu.Unlock()
		close(s.exited)
	})
}

func (s *Server) handleInitialize(params *protocol.InitializeParams) *protocol.InitializeResult {
	root := ""
	if params.RootURI != "" {
		root = uriToPath(string(params.RootURI))
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	if s.cfg.Path == "" && root != "" {
		if cfg, err := config.Discover(root); err == nil && cfg.Path != "" {
			s.cfg = cfg
			s.settings = settingsFrom(cfg)
		}
	}
	s.mu.Unlock()
	if params.InitializationOptions != nil {
		s.applySettings(params.InitializationOptions)
	}
	s.logf("initialized: root=%s", root)

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			HoverProvider: true,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{" ", ":", "-", ","},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "yamlassist",
			Version: s.version,
		},
	}
}

func (s *Server) handleShutdown() {
	s.mu.Lock()
	s.shutdownRequested = true
	s.docs = make(map[string]*document.Document)
	s.mu.Unlock()
	s.schemas.purge()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "yamlassist-lsp: "+format+"\n", args...)
}

// stdio joins the server's input and output into one stream.
type stdio struct {
	in  io.Reader
	out io.Writer
}

func (s stdio) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s stdio) Close() error {
	var errs []error
	if c, ok := s.in.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := s.out.(io.Closer); ok && any(s.out) != any(s.in) {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
