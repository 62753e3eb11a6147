package lsp

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"yamlassist/internal/assist"
	"yamlassist/internal/document"
	"yamlassist/internal/schema"
)

var errNoSchema = errors.New("no schema associated")

const modelinePrefix = "yaml-language-server:"

// schemaStore keeps recently used schemas keyed by path and modification
// time, so edited schema files are reloaded.
type schemaStore struct {
	cache *lru.Cache[string, *schema.Schema]
	disk  *schema.DiskCache
}

func newSchemaStore(size int, disk *schema.DiskCache) *schemaStore {
	cache, err := lru.New[string, *schema.Schema](size)
	if err != nil {
		cache, _ = lru.New[string, *schema.Schema](1)
	}
	return &schemaStore{cache: cache, disk: disk}
}

func (st *schemaStore) load(path string) (*schema.Schema, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	key := fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano())
	if s, ok := st.cache.Get(key); ok {
		return s, nil
	}
	s, err := schema.LoadCached(path, st.disk)
	if err != nil {
		return nil, err
	}
	st.cache.Add(key, s)
	return s, nil
}

func (st *schemaStore) purge() { st.cache.Purge() }

// modelineSchema returns the schema named by a
// `# yaml-language-server: $schema=<path>` comment.
func modelineSchema(doc *document.Document) (string, bool) {
	sc := bufio.NewScanner(strings.NewReader(doc.Text()))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "#") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if !strings.HasPrefix(rest, modelinePrefix) {
			continue
		}
		rest = strings.TrimSpace(strings.TrimPrefix(rest, modelinePrefix))
		if v, ok := strings.CutPrefix(rest, "$schema="); ok {
			if fields := strings.Fields(v); len(fields) > 0 {
				return fields[0], true
			}
		}
	}
	return "", false
}

// schemaPathFor picks the schema of a document: the modeline first, then
// the configured associations and default.
func (s *Server) schemaPathFor(uri string, doc *document.Document) string {
	path := uriToPath(uri)
	if ref, ok := modelineSchema(doc); ok {
		switch {
		case strings.Contains(ref, "://") && !strings.HasPrefix(ref, "file://"):
			s.logf("remote schema %s is not supported", ref)
		case strings.HasPrefix(ref, "file://"):
			return uriToPath(ref)
		case filepath.IsAbs(ref):
			return ref
		case path != "":
			return filepath.Join(filepath.Dir(path), filepath.FromSlash(ref))
		}
	}
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	return cfg.SchemaFor(path)
}

func (s *Server) engineFor(uri string, doc *document.Document) (*assist.Engine, error) {
	path := s.schemaPathFor(uri, doc)
	if path == "" {
		return nil, errNoSchema
	}
	sch, err := s.schemas.load(path)
	if err != nil {
		return nil, err
	}
	return assist.NewEngine(sch, s.options()), nil
}
