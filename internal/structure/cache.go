package structure

import (
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"yamlassist/internal/document"
)

// CachingProvider memoises trees by the SHA-256 of the document text. Trees
// are immutable so a cached tree may serve any document with the same text.
type CachingProvider struct {
	next  Provider
	cache *lru.Cache[[sha256.Size]byte, *Tree]
}

// NewCachingProvider wraps next with an LRU holding up to size trees.
func NewCachingProvider(next Provider, size int) (*CachingProvider, error) {
	if next == nil {
		next = LineParser{}
	}
	cache, err := lru.New[[sha256.Size]byte, *Tree](size)
	if err != nil {
		return nil, fmt.Errorf("structure cache: %w", err)
	}
	return &CachingProvider{next: next, cache: cache}, nil
}

func (p *CachingProvider) Parse(doc *document.Document) *Tree {
	key := sha256.Sum256([]byte(doc.Text()))
	if t, ok := p.cache.Get(key); ok {
		return t
	}
	t := p.next.Parse(doc)
	p.cache.Add(key, t)
	return t
}

// Len returns the number of cached trees.
func (p *CachingProvider) Len() int { return p.cache.Len() }
