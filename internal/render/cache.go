// Package render implements the page renderer of spec.md §4.10: template
// lookup (configured directory -> single-file override -> embedded
// defaults), a read/write-locked template cache keyed on
// (template-root-fingerprint, template-name), TOC generation, and
// doc-nav generation driven by internal/sidebar's ordering policy.
//
// Grounded on the teacher's RWMutex-guarded cache idiom and on
// github.com/zeebo/xxh3 for fast, non-cryptographic fingerprinting of the
// template root identity, matching the rest of the DOMAIN STACK's
// "precompute once, never mutate, read concurrently" shape used for the
// sidebar/option regex caches.
package render

import (
	"fmt"
	"html/template"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ndggen/ndg/internal/ndgerrors"
)

// cacheKey identifies one compiled template by the fingerprint of the
// template root it came from (a configured directory, a single override
// file, or the embedded default set) plus its logical name.
type cacheKey struct {
	root uint64
	name string
}

// templateCache is a process-wide, concurrency-safe cache of compiled
// templates. Lookups take a read lock; a miss is resolved under a write
// lock with a second existence check (insert-if-absent), matching
// spec.md §5's shared-resource description.
type templateCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*template.Template
}

func newTemplateCache() *templateCache {
	return &templateCache{entries: make(map[cacheKey]*template.Template)}
}

func (c *templateCache) get(key cacheKey) (*template.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.entries[key]
	return t, ok
}

func (c *templateCache) getOrInsert(key cacheKey, build func() (*template.Template, error)) (*template.Template, error) {
	if t, ok := c.get(key); ok {
		return t, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.entries[key]; ok {
		return t, nil
	}

	t, err := build()
	if err != nil {
		return nil, err
	}
	c.entries[key] = t
	return t, nil
}

// fingerprintRoot hashes a template root's identity string (a directory
// path, a single-file path, or the sentinel "embedded") into the cache
// key's root component.
func fingerprintRoot(identity string) uint64 {
	return xxh3.HashString(identity)
}

func templateError(name string, err error) error {
	return ndgerrors.New(ndgerrors.KindTemplate, name, fmt.Sprintf("loading template %q", name), err)
}
