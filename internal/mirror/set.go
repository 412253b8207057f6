package mirror

import (
	"github.com/hashicorp/golang-lru"
)

// maxTrackedDocuments bounds the LRU cache backing Set. It is not meant
// to evict live documents — DidClose always removes its own path first —
// it only guards against an editor session that leaks didOpen/didClose
// pairs from growing the access-order structure without bound.
const maxTrackedDocuments = 8192

// OpenParams describes a document being opened.
type OpenParams struct {
	URI        string
	Path       string
	LanguageID LanguageID
	Version    int
	Text       string
}

// Set is the mapping of path to Document plus the most-recently-accessed
// ordering described in spec.md's OpenDocumentSet: every successful Get
// moves its path to the front.
type Set struct {
	cache *lru.Cache
}

// NewSet creates an empty document set.
func NewSet() *Set {
	cache, err := lru.New(maxTrackedDocuments)
	if err != nil {
		// lru.New only fails for size <= 0, which maxTrackedDocuments never is.
		panic(err)
	}
	return &Set{cache: cache}
}

// Open inserts a new document if path is not already tracked. It reports
// false without modifying the set if path is already open — callers
// should fall back to applying a full-text change (spec.md OpenDocumentSet
// lifecycle: re-opening an already-open path is forbidden).
func (s *Set) Open(path string, p OpenParams) (*Document, bool) {
	if _, ok := s.cache.Peek(path); ok {
		return nil, false
	}
	doc := &Document{
		URI:        p.URI,
		Path:       p.Path,
		LanguageID: p.LanguageID,
		Version:    p.Version,
		Text:       p.Text,
	}
	s.cache.Add(path, doc)
	return doc, true
}

// Close removes path from the set and returns the document that was
// removed, if any.
func (s *Set) Close(path string) (*Document, bool) {
	v, ok := s.cache.Peek(path)
	if !ok {
		return nil, false
	}
	s.cache.Remove(path)
	return v.(*Document), true
}

// Get returns the document at path, moving it to the front of the
// access order.
func (s *Set) Get(path string) (*Document, bool) {
	v, ok := s.cache.Get(path)
	if !ok {
		return nil, false
	}
	return v.(*Document), true
}

// Peek returns the document at path without affecting access order.
func (s *Set) Peek(path string) (*Document, bool) {
	v, ok := s.cache.Peek(path)
	if !ok {
		return nil, false
	}
	return v.(*Document), true
}

// MostRecentPath returns the path that was most recently opened or
// returned by Get, used by workspace/symbol to pick a "current" file when the request
// carries none. Keys() is ordered oldest-to-newest, so the most recent
// entry is last.
func (s *Set) MostRecentPath() (string, bool) {
	keys := s.cache.Keys()
	if len(keys) == 0 {
		return "", false
	}
	return keys[len(keys)-1].(string), true
}

// Len returns the number of currently open documents.
func (s *Set) Len() int {
	return s.cache.Len()
}
