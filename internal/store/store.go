// Package store keeps parsed documents and their analysis results in
// memory for the lifetime of the process. Durable persistence lives
// outside this service; this registry only has to survive between the
// upload that created a document and the questions asked about it.
package store

import (
	"sort"
	"sync"

	"github.com/dmcateer/docsieve/internal/analysis"
	"github.com/dmcateer/docsieve/internal/document"
)

// Record pairs a document with its latest summary, if one has been
// produced yet.
type Record struct {
	Doc     document.Document
	Summary *analysis.Summary
	Usage   analysis.Usage
}

type Store struct {
	mu     sync.RWMutex
	byID   map[string]*Record
	byHash map[string]string // content hash -> doc ID
}

func New() *Store {
	return &Store{
		byID:   make(map[string]*Record),
		byHash: make(map[string]string),
	}
}

// Put registers a document, replacing any previous record with the same ID.
func (s *Store) Put(doc document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byID[doc.ID]; ok {
		delete(s.byHash, old.Doc.ContentHash)
	}
	s.byID[doc.ID] = &Record{Doc: doc}
	if doc.ContentHash != "" {
		s.byHash[doc.ContentHash] = doc.ID
	}
}

// SetSummary attaches a summary and its usage to a stored document.
func (s *Store) SetSummary(id string, sum *analysis.Summary, usage analysis.Usage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return false
	}
	rec.Summary = sum
	rec.Usage = usage
	return true
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// IDByHash looks a document up by content hash, for duplicate detection.
func (s *Store) IDByHash(hash string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	return id, ok
}

// List returns all stored documents, newest first. Text is omitted from
// the copies; callers listing documents never need the full body.
func (s *Store) List() []document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]document.Document, 0, len(s.byID))
	for _, rec := range s.byID {
		d := rec.Doc
		d.Text = ""
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Delete removes a document. It reports whether anything was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byHash, rec.Doc.ContentHash)
	delete(s.byID, id)
	return true
}
