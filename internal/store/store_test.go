package store

import (
	"testing"
	"time"

	"github.com/dmcateer/docsieve/internal/analysis"
	"github.com/dmcateer/docsieve/internal/document"
)

func doc(id, hash string, created time.Time) document.Document {
	return document.Document{
		ID:          id,
		Filename:    id + ".txt",
		Title:       "Doc " + id,
		Text:        "body of " + id,
		ContentHash: hash,
		CreatedAt:   created,
	}
}

func TestStore_PutGet(t *testing.T) {
	s := New()
	s.Put(doc("d1", "h1", time.Now()))

	rec, ok := s.Get("d1")
	if !ok {
		t.Fatal("expected record")
	}
	if rec.Doc.ID != "d1" || rec.Doc.Text != "body of d1" {
		t.Errorf("unexpected record: %+v", rec.Doc)
	}
	if rec.Summary != nil {
		t.Error("expected no summary on a fresh record")
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown ID")
	}
}

func TestStore_IDByHash(t *testing.T) {
	s := New()
	s.Put(doc("d1", "hash-a", time.Now()))

	id, ok := s.IDByHash("hash-a")
	if !ok || id != "d1" {
		t.Errorf("expected d1 for hash-a, got %q (%v)", id, ok)
	}
	if _, ok := s.IDByHash("hash-z"); ok {
		t.Error("expected miss for unknown hash")
	}
}

func TestStore_PutReplacesAndReindexes(t *testing.T) {
	s := New()
	s.Put(doc("d1", "old-hash", time.Now()))
	s.Put(doc("d1", "new-hash", time.Now()))

	if _, ok := s.IDByHash("old-hash"); ok {
		t.Error("expected old hash index removed after replace")
	}
	if id, ok := s.IDByHash("new-hash"); !ok || id != "d1" {
		t.Errorf("expected new hash to resolve to d1, got %q (%v)", id, ok)
	}
}

func TestStore_SetSummary(t *testing.T) {
	s := New()
	s.Put(doc("d1", "h1", time.Now()))

	sum := &analysis.Summary{Summary: "short", KeyPoints: []string{}, Findings: []string{}}
	usage := analysis.Usage{InputTokens: 100, OutputTokens: 40}
	if !s.SetSummary("d1", sum, usage) {
		t.Fatal("expected SetSummary to succeed")
	}
	if s.SetSummary("missing", sum, usage) {
		t.Error("expected SetSummary to fail for unknown ID")
	}

	rec, _ := s.Get("d1")
	if rec.Summary == nil || rec.Summary.Summary != "short" {
		t.Errorf("expected stored summary, got %+v", rec.Summary)
	}
	if rec.Usage.InputTokens != 100 {
		t.Errorf("expected usage stored, got %+v", rec.Usage)
	}
}

func TestStore_ListNewestFirstWithoutText(t *testing.T) {
	s := New()
	base := time.Now()
	s.Put(doc("old", "h-old", base.Add(-time.Hour)))
	s.Put(doc("new", "h-new", base))

	docs := s.List()
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "new" || docs[1].ID != "old" {
		t.Errorf("expected newest first, got %s then %s", docs[0].ID, docs[1].ID)
	}
	for _, d := range docs {
		if d.Text != "" {
			t.Errorf("expected Text omitted in listing for %s", d.ID)
		}
	}
}

func TestStore_Delete(t *testing.T) {
	s := New()
	s.Put(doc("d1", "h1", time.Now()))

	if !s.Delete("d1") {
		t.Fatal("expected delete to succeed")
	}
	if s.Delete("d1") {
		t.Error("expected second delete to report false")
	}
	if _, ok := s.Get("d1"); ok {
		t.Error("expected record gone")
	}
	if _, ok := s.IDByHash("h1"); ok {
		t.Error("expected hash index entry gone")
	}
}
