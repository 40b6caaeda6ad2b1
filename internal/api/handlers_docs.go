package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists all stored documents, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.orchestrator.Docs().List()

	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, map[string]any{
			"doc_id":       d.ID,
			"filename":     d.Filename,
			"title":        d.Title,
			"content_hash": d.ContentHash,
			"created_at":   d.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": out})
}

// handleSummary returns the stored summary for a document.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	rec, ok := s.orchestrator.Docs().Get(docID)
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if rec.Summary == nil {
		jsonError(w, "summary not ready", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":        rec.Doc.ID,
		"title":         rec.Doc.Title,
		"summary":       rec.Summary,
		"input_tokens":  rec.Usage.InputTokens,
		"output_tokens": rec.Usage.OutputTokens,
	})
}

// handleDeleteDocument removes a document and its summary.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !s.orchestrator.Docs().Delete(docID) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": docID})
}
