package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmcateer/docsieve/internal/analysis"
	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/llm"
	"github.com/go-chi/chi/v5"
)

const maxJSONBody = 1 << 20

type askRequest struct {
	Question string `json:"question"`
}

// handleAsk answers a question against a stored document.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	rec, ok := s.orchestrator.Docs().Get(docID)
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	answer, err := s.orchestrator.Engine().AnswerQuestion(r.Context(), rec.Doc.Text, req.Question)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":        rec.Doc.ID,
		"answer":        answer.Text,
		"escalated":     answer.Escalated,
		"input_tokens":  answer.InputTokens,
		"output_tokens": answer.OutputTokens,
	})
}

type compareRequest struct {
	DocA string `json:"doc_a"`
	DocB string `json:"doc_b"`
}

// handleCompare compares two stored documents.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DocA == "" || req.DocB == "" {
		jsonError(w, "doc_a and doc_b are required", http.StatusBadRequest)
		return
	}

	docs := s.orchestrator.Docs()
	recA, okA := docs.Get(req.DocA)
	if !okA {
		jsonError(w, "document not found: "+req.DocA, http.StatusNotFound)
		return
	}
	recB, okB := docs.Get(req.DocB)
	if !okB {
		jsonError(w, "document not found: "+req.DocB, http.StatusNotFound)
		return
	}

	comparison, usage, err := s.orchestrator.Engine().Compare(r.Context(), recA.Doc, recB.Doc)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_a":         recA.Doc.ID,
		"doc_b":         recB.Doc.ID,
		"comparison":    comparison,
		"input_tokens":  usage.InputTokens,
		"output_tokens": usage.OutputTokens,
	})
}

// writeAnalysisError maps analysis failures to HTTP status codes.
func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, document.ErrEmptyInput):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case isRetryable(err):
		jsonError(w, "upstream model unavailable: "+err.Error(), http.StatusServiceUnavailable)
	case isStageError(err):
		jsonError(w, err.Error(), http.StatusBadGateway)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func isRetryable(err error) bool {
	var re *llm.RetryableError
	return errors.As(err, &re)
}

func isStageError(err error) bool {
	var se *analysis.StageError
	return errors.As(err, &se)
}
