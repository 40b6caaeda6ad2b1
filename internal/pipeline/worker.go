package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmcateer/docsieve/internal/analysis"
	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/parser"
	"github.com/dmcateer/docsieve/internal/store"
)

// Worker processes a single document job: parse, dedup, store, summarize.
type Worker struct {
	engine *analysis.Engine
	docs   *store.Store
	log    *slog.Logger

	pdfFallback bool
}

func NewWorker(engine *analysis.Engine, docs *store.Store, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{
		engine:      engine,
		docs:        docs,
		log:         log,
		pdfFallback: pdfFallback,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = w.pdfFallback
	}

	parsed, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	title := job.Title
	if title == "" {
		title = parsed.Title
	}

	// Phase 2: Dedup check against previously ingested content.
	hash := ContentHashHex([]byte(parsed.Text))
	job.SetContentHash(hash)
	if existingID, ok := w.docs.IDByHash(hash); ok {
		log.Info("duplicate document, skipping", "existing_doc_id", existingID)
		job.SetDocID(existingID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	doc := document.Document{
		ID:          NewID(),
		Filename:    job.Filename,
		Title:       title,
		Text:        parsed.Text,
		ContentHash: hash,
		CreatedAt:   time.Now().UTC(),
	}
	w.docs.Put(doc)
	job.SetDocID(doc.ID)

	// Phase 3: Summarize with retries on transient LLM failures.
	job.SetStatus(StatusAnalyzing, "analyzing")
	var (
		summary *analysis.Summary
		usage   analysis.Usage
		lastErr error
	)
	for attempt := range MaxRetries {
		summary, usage, lastErr = w.engine.Summarize(ctx, doc.Text)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable analysis error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			job.AddError(ctx.Err().Error())
			job.SetStatus(StatusFailed, "analyzing")
			return
		}
	}
	job.AddTokens(usage.InputTokens, usage.OutputTokens)
	if lastErr != nil {
		log.Error("analysis failed", "error", lastErr)
		job.AddError(fmt.Sprintf("analyze: %s", lastErr))
		job.SetStatus(StatusFailed, "analyzing")
		return
	}

	w.docs.SetSummary(doc.ID, summary, usage)
	log.Info("ingest complete", "doc_id", doc.ID,
		"input_tokens", usage.InputTokens, "output_tokens", usage.OutputTokens,
		"degraded", summary.Degraded)
	job.SetStatus(StatusCompleted, "done")
}
