package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/reportmd/internal/importer"
	"github.com/dgallion1/reportmd/internal/ir"
	"github.com/dgallion1/reportmd/internal/render"
	"github.com/dgallion1/reportmd/internal/store"
)

// Worker processes a single render job.
type Worker struct {
	renderer *render.Renderer
	stats    *render.Stats
	store    *store.Client
	log      *slog.Logger

	// Bounds concurrent deliveries across all workers.
	deliverSem chan struct{}
}

func NewWorker(renderer *render.Renderer, stats *render.Stats, st *store.Client, log *slog.Logger, deliverSem chan struct{}) *Worker {
	return &Worker{
		renderer:   renderer,
		stats:      stats,
		store:      st,
		log:        log,
		deliverSem: deliverSem,
	}
}

// Process runs the full conversion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Import
	job.SetStatus(StatusImporting, "importing")
	doc, err := w.importDocument(job)
	if err != nil {
		log.Error("import failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "importing")
		return
	}
	if job.Title != "" {
		ir.SetTitle(doc, job.Title)
	}
	job.SetTotalChapters(len(doc.Chapters()))

	// Phase 2: Render
	job.SetStatus(StatusRendering, "rendering")
	start := time.Now()
	markdown := w.renderer.Render(doc)
	if w.stats != nil {
		w.stats.Record(time.Since(start).Milliseconds())
	}
	job.SetResult(markdown)
	job.ContentHash = ContentHashHex([]byte(markdown))
	log.Info("rendered document", "chapters", len(doc.Chapters()), "bytes", len(markdown))

	if w.store == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 2.5: Skip delivery when the stored copy already matches.
	existing, err := w.store.GetDocument(ctx, job.DocID)
	if err != nil {
		log.Warn("existing document lookup failed, delivering anyway", "error", err)
	} else if existing != nil && existing.ContentHash == job.ContentHash {
		log.Info("stored document unchanged, skipping delivery")
		job.SetStatus(StatusUnchanged, "done")
		return
	}

	// Phase 3: Deliver
	job.SetStatus(StatusDelivering, "delivering")
	if err := w.deliver(ctx, job, doc, markdown); err != nil {
		log.Error("delivery failed", "error", err)
		job.AddError(fmt.Sprintf("deliver: %s", err))
		job.SetStatus(StatusFailed, "delivering")
		return
	}
	log.Info("delivered document", "content_hash", job.ContentHash)
	job.SetStatus(StatusCompleted, "done")
}

// importDocument produces the document to render, either by decoding the
// inline submission or by importing the uploaded file.
func (w *Worker) importDocument(job *Job) (ir.Document, error) {
	if doc := job.Document(); doc != nil {
		return doc, nil
	}
	data := job.FileData()
	if len(data) == 0 {
		return nil, fmt.Errorf("job %s has no document and no file data", job.ID)
	}
	imp, err := importer.ForFile(job.Filename)
	if err != nil {
		return nil, err
	}
	doc, err := imp.Import(bytes.NewReader(data), job.Filename)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", job.Filename, err)
	}
	return doc, nil
}

// deliver pushes the rendered Markdown to the document store, retrying
// transient failures.
func (w *Worker) deliver(ctx context.Context, job *Job, doc ir.Document, markdown string) error {
	w.deliverSem <- struct{}{}
	defer func() { <-w.deliverSem }()

	body := store.Document{
		Markdown:    markdown,
		Title:       ir.String(doc.Metadata(), "title", "query"),
		Source:      job.Filename,
		ContentHash: job.ContentHash,
	}

	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.store.PutDocument(ctx, job.DocID, body)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		w.log.Warn("retryable delivery error", "job_id", job.ID, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
