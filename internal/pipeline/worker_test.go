package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/finlens/ipoagent/internal/chunker"
	"github.com/finlens/ipoagent/internal/document"
	"github.com/finlens/ipoagent/internal/parser"
)

type fakeMetricWriter struct {
	mu      sync.Mutex
	deletes []string
	sets    map[document.MetricKey]float64
	setErr  error
}

func (f *fakeMetricWriter) DeleteDocument(_ context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, docID)
	return nil
}

func (f *fakeMetricWriter) Set(_ context.Context, _ string, key document.MetricKey, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	if f.sets == nil {
		f.sets = make(map[document.MetricKey]float64)
	}
	f.sets[key] = value
	return nil
}

type fakeIndexer struct {
	mu      sync.Mutex
	deletes []string
	added   []document.Chunk
}

func (f *fakeIndexer) DeleteDocument(_ context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, docID)
	return nil
}

func (f *fakeIndexer) Add(_ context.Context, _ string, chunks []document.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, chunks...)
	return nil
}

const sampleProspectus = `ACME Industries Limited draft red herring prospectus.

RISK FACTORS

Our business depends on a small number of large customers and the loss of any of them could hurt revenue.

RESTATED FINANCIAL INFORMATION

Revenue from operations 29,493.8 24,582.0
Profit for the year 2,110.5 1,854.2
`

func newTestJob(id, docID, filename, content string) *Job {
	job := &Job{ID: id, DocID: docID, Filename: filename, Status: StatusQueued}
	job.SetFileData([]byte(content))
	return job
}

func newTestWorker(metrics MetricWriter, index VectorIndexer, hashes *HashIndex) *Worker {
	log := slog.New(slog.DiscardHandler)
	return NewWorker(metrics, index, hashes, log, chunker.DefaultConfig(), 1000, parser.Options{})
}

func TestWorker_ProcessCompletes(t *testing.T) {
	metrics := &fakeMetricWriter{}
	index := &fakeIndexer{}
	w := newTestWorker(metrics, index, NewHashIndex())

	job := newTestJob("j1", "doc1", "rhp.txt", sampleProspectus)
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (errors: %v)", job.Status, job.Snapshot().Progress.Errors)
	}

	// Prior state is reset before the rewrite.
	if len(metrics.deletes) != 1 || metrics.deletes[0] != "doc1" {
		t.Errorf("expected one metric reset for doc1, got %v", metrics.deletes)
	}
	if len(index.deletes) != 1 || index.deletes[0] != "doc1" {
		t.Errorf("expected one vector reset for doc1, got %v", index.deletes)
	}

	if got := metrics.sets[document.MetricRevenue]; got != 29493.8 {
		t.Errorf("expected revenue 29493.8, got %v", got)
	}
	if got := metrics.sets[document.MetricProfitAfterTax]; got != 2110.5 {
		t.Errorf("expected pat 2110.5, got %v", got)
	}
	if len(index.added) == 0 {
		t.Error("expected chunks indexed")
	}

	snap := job.Snapshot()
	if snap.Progress.Chunks != len(index.added) {
		t.Errorf("progress chunks %d != indexed %d", snap.Progress.Chunks, len(index.added))
	}
	if len(snap.Progress.Sections) == 0 {
		t.Error("expected per-section page counts recorded")
	}
}

func TestWorker_DuplicateContentSkipped(t *testing.T) {
	metrics := &fakeMetricWriter{}
	index := &fakeIndexer{}
	hashes := NewHashIndex()
	w := newTestWorker(metrics, index, hashes)

	first := newTestJob("j1", "doc1", "rhp.txt", sampleProspectus)
	w.Process(context.Background(), first)
	if first.Status != StatusCompleted {
		t.Fatalf("first ingest: %s", first.Status)
	}

	second := newTestJob("j2", "doc1", "rhp.txt", sampleProspectus)
	w.Process(context.Background(), second)
	if second.Status != StatusDupSkipped {
		t.Fatalf("expected duplicate_skipped, got %s", second.Status)
	}
	if len(metrics.deletes) != 1 {
		t.Errorf("duplicate run must not touch the metric store, got %d resets", len(metrics.deletes))
	}
}

func TestWorker_SameDocNewContentReingested(t *testing.T) {
	metrics := &fakeMetricWriter{}
	index := &fakeIndexer{}
	w := newTestWorker(metrics, index, NewHashIndex())

	w.Process(context.Background(), newTestJob("j1", "doc1", "rhp.txt", sampleProspectus))
	updated := sampleProspectus + "\nTotal Borrowings 512.0\n"
	job := newTestJob("j2", "doc1", "rhp.txt", updated)
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected re-ingest to complete, got %s", job.Status)
	}
	if len(index.deletes) != 2 {
		t.Errorf("expected vector reset on re-ingest, got %d resets", len(index.deletes))
	}
}

func TestWorker_UnsupportedFormatFails(t *testing.T) {
	w := newTestWorker(&fakeMetricWriter{}, &fakeIndexer{}, NewHashIndex())
	job := newTestJob("j1", "doc1", "rhp.xlsx", "data")
	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
}

func TestWorker_EmptyDocumentFails(t *testing.T) {
	w := newTestWorker(&fakeMetricWriter{}, &fakeIndexer{}, NewHashIndex())
	job := newTestJob("j1", "doc1", "rhp.txt", "")
	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected failed on empty document, got %s", job.Status)
	}
}

func TestWorker_MetricWriteFailureFailsJob(t *testing.T) {
	metrics := &fakeMetricWriter{setErr: errors.New("db locked")}
	w := newTestWorker(metrics, &fakeIndexer{}, NewHashIndex())
	job := newTestJob("j1", "doc1", "rhp.txt", sampleProspectus)
	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if len(job.Snapshot().Progress.Errors) == 0 {
		t.Error("expected recorded error")
	}
}
