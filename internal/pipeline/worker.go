package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/finlens/ipoagent/internal/chunker"
	"github.com/finlens/ipoagent/internal/document"
	"github.com/finlens/ipoagent/internal/extract"
	"github.com/finlens/ipoagent/internal/parser"
	"github.com/finlens/ipoagent/internal/segment"
)

// MetricWriter persists extracted metrics for a document.
type MetricWriter interface {
	DeleteDocument(ctx context.Context, docID string) error
	Set(ctx context.Context, docID string, key document.MetricKey, value float64) error
}

// VectorIndexer stores chunk embeddings for a document.
type VectorIndexer interface {
	DeleteDocument(ctx context.Context, docID string) error
	Add(ctx context.Context, docID string, chunks []document.Chunk) error
}

// Worker processes a single document job. Phases run sequentially; a
// re-ingested document fully replaces its earlier vectors and metrics
// before anything new is written.
type Worker struct {
	metrics      MetricWriter
	index        VectorIndexer
	hashes       *HashIndex
	log          *slog.Logger
	chunkCfg     chunker.Config
	headerWindow int
	parserOpts   parser.Options
}

func NewWorker(metrics MetricWriter, index VectorIndexer, hashes *HashIndex, log *slog.Logger, chunkCfg chunker.Config, headerWindow int, parserOpts parser.Options) *Worker {
	return &Worker{
		metrics:      metrics,
		index:        index,
		hashes:       hashes,
		log:          log,
		chunkCfg:     chunkCfg,
		headerWindow: headerWindow,
		parserOpts:   parserOpts,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	defer job.clearFileData()
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	pages, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if len(pages) == 0 {
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetCounts(len(pages), -1, -1)

	// Dedup on parsed text so byte-level noise in the container format
	// does not defeat the check.
	hash := ContentHashHex([]byte(flattenPages(pages)))
	job.SetContentHash(hash)
	if w.hashes.Seen(job.DocID, hash) {
		log.Info("identical content already ingested, skipping")
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Segment
	job.SetStatus(StatusSegmenting, "segmenting")
	seg := segment.NewSegmenter(segment.NewClassifier(), w.headerWindow)
	tagged := seg.Segment(pages, job.Filename)

	sections := make(map[string]int)
	for _, p := range tagged {
		sections[string(p.Section)]++
	}
	job.SetSections(sections)

	// Phase 3: Chunk
	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.ChunkPages(tagged, w.chunkCfg)
	job.SetCounts(-1, len(chunks), -1)
	log.Info("chunked document", "pages", len(pages), "chunks", len(chunks))

	if len(chunks) == 0 {
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	// Phase 4: Extract metrics
	job.SetStatus(StatusExtracting, "extracting")
	metrics := extract.NewExtractor().Extract(chunks)
	job.SetCounts(-1, -1, len(metrics))
	log.Info("metrics extracted", "count", len(metrics))

	// Phase 5: Index. Replacing an earlier version of the same document
	// starts with a full reset of its stored state.
	job.SetStatus(StatusIndexing, "indexing")
	if err := w.metrics.DeleteDocument(ctx, job.DocID); err != nil {
		log.Error("metric reset failed", "error", err)
		job.AddError(fmt.Sprintf("metric reset: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return
	}
	if err := w.index.DeleteDocument(ctx, job.DocID); err != nil {
		log.Error("vector reset failed", "error", err)
		job.AddError(fmt.Sprintf("vector reset: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return
	}

	for _, key := range document.MetricKeys {
		v, ok := metrics[key]
		if !ok {
			continue
		}
		if err := w.metrics.Set(ctx, job.DocID, key, v); err != nil {
			log.Error("metric write failed", "metric", key, "error", err)
			job.AddError(fmt.Sprintf("metric %s: %s", key, err))
			job.SetStatus(StatusFailed, "indexing")
			return
		}
	}

	if err := w.index.Add(ctx, job.DocID, chunks); err != nil {
		log.Error("vector index failed", "error", err)
		job.AddError(fmt.Sprintf("index: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return
	}

	w.hashes.Record(job.DocID, hash)
	job.SetStatus(StatusCompleted, "done")
	log.Info("ingestion complete", "chunks", len(chunks), "metrics", len(metrics))
}

// flattenPages joins page text for content hashing.
func flattenPages(pages []document.RawPage) string {
	var sb bytes.Buffer
	for _, p := range pages {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}
