package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusSegmenting JobStatus = "segmenting"
	StatusChunking   JobStatus = "chunking"
	StatusExtracting JobStatus = "extracting"
	StatusIndexing   JobStatus = "indexing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single document ingestion.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Pages        int            `json:"pages"`
	Chunks       int            `json:"chunks"`
	MetricsFound int            `json:"metrics_found"`
	Sections     map[string]int `json:"sections,omitempty"`
	Errors       []string       `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// GetByDoc returns the most recently updated job for a document, or nil.
func (s *JobStore) GetByDoc(docID string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *Job
	for _, job := range s.jobs {
		if job.DocID != docID {
			continue
		}
		if latest == nil || job.UpdatedAt.After(latest.UpdatedAt) {
			latest = job
		}
	}
	return latest
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetCounts records page, chunk and metric counts.
func (j *Job) SetCounts(pages, chunks, metrics int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if pages >= 0 {
		j.Progress.Pages = pages
	}
	if chunks >= 0 {
		j.Progress.Chunks = chunks
	}
	if metrics >= 0 {
		j.Progress.MetricsFound = metrics
	}
	j.UpdatedAt = time.Now()
}

// SetSections records how many pages landed in each section.
func (j *Job) SetSections(counts map[string]int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Sections = counts
	j.UpdatedAt = time.Now()
}

// SetContentHash records the content hash of the parsed document.
func (j *Job) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// clearFileData drops the upload bytes once processing is over.
func (j *Job) clearFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	DocID    string    `json:"doc_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		DocID:    j.DocID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			Pages:        j.Progress.Pages,
			Chunks:       j.Progress.Chunks,
			MetricsFound: j.Progress.MetricsFound,
			Sections:     j.Progress.Sections,
			Errors:       errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// HashIndex remembers which content hash each document was last ingested
// with, so re-uploading identical bytes can be skipped.
type HashIndex struct {
	mu     sync.Mutex
	byDoc  map[string]string
	byHash map[string]string
}

func NewHashIndex() *HashIndex {
	return &HashIndex{
		byDoc:  make(map[string]string),
		byHash: make(map[string]string),
	}
}

// Seen reports whether this exact content is already ingested under docID.
func (h *HashIndex) Seen(docID, hash string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.byDoc[docID] == hash
}

// Record stores the hash for a completed ingestion, replacing any prior
// content for the same document.
func (h *HashIndex) Record(docID, hash string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byDoc[docID] = hash
	h.byHash[hash] = docID
}
