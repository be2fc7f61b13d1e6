package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/finlens/ipoagent/internal/document"
)

// Embedder turns text into vectors for indexing and querying.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	EmbedOne(ctx context.Context, text string) ([]float64, error)
}

// pointNamespace derives stable UUIDs from doc and chunk IDs, so
// re-ingesting a document overwrites its points instead of duplicating them.
var pointNamespace = uuid.MustParse("9f2c1d84-55a1-4b6e-9c7d-3f08a2e6b914")

// embedBatchSize bounds one embeddings request during indexing.
const embedBatchSize = 64

// Qdrant is a minimal REST client to a Qdrant collection holding prospectus
// chunks. Payloads carry doc_id, section, page, and source as strings for
// equality filtering.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	embedder   Embedder
	httpClient *http.Client
}

func NewQdrant(url, apiKey, collection string, dimension int, embedder Embedder) *Qdrant {
	return &Qdrant{
		url:        url,
		apiKey:     apiKey,
		collection: collection,
		dimension:  dimension,
		embedder:   embedder,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// EnsureCollection creates the collection if missing. Qdrant answers 200 for
// an existing collection with the same schema.
func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": "Cosine",
		},
	}
	return q.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", q.url, q.collection), body, nil)
}

// DeleteDocument removes every point belonging to docID. Used before
// re-ingesting so stale chunks cannot answer for a re-uploaded document.
func (q *Qdrant) DeleteDocument(ctx context.Context, docID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "doc_id", "match": map[string]any{"value": docID}},
			},
		},
	}
	return q.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/delete?wait=true", q.url, q.collection), body, nil)
}

// Add embeds and upserts the chunks under docID.
func (q *Qdrant) Add(ctx context.Context, docID string, chunks []document.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := q.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}

		points := make([]map[string]any, len(batch))
		for i, c := range batch {
			points[i] = map[string]any{
				"id":     uuid.NewSHA1(pointNamespace, []byte(docID+"/"+c.ID)).String(),
				"vector": vectors[i],
				"payload": map[string]any{
					"doc_id":   docID,
					"chunk_id": c.ID,
					"text":     c.Text,
					"section":  string(c.Section),
					"page":     strconv.Itoa(c.Page),
					"source":   c.Source,
				},
			}
		}
		body := map[string]any{"points": points}
		url := fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection)
		if err := q.doJSON(ctx, http.MethodPut, url, body, nil); err != nil {
			return fmt.Errorf("upsert points: %w", err)
		}
	}
	return nil
}

// Query runs a similarity search over docID's chunks, optionally restricted
// to one section. Results come back most relevant first.
func (q *Qdrant) Query(ctx context.Context, docID, text string, k int, section document.Section) ([]document.SearchResult, error) {
	if k <= 0 {
		k = 5
	}
	vector, err := q.embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	must := []map[string]any{
		{"key": "doc_id", "match": map[string]any{"value": docID}},
	}
	if section != "" {
		must = append(must, map[string]any{
			"key": "section", "match": map[string]any{"value": string(section)},
		})
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
		"filter":       map[string]any{"must": must},
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.doJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}

	results := make([]document.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		sr := document.SearchResult{Score: r.Score}
		if v, ok := r.Payload["text"].(string); ok {
			sr.Text = v
		}
		if v, ok := r.Payload["section"].(string); ok {
			sr.Section = document.Section(v)
		}
		if v, ok := r.Payload["page"].(string); ok {
			if n, err := strconv.Atoi(v); err == nil {
				sr.Page = n
			}
		}
		results = append(results, sr)
	}
	return results, nil
}

func (q *Qdrant) doJSON(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Close releases resources.
func (q *Qdrant) Close() {
	q.httpClient.CloseIdleConnections()
}
