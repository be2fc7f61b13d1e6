package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finlens/ipoagent/internal/agent"
	"github.com/finlens/ipoagent/internal/config"
	"github.com/finlens/ipoagent/internal/document"
	"github.com/finlens/ipoagent/internal/pipeline"
)

const testAPIKey = "test-key"

type fakeDispatcher struct {
	answer   string
	lastDoc  string
	lastText string
}

func (f *fakeDispatcher) Process(_ context.Context, docID, query string) string {
	f.lastDoc = docID
	f.lastText = query
	return f.answer
}

type fakeTrends struct {
	trend *agent.TrendData
}

func (f *fakeTrends) Trend(_ context.Context, _ string) *agent.TrendData {
	return f.trend
}

type fakeMetricStore struct {
	metrics map[document.MetricKey]float64
}

func (f *fakeMetricStore) GetAll(_ context.Context, _ string) (map[document.MetricKey]float64, error) {
	return f.metrics, nil
}

type nopMetricWriter struct{}

func (nopMetricWriter) DeleteDocument(context.Context, string) error { return nil }
func (nopMetricWriter) Set(context.Context, string, document.MetricKey, float64) error {
	return nil
}

type nopIndexer struct{}

func (nopIndexer) DeleteDocument(context.Context, string) error        { return nil }
func (nopIndexer) Add(context.Context, string, []document.Chunk) error { return nil }

func newTestServer(t *testing.T, dispatcher QueryProcessor, trends TrendProvider, metrics MetricStore) *Server {
	t.Helper()
	cfg := config.Config{
		ServiceAPIKey:  testAPIKey,
		MaxUploadBytes: 1 << 20,
		MaxQueueSize:   10,
		JobTTL:         time.Hour,
	}
	log := slog.New(slog.DiscardHandler)
	orch := pipeline.NewOrchestrator(cfg, nopMetricWriter{}, nopIndexer{}, log)
	return NewServer(orch, dispatcher, trends, metrics, nil, log, cfg)
}

func authedRequest(method, target string, body *bytes.Buffer) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestServer_HealthIsPublic(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{}, &fakeMetricStore{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServer_AuthRequired(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{}, &fakeMetricStore{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without bearer token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer wrong-key")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("auth rejections should be JSON, got Content-Type %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Errorf("expected JSON error body, got %q", rec.Body.String())
	}
}

func TestServer_IngestAndStatus(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{}, &fakeMetricStore{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "rhp.txt")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("RISK FACTORS\n\nSome risk text."))
	mw.WriteField("doc_id", "ipo-acme")
	mw.Close()

	req := authedRequest(http.MethodPost, "/api/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["doc_id"] != "ipo-acme" {
		t.Errorf("expected doc_id ipo-acme, got %v", resp["doc_id"])
	}
	jobID, _ := resp["job_id"].(string)
	if jobID == "" {
		t.Fatal("expected a job_id")
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/ingest/"+jobID+"/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for status, got %d", rec.Code)
	}
	var status map[string]any
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status["status"] != string(pipeline.StatusQueued) {
		t.Errorf("expected queued (workers not started), got %v", status["status"])
	}
}

func TestServer_IngestRejectsUnsupportedType(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{}, &fakeMetricStore{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "rhp.xlsx")
	fw.Write([]byte("data"))
	mw.Close()

	req := authedRequest(http.MethodPost, "/api/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServer_StatusUnknownJob(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{}, &fakeMetricStore{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/ingest/nope/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServer_Query(t *testing.T) {
	d := &fakeDispatcher{answer: "Revenue grew (Page 12)."}
	s := newTestServer(t, d, &fakeTrends{}, &fakeMetricStore{})

	body := bytes.NewBufferString(`{"doc_id":"ipo-acme","query":"how is revenue?"}`)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/query", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["answer"] != "Revenue grew (Page 12)." {
		t.Errorf("unexpected answer %q", resp["answer"])
	}
	if d.lastDoc != "ipo-acme" || d.lastText != "how is revenue?" {
		t.Errorf("dispatcher got doc=%q query=%q", d.lastDoc, d.lastText)
	}
}

func TestServer_QueryValidation(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{}, &fakeMetricStore{})

	cases := []string{
		`{"query":"hello"}`,
		`{"doc_id":"d1"}`,
		`{"doc_id":"  ","query":"q"}`,
		`not json`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/query", bytes.NewBufferString(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestServer_Trend(t *testing.T) {
	trend := &agent.TrendData{
		Years: []string{"FY23", "FY24"},
		Data:  map[string][]float64{"Revenue": {100, 150}},
	}
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{trend: trend}, &fakeMetricStore{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/trend?doc_id=ipo-acme", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "FY24") {
		t.Errorf("expected trend payload, got %s", rec.Body.String())
	}
}

func TestServer_TrendUnavailable(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{}, &fakeMetricStore{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/trend?doc_id=ipo-acme", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no trend, got %d", rec.Code)
	}
}

func TestServer_DocumentStats(t *testing.T) {
	metrics := &fakeMetricStore{metrics: map[document.MetricKey]float64{
		document.MetricRevenue: 29493.8,
	}}
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{}, metrics)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/stats/document?doc_id=ipo-acme", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "29493.8") {
		t.Errorf("expected metrics in payload, got %s", rec.Body.String())
	}
}

func TestServer_LLMStatsUnavailableWithoutClient(t *testing.T) {
	s := newTestServer(t, &fakeDispatcher{}, &fakeTrends{}, &fakeMetricStore{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/stats/llm", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without llm client, got %d", rec.Code)
	}
}
