package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil || s.chat.Stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": s.chat.Model(),
		"stats": s.chat.Stats.Snapshot(),
	})
}

func (s *Server) handleDocumentStats(w http.ResponseWriter, r *http.Request) {
	docID := strings.TrimSpace(r.URL.Query().Get("doc_id"))
	if docID == "" {
		jsonError(w, "doc_id query parameter is required", http.StatusBadRequest)
		return
	}

	metrics, err := s.metrics.GetAll(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to read metrics: "+err.Error(), http.StatusInternalServerError)
		return
	}

	payload := map[string]any{
		"doc_id":      docID,
		"metrics":     metrics,
		"queue_depth": s.orchestrator.QueueDepth(),
	}
	// Section and chunk counts live on the last ingestion job, while the
	// job store still remembers it.
	if job := s.orchestrator.GetJobByDoc(docID); job != nil {
		payload["ingest"] = job.Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
