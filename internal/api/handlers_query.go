package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type queryRequest struct {
	DocID string `json:"doc_id"`
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.DocID = strings.TrimSpace(req.DocID)
	req.Query = strings.TrimSpace(req.Query)
	if req.DocID == "" {
		jsonError(w, "doc_id is required", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}

	answer := s.dispatcher.Process(r.Context(), req.DocID, req.Query)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"doc_id": req.DocID,
		"answer": answer,
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	docID := strings.TrimSpace(r.URL.Query().Get("doc_id"))
	if docID == "" {
		jsonError(w, "doc_id query parameter is required", http.StatusBadRequest)
		return
	}

	trend := s.trends.Trend(r.Context(), docID)
	if trend == nil {
		jsonError(w, "no trend data available for this document", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id": docID,
		"trend":  trend,
	})
}
