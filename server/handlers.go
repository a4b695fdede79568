// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/healthhub/core"
	"github.com/poiesic/healthhub/index"
	"github.com/poiesic/healthhub/rag"
	"github.com/poiesic/healthhub/source"
	"github.com/poiesic/healthhub/taxonomy"
)

type queryRequest struct {
	Question             string `json:"question"`
	TopK                 int    `json:"top_k"`
	DomainFilter         string `json:"domain_filter"`
	SourceTypeFilter     string `json:"source_type_filter"`
	ClassificationFilter string `json:"classification_filter"`
}

type queryResponse struct {
	Question         string       `json:"question"`
	Answer           string       `json:"answer"`
	Sources          []rag.Source `json:"sources"`
	DomainsSearched  []string     `json:"domains_searched"`
	QueryTimeSeconds float64      `json:"query_time_seconds"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	filter := index.Metadata{}
	if req.DomainFilter != "" {
		if err := core.ValidateDomain(core.Domain(req.DomainFilter)); err != nil {
			writeError(w, http.StatusBadRequest, "unknown domain filter: "+req.DomainFilter)
			return
		}
		filter["domain"] = req.DomainFilter
	}
	if req.SourceTypeFilter != "" {
		filter["source_type"] = req.SourceTypeFilter
	}
	if req.ClassificationFilter != "" {
		filter["data_classification"] = req.ClassificationFilter
	}

	opts := []rag.QueryOption{rag.WithTopK(req.TopK)}
	if len(filter) > 0 {
		opts = append(opts, rag.WithFilter(filter))
	}

	start := time.Now()
	result, err := s.engine.Answer(r.Context(), req.Question, opts...)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "question must not be empty")
			return
		}
		s.logger.Error("query failed", "err", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Question:         result.Question,
		Answer:           result.Answer,
		Sources:          result.Sources,
		DomainsSearched:  result.DomainsSearched,
		QueryTimeSeconds: time.Since(start).Seconds(),
	})
}

func (s *Server) handleExampleQueries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"queries": rag.ExampleQueries()})
}

type sourceInfo struct {
	ID          string `json:"id"`
	Filepath    string `json:"filepath"`
	Format      string `json:"format"`
	Available   bool   `json:"available"`
	RecordCount int    `json:"record_count"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	infos := make([]sourceInfo, 0, len(s.sources))
	for _, cfg := range s.sources {
		info := sourceInfo{
			ID:       sourceID(cfg.Filepath),
			Filepath: cfg.Filepath,
			Format:   string(cfg.Format),
		}
		if parsed, err := source.Load(cfg); err == nil {
			info.Available = true
			_, info.RecordCount = previewRecords(parsed, 0)
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, map[string][]sourceInfo{"sources": infos})
}

type previewResponse struct {
	ID             string           `json:"id"`
	Domain         string           `json:"domain"`
	Classification string           `json:"classification"`
	TotalRecords   int              `json:"total_records"`
	Records        []map[string]any `json:"records"`
	Redacted       bool             `json:"redacted"`
}

func (s *Server) handleSourcePreview(w http.ResponseWriter, r *http.Request) {
	id := sanitizeID(chi.URLParam(r, "id"))

	cfg, ok := s.findSource(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown source")
		return
	}

	parsed, err := source.Load(cfg)
	if err != nil {
		s.logger.Error("failed to load source for preview", "source", cfg.Filepath, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load source")
		return
	}

	records, total := previewRecords(parsed, previewLimit)

	sample, _ := json.Marshal(records)
	domain, _ := taxonomy.DetectDomain(string(sample))
	classification := core.ClassificationFor(domain)

	redacted := false
	if classification == core.ClassificationPII {
		for i, record := range records {
			records[i] = redactRecord(record)
		}
		redacted = true
	}

	writeJSON(w, http.StatusOK, previewResponse{
		ID:             id,
		Domain:         string(domain),
		Classification: string(classification),
		TotalRecords:   total,
		Records:        records,
		Redacted:       redacted,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.client.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to read index stats", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read index stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type healthResponse struct {
	Status      string `json:"status"`
	Index       string `json:"index"`
	VectorCount int    `json:"vector_count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{Status: "ok", Index: "ok"}

	stats, err := s.client.Stats(r.Context())
	if err != nil {
		res.Status = "degraded"
		res.Index = err.Error()
	} else {
		res.VectorCount = stats.TotalVectorCount
	}

	status := http.StatusOK
	if res.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	err := s.pool.Submit(func() {
		ctx := context.Background()
		report := s.pipeline.ProcessAllSources(ctx)
		docs := s.pipeline.PrepareForVectorDB(report)
		if len(docs) == 0 {
			s.logger.Warn("reindex produced no documents")
			return
		}
		result, err := s.client.Upsert(ctx, docs)
		if err != nil {
			s.logger.Error("reindex upsert failed", "err", err)
			return
		}
		s.logger.Info("reindex complete",
			"documents", result.Total,
			"successful", result.Successful,
			"failed", result.Failed,
			"elapsed", result.Elapsed,
		)
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "reindex queue unavailable")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) findSource(id string) (source.Config, bool) {
	for _, cfg := range s.sources {
		if sourceID(cfg.Filepath) == id {
			return cfg, true
		}
	}
	return source.Config{}, false
}

var idCharset = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// sanitizeID strips everything outside [A-Za-z0-9_-] and caps length so
// URL parameters can never smuggle path segments.
func sanitizeID(raw string) string {
	id := idCharset.ReplaceAllString(raw, "")
	if len(id) > 50 {
		id = id[:50]
	}
	return id
}

// sourceID derives the stable identifier for a source from its filename.
func sourceID(path string) string {
	base := filepath.Base(path)
	return sanitizeID(strings.TrimSuffix(base, filepath.Ext(base)))
}

// previewRecords flattens a parsed source into generic records, returning
// at most limit of them plus the total count. A limit of 0 returns no
// records, only the count.
func previewRecords(parsed *source.ParsedSource, limit int) ([]map[string]any, int) {
	switch parsed.Kind {
	case source.KindTable:
		return tablePreview(parsed.Table, limit)
	case source.KindItems:
		return itemsPreview(parsed.Items, limit)
	case source.KindFeed:
		return feedPreview(parsed.Feed, limit)
	default:
		return nil, 0
	}
}

func tablePreview(tbl *source.Table, limit int) ([]map[string]any, int) {
	records := make([]map[string]any, 0, min(limit, len(tbl.Rows)))
	for i, row := range tbl.Rows {
		if i >= limit {
			break
		}
		record := make(map[string]any, len(tbl.Columns))
		for j, col := range tbl.Columns {
			if j < len(row) {
				record[col] = row[j]
			}
		}
		records = append(records, record)
	}
	return records, len(tbl.Rows)
}

// itemListKeys mirrors the ingestion pipeline's item extraction so
// previews show the same records that get indexed.
var itemListKeys = []string{"claims", "drugs", "providers", "items", "records"}

func itemsPreview(items map[string]any, limit int) ([]map[string]any, int) {
	for _, key := range itemListKeys {
		list, ok := items[key].([]any)
		if !ok {
			continue
		}
		records := make([]map[string]any, 0, min(limit, len(list)))
		for i, entry := range list {
			if i >= limit {
				break
			}
			if record, ok := entry.(map[string]any); ok {
				records = append(records, record)
			}
		}
		return records, len(list)
	}

	// No recognized item list; the whole document is one record.
	if limit > 0 {
		return []map[string]any{items}, 1
	}
	return nil, 1
}

func feedPreview(entries []source.FeedEntry, limit int) ([]map[string]any, int) {
	records := make([]map[string]any, 0, min(limit, len(entries)))
	for i, entry := range entries {
		if i >= limit {
			break
		}
		records = append(records, map[string]any{
			"title":       entry.Title,
			"link":        entry.Link,
			"published":   entry.Published,
			"description": entry.Description,
			"category":    entry.Category,
		})
	}
	return records, len(entries)
}
