package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/healthhub/ai/mock"
	"github.com/poiesic/healthhub/core"
	"github.com/poiesic/healthhub/index"
	"github.com/poiesic/healthhub/index/badgerstore"
	"github.com/poiesic/healthhub/ingestion"
	"github.com/poiesic/healthhub/rag"
	"github.com/poiesic/healthhub/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const membersCSV = `member_id,first_name,last_name,dob,status,plan_type
WHP100001,Jane,Doe,1984-03-12,active,Gold PPO
WHP100002,John,Smith,1979-11-02,inactive,Silver HMO
`

const drugsJSON = `{
  "drugs": [
    {"drug_name": "Metformin", "formulary": "standard", "tier": 1},
    {"drug_name": "Lisinopril", "formulary": "standard", "tier": 1},
    {"drug_name": "Humira", "formulary": "specialty", "tier": 4}
  ]
}`

type testServer struct {
	server *Server
	client *index.Client
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()

	dir := t.TempDir()
	memberPath := filepath.Join(dir, "member_eligibility.csv")
	drugPath := filepath.Join(dir, "fda_drug_database.json")
	require.NoError(t, os.WriteFile(memberPath, []byte(membersCSV), 0o644))
	require.NoError(t, os.WriteFile(drugPath, []byte(drugsJSON), 0o644))

	sources := []source.Config{
		{Filepath: memberPath, Format: source.FormatTable, RequiredColumns: []string{"member_id", "status"}},
		{Filepath: drugPath, Format: source.FormatKeyed, RequiredKeys: []string{"drugs"}},
	}

	pipeline, err := ingestion.NewPipeline(sources)
	require.NoError(t, err)

	store, err := badgerstore.Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8

	client, err := index.NewClient(store, embedder,
		index.WithPacingInterval(0),
		index.WithDimension(8),
		index.WithRetryBaseDelay(time.Millisecond),
	)
	require.NoError(t, err)

	generator := mock.NewMockGenerator()
	engine, err := rag.NewEngine(client, generator)
	require.NoError(t, err)

	srv, err := New(engine, client, pipeline, sources, opts...)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &testServer{server: srv, client: client}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, req)
	return rec
}

func seedIndex(t *testing.T, client *index.Client) {
	t.Helper()

	_, err := client.Upsert(context.Background(), []core.Document{
		{
			ID:   "fda_drug_database_metformin",
			Text: "Drug Name: Metformin. Tier: 1",
			Meta: core.DocumentMeta{
				Source:         "fda_drug_database.json",
				Domain:         core.DomainPharmacy,
				SourceType:     core.SourceTypeExternal,
				Classification: core.ClassificationPublic,
				Timestamp:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	})
	require.NoError(t, err)
}

func TestQueryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedIndex(t, ts.client)

	rec := ts.do(t, http.MethodPost, "/api/query", map[string]any{
		"question": "Is metformin covered?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Is metformin covered?", res.Question)
	assert.NotEmpty(t, res.Answer)
	assert.Len(t, res.Sources, 1)
	assert.Empty(t, res.DomainsSearched)
	assert.GreaterOrEqual(t, res.QueryTimeSeconds, 0.0)
}

func TestQueryEndpointWithFilter(t *testing.T) {
	ts := newTestServer(t)
	seedIndex(t, ts.client)

	rec := ts.do(t, http.MethodPost, "/api/query", map[string]any{
		"question":      "Is metformin covered?",
		"domain_filter": "pharmacy",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"pharmacy"}, res.DomainsSearched)
}

func TestQueryEndpointValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/query", map[string]any{"question": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader([]byte("{not json")))
	out := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)

	rec = ts.do(t, http.MethodPost, "/api/query", map[string]any{
		"question":      "Is metformin covered?",
		"domain_filter": "astrology",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown domain filter")
}

func TestExampleQueriesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/example-queries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res["queries"], 5)
}

func TestSourcesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res map[string][]sourceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res["sources"], 2)

	byID := map[string]sourceInfo{}
	for _, info := range res["sources"] {
		byID[info.ID] = info
	}

	members := byID["member_eligibility"]
	assert.True(t, members.Available)
	assert.Equal(t, 2, members.RecordCount)

	drugs := byID["fda_drug_database"]
	assert.True(t, drugs.Available)
	assert.Equal(t, 3, drugs.RecordCount)
}

func TestSourcePreviewRedactsPII(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/sources/member_eligibility/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res previewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	assert.Equal(t, "eligibility", res.Domain)
	assert.Equal(t, string(core.ClassificationPII), res.Classification)
	assert.True(t, res.Redacted)
	assert.Equal(t, 2, res.TotalRecords)
	require.Len(t, res.Records, 2)

	for _, record := range res.Records {
		assert.Equal(t, redactedValue, record["first_name"])
		assert.Equal(t, redactedValue, record["last_name"])
		assert.Equal(t, redactedValue, record["dob"])
		assert.NotEqual(t, redactedValue, record["member_id"])
	}
}

func TestSourcePreviewPublicSource(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/sources/fda_drug_database/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res previewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	assert.Equal(t, "pharmacy", res.Domain)
	assert.False(t, res.Redacted)
	assert.Equal(t, 3, res.TotalRecords)
	assert.Equal(t, "Metformin", res.Records[0]["drug_name"])
}

func TestSourcePreviewUnknownSource(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/sources/../etc/passwd/preview", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/sources/nope/preview", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedIndex(t, ts.client)

	rec := ts.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats index.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalVectorCount)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedIndex(t, ts.client)

	rec := ts.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, 1, res.VectorCount)
}

func TestReindexEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/reindex", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	assert.Eventually(t, func() bool {
		stats, err := ts.client.Stats(context.Background())
		return err == nil && stats.TotalVectorCount > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, WithRateLimit(2, time.Minute))

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodGet, "/api/example-queries", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/example-queries", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Preflight requests are never throttled.
	rec = ts.do(t, http.MethodOptions, "/api/example-queries", nil)
	assert.NotEqual(t, http.StatusTooManyRequests, rec.Code)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "member_eligibility", sanitizeID("member_eligibility"))
	assert.Equal(t, "etcpasswd", sanitizeID("../etc/passwd"))

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, sanitizeID(string(long)), 50)
}
