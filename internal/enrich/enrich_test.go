package enrich

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// chatStub serves an OpenAI-compatible /chat/completions endpoint returning
// canned message contents in order, one per request.
func chatStub(t *testing.T, contents ...string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() { calls++ }()
		io.Copy(io.Discard, r.Body)

		content := contents[len(contents)-1]
		if calls < len(contents) {
			content = contents[calls]
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testEnricher(srv *httptest.Server, retries int) *OpenAI {
	return NewOpenAI(Options{
		Endpoint: srv.URL + "/v1",
		APIKey:   "test",
		Model:    "test-model",
		Timeout:  5 * time.Second,
		Retries:  retries,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleFacts() graph.StructuralFacts {
	return graph.StructuralFacts{
		Language: graph.LangPython,
		Symbols: []graph.Symbol{
			{Name: "load_user", Kind: graph.SymbolKindFunction},
		},
	}
}

func TestEnrich_WellFormedResponse(t *testing.T) {
	srv, _ := chatStub(t, `{"file_summary": "Loads users from JSON.", "symbol_summaries": [{"name": "load_user", "summary": "Parses a user record."}]}`)
	e := testEnricher(srv, 0)

	enr, err := e.Enrich(context.Background(), "service.py", []byte("def load_user(raw): ..."), sampleFacts())
	require.NoError(t, err)
	require.NotNil(t, enr)
	assert.Equal(t, "Loads users from JSON.", enr.FileSummary)
	require.Len(t, enr.SymbolSummaries, 1)
	assert.Equal(t, "load_user", enr.SymbolSummaries[0].Name)
}

func TestEnrich_MalformedThenValid(t *testing.T) {
	srv, calls := chatStub(t,
		"here is your analysis: it loads users",
		`{"file_summary": "Loads users.", "symbol_summaries": []}`,
	)
	e := testEnricher(srv, 2)

	enr, err := e.Enrich(context.Background(), "service.py", nil, sampleFacts())
	require.NoError(t, err)
	assert.Equal(t, "Loads users.", enr.FileSummary)
	assert.Equal(t, 2, *calls, "first malformed response should trigger one retry")
}

func TestEnrich_ExhaustedRetries(t *testing.T) {
	srv, calls := chatStub(t, "not json at all")
	e := testEnricher(srv, 1)

	enr, err := e.Enrich(context.Background(), "service.py", nil, sampleFacts())
	require.Error(t, err)
	assert.Nil(t, enr)
	assert.Equal(t, 2, *calls)
}

func TestEnrich_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	e := testEnricher(srv, 0)

	_, err := e.Enrich(context.Background(), "service.py", nil, sampleFacts())
	require.Error(t, err)
}

func TestParseEnrichment(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		summary string
	}{
		{
			name:    "plain object",
			raw:     `{"file_summary": "A parser.", "symbol_summaries": []}`,
			summary: "A parser.",
		},
		{
			name:    "fenced json",
			raw:     "```json\n{\"file_summary\": \"A parser.\"}\n```",
			summary: "A parser.",
		},
		{
			name:    "missing file summary",
			raw:     `{"symbol_summaries": [{"name": "x", "summary": "y"}]}`,
			wantErr: true,
		},
		{
			name:    "empty symbol name",
			raw:     `{"file_summary": "ok", "symbol_summaries": [{"name": "", "summary": "y"}]}`,
			wantErr: true,
		},
		{
			name:    "unknown field",
			raw:     `{"file_summary": "ok", "confidence": 0.9}`,
			wantErr: true,
		},
		{
			name:    "prose, not json",
			raw:     "This file implements a parser.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enr, err := parseEnrichment(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.summary, enr.FileSummary)
		})
	}
}

func TestEnrich_ContextCancelled(t *testing.T) {
	srv, _ := chatStub(t, "garbage")
	e := testEnricher(srv, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Enrich(ctx, "service.py", nil, sampleFacts())
	require.Error(t, err)
}
