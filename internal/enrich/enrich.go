// Package enrich asks a language model for file and symbol summaries. The
// output is strictly additive metadata: a failed or malformed response means
// the file proceeds through the pipeline unenriched, never that the run
// fails.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// Enricher produces optional semantic summaries for one file.
type Enricher interface {
	Enrich(ctx context.Context, path string, source []byte, facts graph.StructuralFacts) (*graph.Enrichment, error)
}

// Options configure the OpenAI-compatible client. Endpoint may point at any
// /v1-compatible server; with Ollama that is http://localhost:11434/v1.
type Options struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	Retries  int
}

const (
	defaultModel   = "qwen2.5-coder"
	defaultTimeout = 60 * time.Second
)

// OpenAI implements Enricher against any OpenAI-compatible chat endpoint.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	retries int
	log     *slog.Logger
}

func NewOpenAI(opts Options, log *slog.Logger) *OpenAI {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.Endpoint != "" {
		cfg.BaseURL = opts.Endpoint
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		retries: opts.Retries,
		log:     log,
	}
}

const systemPrompt = `You are a code analyst. Given a source file and its statically extracted symbols, respond with ONLY a JSON object of the shape:
{"file_summary": "<one or two sentences on the file's purpose>", "symbol_summaries": [{"name": "<symbol name>", "summary": "<one sentence>"}]}
Use only symbol names that appear in the provided symbol list. No prose outside the JSON.`

// Enrich requests summaries for path. The response must conform to the
// enrichment schema; anything else is an error the caller records as a
// warning and treats as absent enrichment.
func (o *OpenAI) Enrich(ctx context.Context, path string, source []byte, facts graph.StructuralFacts) (*graph.Enrichment, error) {
	prompt := buildPrompt(path, source, facts)

	var lastErr error
	for attempt := 0; attempt <= o.retries; attempt++ {
		if attempt > 0 {
			o.log.Debug("retrying enrichment", "path", path, "attempt", attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		raw, err := o.complete(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		enr, err := parseEnrichment(raw)
		if err != nil {
			lastErr = fmt.Errorf("%s: malformed enrichment response: %w", path, err)
			continue
		}
		return enr, nil
	}
	return nil, lastErr
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildPrompt(path string, source []byte, facts graph.StructuralFacts) string {
	var names []string
	for _, s := range facts.Symbols {
		names = append(names, fmt.Sprintf("%s (%s)", s.Name, s.Kind))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s (%s)\n", path, facts.Language)
	fmt.Fprintf(&b, "Symbols: %s\n\n", strings.Join(names, ", "))
	b.WriteString("Source:\n```\n")
	b.Write(source)
	b.WriteString("\n```\n")
	return b.String()
}

// enrichmentWire is the response schema the model is instructed to emit.
type enrichmentWire struct {
	FileSummary     string `json:"file_summary"`
	SymbolSummaries []struct {
		Name    string `json:"name"`
		Summary string `json:"summary"`
	} `json:"symbol_summaries"`
}

// parseEnrichment validates a model response against the enrichment schema.
// Local models wrap JSON in markdown fences often enough that we strip them
// first; everything past that must decode cleanly.
func parseEnrichment(raw string) (*graph.Enrichment, error) {
	raw = stripFences(raw)

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	var wire enrichmentWire
	if err := dec.Decode(&wire); err != nil {
		return nil, err
	}

	if strings.TrimSpace(wire.FileSummary) == "" {
		return nil, fmt.Errorf("missing file_summary")
	}
	enr := &graph.Enrichment{FileSummary: wire.FileSummary}
	for _, s := range wire.SymbolSummaries {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Summary) == "" {
			return nil, fmt.Errorf("symbol summary with empty name or summary")
		}
		enr.SymbolSummaries = append(enr.SymbolSummaries, graph.SymbolSummary{
			Name: s.Name, Summary: s.Summary,
		})
	}
	return enr, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
