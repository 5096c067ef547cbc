// Package ollama talks to a locally running Ollama daemon through its
// OpenAI-compatible API. Two logical calls are exposed: embed text(s)
// and generate a chat completion.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the OpenAI-compatible endpoint of a default local
// Ollama install.
const DefaultBaseURL = "http://localhost:11434/v1"

// Config configures the connection to the daemon.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func newAPI(cfg Config) *openai.Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	// Ollama ignores the API key, but the client requires a non-empty one.
	c := openai.DefaultConfig("ollama")
	c.BaseURL = cfg.BaseURL
	c.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return openai.NewClientWithConfig(c)
}

// Embedder produces embedding vectors with a fixed local model.
type Embedder struct {
	api   *openai.Client
	model string
}

// NewEmbedder creates an embedder bound to the given model name.
func NewEmbedder(cfg Config, model string) *Embedder {
	return &Embedder{api: newAPI(cfg), model: model}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string { return e.model }

// EmbedQuery embeds a single text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	resp, err := e.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}

// EmbedDocuments embeds a batch of texts, preserving input order.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedded %d of %d texts", len(resp.Data), len(texts))
	}
	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	vectors := make([][]float32, len(data))
	for i, d := range data {
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Verify issues a minimal embedding request so that an unreachable
// daemon or a model that was never pulled surfaces at construction
// time instead of on the first user question.
func (e *Embedder) Verify(ctx context.Context) error {
	if _, err := e.EmbedQuery(ctx, "ping"); err != nil {
		return fmt.Errorf("embedding model %q unavailable: %w", e.model, err)
	}
	return nil
}

// LLM generates chat completions with a fixed local model.
type LLM struct {
	api   *openai.Client
	model string
}

// NewLLM creates a generator bound to the given model name.
func NewLLM(cfg Config, model string) *LLM {
	return &LLM{api: newAPI(cfg), model: model}
}

// Model returns the generation model name.
func (l *LLM) Model() string { return l.model }

// Generate sends the prompt (with an optional system instruction) and
// returns the model's text output verbatim.
func (l *LLM) Generate(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := l.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       l.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return resp.Choices[0].Message.Content, nil
}
