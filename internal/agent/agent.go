// Package agent answers questions by grounding a local generation model
// in chunks retrieved from the knowledge base.
package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bioassist/internal/domain"
)

// FailureAnswer is the fixed user-facing string returned when any step
// of answering fails. Per-call failures never abort the session.
const FailureAnswer = "An error occurred while generating the response."

// Agent wires the query pipeline: embed question, retrieve top-k
// chunks, assemble prompt, generate.
type Agent struct {
	embedder    domain.Embedder
	store       domain.VectorStore
	generator   domain.Generator
	mode        domain.ContextMode
	topK        int
	temperature float32
	logger      *zap.Logger
}

// New creates an agent. The embedder must be the same model the store
// was built with; kb.OpenForQuery enforces that before the agent exists.
func New(embedder domain.Embedder, store domain.VectorStore, generator domain.Generator,
	mode domain.ContextMode, topK int, temperature float32, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		embedder:    embedder,
		store:       store,
		generator:   generator,
		mode:        mode,
		topK:        topK,
		temperature: temperature,
		logger:      logger,
	}
}

// Answer responds to a question using retrieved context. Every failure
// is converted to FailureAnswer so the session can continue.
func (a *Agent) Answer(ctx context.Context, question string) string {
	retrieved, err := a.Retrieve(ctx, question)
	if err != nil {
		a.logger.Warn("retrieval failed", zap.Error(err))
		return FailureAnswer
	}
	prompt := buildPrompt(retrieved, question, a.mode)
	answer, err := a.generator.Generate(ctx, systemInstruction(a.mode), prompt, a.temperature)
	if err != nil {
		a.logger.Warn("generation failed", zap.Error(err))
		return FailureAnswer
	}
	return answer
}

// Retrieve returns the top-k stored chunks nearest to the question.
func (a *Agent) Retrieve(ctx context.Context, question string) ([]domain.ScoredChunk, error) {
	vector, err := a.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	results, err := a.store.Search(ctx, vector, a.topK)
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}
	return results, nil
}

// Mode returns the agent's context-usage policy.
func (a *Agent) Mode() domain.ContextMode { return a.mode }

func systemInstruction(mode domain.ContextMode) string {
	switch mode {
	case domain.ContextStrict:
		return "You are a helpful bioinformatics assistant. Answer ONLY using the " +
			"context provided by the user. If the context does not contain the " +
			"answer, reply that you don't know based on the available documents. " +
			"Never invent facts."
	default:
		return "You are a helpful bioinformatics assistant. Prefer the context " +
			"provided by the user; if it is insufficient, you may fall back on " +
			"your own general knowledge."
	}
}

func buildPrompt(retrieved []domain.ScoredChunk, question string, mode domain.ContextMode) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	if len(retrieved) == 0 {
		b.WriteString("(no relevant documents found)\n")
	}
	for _, r := range retrieved {
		fmt.Fprintf(&b, "[Source: %s]\n%s\n\n", r.Chunk.SourcePath, r.Chunk.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n")
	if mode == domain.ContextStrict {
		b.WriteString("Answer using only the context above.")
	} else {
		b.WriteString("Answer, preferring the context above.")
	}
	return b.String()
}
