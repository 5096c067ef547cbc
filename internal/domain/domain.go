package domain

import "context"

// Document is a single source file loaded into the system.
type Document struct {
	Text       string
	SourcePath string
}

// Chunk is a bounded-length window of a document used for indexing.
// Adjacent chunks from the same source share overlapping text by design.
type Chunk struct {
	Text       string
	SourcePath string
	Index      int
}

// ScoredChunk is a retrieved chunk with its cosine similarity to the query.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float32
}

// ContextMode governs whether the generation model may answer from
// knowledge beyond the retrieved chunks.
type ContextMode string

const (
	// ContextStrict restricts answers to the supplied context only.
	ContextStrict ContextMode = "strict"
	// ContextRegular prefers the supplied context but allows falling back
	// to the model's general knowledge.
	ContextRegular ContextMode = "regular"
)

// Valid reports whether the mode is one of the known context modes.
func (m ContextMode) Valid() bool {
	return m == ContextStrict || m == ContextRegular
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a chat transcript. Transcripts live only in the
// session; they are never persisted.
type Turn struct {
	Role    Role
	Content string
}

// Embedder converts text into fixed-length numeric vectors through the
// local model-serving daemon.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Chunker splits a document into retrieval-sized chunks.
type Chunker interface {
	Split(doc Document) []Chunk
}

// VectorStore persists (vector, text, source) records and answers
// nearest-neighbor queries.
type VectorStore interface {
	Add(ctx context.Context, chunks []Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]ScoredChunk, error)
	Count() int
}

// Generator produces a chat completion for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, temperature float32) (string, error)
	Model() string
}
