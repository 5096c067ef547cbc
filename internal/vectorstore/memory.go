package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"bioassist/internal/domain"
)

// MemoryStore is a brute-force cosine-similarity store with no
// persistence. It backs tests and ad-hoc experiments.
type MemoryStore struct {
	mu      sync.RWMutex
	chunks  []domain.Chunk
	vectors [][]float32
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Add appends records. Chunks and vectors correspond by index.
func (s *MemoryStore) Add(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns up to topK records nearest to vector, best first.
func (s *MemoryStore) Search(_ context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	scored := make([]domain.ScoredChunk, len(s.chunks))
	for i := range s.chunks {
		scored[i] = domain.ScoredChunk{
			Chunk:      s.chunks[i],
			Similarity: cosineSimilarity(s.vectors[i], vector),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
