// Package vectorstore persists embedding vectors with their chunk text
// and answers nearest-neighbor queries.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"bioassist/internal/domain"
)

const (
	metaSource = "source"
	metaIndex  = "index"
)

// PersistentStore is an embedded on-disk vector store backed by chromem.
// The store directory is owned exclusively by one process for its
// lifetime; records are written at build time and read-only afterwards.
type PersistentStore struct {
	collection *chromem.Collection
}

// Open opens the database at path, creating it and the named collection
// when absent.
func Open(path, collection string) (*PersistentStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open vector store at %s: %w", path, err)
	}
	col, err := db.GetOrCreateCollection(collection, nil, rejectImplicitEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", collection, err)
	}
	return &PersistentStore{collection: col}, nil
}

// All vectors are computed by the embedder component and passed in
// explicitly; the store must never embed on its own.
func rejectImplicitEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("vector store received text without an embedding")
}

// Add persists one record per chunk. Chunks and vectors correspond by index.
func (s *PersistentStore) Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(chunks))
	for i, ch := range chunks {
		docs[i] = chromem.Document{
			ID:        uuid.NewString(),
			Content:   ch.Text,
			Embedding: vectors[i],
			Metadata: map[string]string{
				metaSource: ch.SourcePath,
				metaIndex:  strconv.Itoa(ch.Index),
			},
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add %d records: %w", len(docs), err)
	}
	return nil
}

// Search returns up to topK stored chunks nearest to vector by cosine
// similarity, best first. topK is clamped to the number of records.
func (s *PersistentStore) Search(ctx context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 5
	}
	if topK > count {
		topK = count
	}
	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	scored := make([]domain.ScoredChunk, len(results))
	for i, r := range results {
		idx, _ := strconv.Atoi(r.Metadata[metaIndex])
		scored[i] = domain.ScoredChunk{
			Chunk: domain.Chunk{
				Text:       r.Content,
				SourcePath: r.Metadata[metaSource],
				Index:      idx,
			},
			Similarity: r.Similarity,
		}
	}
	return scored, nil
}

// Count returns the number of stored records.
func (s *PersistentStore) Count() int {
	return s.collection.Count()
}
