// Package kb builds and opens the persisted knowledge base.
package kb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"bioassist/internal/domain"
	"bioassist/internal/loader"
	"bioassist/internal/vectorstore"
)

var (
	// ErrNoDocuments is returned when the source directory yields no
	// supported documents or no non-empty chunks.
	ErrNoDocuments = errors.New("no supported documents found in source directory")

	// ErrStoreMissing is returned when the persisted store directory is
	// absent or empty.
	ErrStoreMissing = errors.New("knowledge base not found or empty")
)

// Builder runs the build pipeline: load, chunk, embed, persist.
type Builder struct {
	loader     *loader.Loader
	chunker    domain.Chunker
	embedder   domain.Embedder
	storePath  string
	collection string
	logger     *zap.Logger
}

// NewBuilder wires the build pipeline components.
func NewBuilder(l *loader.Loader, c domain.Chunker, e domain.Embedder, storePath, collection string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		loader:     l,
		chunker:    c,
		embedder:   e,
		storePath:  storePath,
		collection: collection,
		logger:     logger,
	}
}

// Build produces a fresh persisted store from dataDir. Any existing
// store at the target path is deleted first; on failure before that
// point, nothing is touched on disk.
func (b *Builder) Build(ctx context.Context, dataDir string) error {
	docs, err := b.loader.LoadDirectory(dataDir)
	if err != nil {
		return err
	}
	chunks := b.splitAll(docs)
	if len(chunks) == 0 {
		return ErrNoDocuments
	}
	b.logger.Info("chunked documents",
		zap.Int("documents", len(docs)), zap.Int("chunks", len(chunks)))

	vectors, err := b.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	// Destructive rebuild: drop whatever is there before writing.
	if err := os.RemoveAll(b.storePath); err != nil {
		return fmt.Errorf("remove existing store: %w", err)
	}
	store, err := vectorstore.Open(b.storePath, b.collection)
	if err != nil {
		return err
	}
	if err := store.Add(ctx, chunks, vectors); err != nil {
		return err
	}
	if err := writeManifest(b.storePath, manifest{
		EmbeddingModel: b.embedder.Model(),
		Collection:     b.collection,
		Chunks:         len(chunks),
		BuiltAt:        time.Now().UTC(),
	}); err != nil {
		return err
	}
	b.logger.Info("knowledge base built",
		zap.String("path", b.storePath), zap.Int("records", store.Count()))
	return nil
}

// Append adds documents to an already-built store. The store must exist
// and must have been built with the same embedding model.
func (b *Builder) Append(ctx context.Context, docs []domain.Document) error {
	if err := EnsureExists(b.storePath); err != nil {
		return err
	}
	if err := checkModel(b.storePath, b.embedder.Model()); err != nil {
		return err
	}
	chunks := b.splitAll(docs)
	if len(chunks) == 0 {
		return ErrNoDocuments
	}
	vectors, err := b.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}
	store, err := vectorstore.Open(b.storePath, b.collection)
	if err != nil {
		return err
	}
	if err := store.Add(ctx, chunks, vectors); err != nil {
		return err
	}
	m, err := readManifest(b.storePath)
	if err != nil {
		return err
	}
	m.Chunks += len(chunks)
	if err := writeManifest(b.storePath, m); err != nil {
		return err
	}
	b.logger.Info("documents appended",
		zap.Int("documents", len(docs)), zap.Int("chunks", len(chunks)))
	return nil
}

func (b *Builder) splitAll(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, d := range docs {
		chunks = append(chunks, b.chunker.Split(d)...)
	}
	return chunks
}

func (b *Builder) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := b.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	return vectors, nil
}

// EnsureExists reports ErrStoreMissing when the store directory is
// absent or empty.
func EnsureExists(storePath string) error {
	entries, err := os.ReadDir(storePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrStoreMissing
		}
		return err
	}
	if len(entries) == 0 {
		return ErrStoreMissing
	}
	return nil
}

// OpenForQuery opens an existing store for querying, refusing a store
// that is missing or was built with a different embedding model.
func OpenForQuery(storePath, collection, embeddingModel string) (*vectorstore.PersistentStore, error) {
	if err := EnsureExists(storePath); err != nil {
		return nil, err
	}
	if err := checkModel(storePath, embeddingModel); err != nil {
		return nil, err
	}
	return vectorstore.Open(storePath, collection)
}
