package kb

import (
	"context"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioassist/internal/chunker"
	"bioassist/internal/domain"
	"bioassist/internal/loader"
)

// bagEmbedder is a deterministic bag-of-words embedder: texts sharing
// words get similar vectors, so retrieval behaves like the real thing.
type bagEmbedder struct{ model string }

func (e bagEmbedder) Model() string { return e.model }

func (e bagEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	const dim = 16
	vec := make([]float32, dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,;:!?")))
		vec[h.Sum32()%dim]++
	}
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(float64(norm)))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

func (e bagEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func newTestBuilder(t *testing.T, storePath string) *Builder {
	t.Helper()
	return NewBuilder(
		loader.New(nil),
		chunker.New(200, 40),
		bagEmbedder{model: "nomic-embed-text"},
		storePath,
		"bio_knowledge_base",
		nil,
	)
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestBuild_unsupportedOnlyFailsAndPersistsNothing(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "table.csv", "a,b,c")
	storePath := filepath.Join(t.TempDir(), "store")

	err := newTestBuilder(t, storePath).Build(context.Background(), dataDir)
	require.ErrorIs(t, err, ErrNoDocuments)

	_, statErr := os.Stat(storePath)
	assert.True(t, os.IsNotExist(statErr), "failed build must not create a store")
}

func TestBuild_roundTripRetrieval(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "replication.txt",
		"DNA replication is the process of producing two identical copies of DNA.")
	writeDoc(t, dataDir, "pcr.txt",
		"PCR is a molecular biology technique to amplify a specific DNA segment.")
	storePath := filepath.Join(t.TempDir(), "store")

	b := newTestBuilder(t, storePath)
	require.NoError(t, b.Build(context.Background(), dataDir))

	store, err := OpenForQuery(storePath, "bio_knowledge_base", "nomic-embed-text")
	require.NoError(t, err)
	assert.Equal(t, 2, store.Count())

	qvec, err := bagEmbedder{}.EmbedQuery(context.Background(),
		"What is DNA replication?")
	require.NoError(t, err)
	got, err := store.Search(context.Background(), qvec, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Chunk.Text, "identical copies")
	assert.Contains(t, got[0].Chunk.SourcePath, "replication.txt")
}

func TestBuild_rebuildReplacesStore(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store")
	b := newTestBuilder(t, storePath)

	first := t.TempDir()
	writeDoc(t, first, "a.txt", "First corpus sentence one.")
	writeDoc(t, first, "b.txt", "First corpus sentence two.")
	require.NoError(t, b.Build(context.Background(), first))

	second := t.TempDir()
	writeDoc(t, second, "c.txt", "Second corpus, single document.")
	require.NoError(t, b.Build(context.Background(), second))

	store, err := OpenForQuery(storePath, "bio_knowledge_base", "nomic-embed-text")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Count(), "rebuild must replace, not accumulate")
}

func TestAppend_addsToExistingStore(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store")
	b := newTestBuilder(t, storePath)

	dataDir := t.TempDir()
	writeDoc(t, dataDir, "a.txt", "Sequencing reads the genetic code.")
	require.NoError(t, b.Build(context.Background(), dataDir))

	err := b.Append(context.Background(), []domain.Document{
		{Text: "RNA-Seq measures RNA abundance.", SourcePath: "rnaseq.txt"},
	})
	require.NoError(t, err)

	store, err := OpenForQuery(storePath, "bio_knowledge_base", "nomic-embed-text")
	require.NoError(t, err)
	assert.Equal(t, 2, store.Count())
}

func TestAppend_missingStoreRejected(t *testing.T) {
	b := newTestBuilder(t, filepath.Join(t.TempDir(), "absent"))
	err := b.Append(context.Background(), []domain.Document{
		{Text: "text", SourcePath: "x.txt"},
	})
	assert.ErrorIs(t, err, ErrStoreMissing)
}

func TestOpenForQuery_modelMismatchRejected(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store")
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "a.txt", "Some biology text.")
	require.NoError(t, newTestBuilder(t, storePath).Build(context.Background(), dataDir))

	_, err := OpenForQuery(storePath, "bio_knowledge_base", "mxbai-embed-large")
	assert.ErrorIs(t, err, ErrModelMismatch)
}

func TestEnsureExists(t *testing.T) {
	assert.ErrorIs(t, EnsureExists(filepath.Join(t.TempDir(), "absent")), ErrStoreMissing)

	empty := t.TempDir()
	assert.ErrorIs(t, EnsureExists(empty), ErrStoreMissing)

	populated := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(populated, "f"), []byte("x"), 0o644))
	assert.NoError(t, EnsureExists(populated))
}
