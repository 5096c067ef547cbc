package kb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrModelMismatch is returned when the store was built with a different
// embedding model than the one configured for querying. Mixing models
// silently corrupts distance comparisons, so it is refused outright.
var ErrModelMismatch = errors.New("embedding model does not match the one the store was built with")

const manifestFile = "manifest.yaml"

// manifest records how a persisted store was built. It sits next to the
// vector data and is checked every time the store is opened for querying.
type manifest struct {
	EmbeddingModel string    `yaml:"embedding_model"`
	Collection     string    `yaml:"collection"`
	Chunks         int       `yaml:"chunks"`
	BuiltAt        time.Time `yaml:"built_at"`
}

func writeManifest(storePath string, m manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(storePath, manifestFile), data, 0o644)
}

func readManifest(storePath string) (manifest, error) {
	data, err := os.ReadFile(filepath.Join(storePath, manifestFile))
	if err != nil {
		return manifest{}, fmt.Errorf("read store manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return manifest{}, fmt.Errorf("parse store manifest: %w", err)
	}
	return m, nil
}

func checkModel(storePath, embeddingModel string) error {
	m, err := readManifest(storePath)
	if err != nil {
		return err
	}
	if m.EmbeddingModel != embeddingModel {
		return fmt.Errorf("%w: store built with %q, configured %q",
			ErrModelMismatch, m.EmbeddingModel, embeddingModel)
	}
	return nil
}
