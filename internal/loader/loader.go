// Package loader reads source documents from a directory tree.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"bioassist/internal/domain"
)

// plainExtensions are the text-like file types loaded verbatim.
var plainExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".py":  true,
	".r":   true,
	".sh":  true,
}

// Loader turns files under a directory into documents.
type Loader struct {
	logger *zap.Logger
}

// New returns a Loader that logs skipped and failed files to logger.
func New(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadDirectory walks dir recursively and loads every supported file.
// Files with unsupported extensions are skipped with a logged notice;
// a file that fails to parse is skipped the same way. Only a missing
// directory is an error.
func (l *Loader) LoadDirectory(dir string) ([]domain.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", dir)
	}

	var docs []domain.Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		doc, ok, err := l.loadFile(path)
		if err != nil {
			l.logger.Warn("failed to load file, skipping",
				zap.String("path", path), zap.Error(err))
			return nil
		}
		if !ok {
			l.logger.Info("skipping unsupported file type", zap.String("path", path))
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	l.logger.Info("documents loaded", zap.Int("count", len(docs)), zap.String("dir", dir))
	return docs, nil
}

// LoadFiles loads the given files, skipping unsupported or unreadable
// ones with a logged notice.
func (l *Loader) LoadFiles(paths []string) []domain.Document {
	var docs []domain.Document
	for _, path := range paths {
		doc, ok, err := l.loadFile(path)
		if err != nil {
			l.logger.Warn("failed to load file, skipping",
				zap.String("path", path), zap.Error(err))
			continue
		}
		if !ok {
			l.logger.Info("skipping unsupported file type", zap.String("path", path))
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// loadFile reads one file. The second return value is false when the
// extension is not supported.
func (l *Loader) loadFile(path string) (domain.Document, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		text, err := extractPDF(path)
		if err != nil {
			return domain.Document{}, true, err
		}
		return domain.Document{Text: text, SourcePath: path}, true, nil
	case plainExtensions[ext]:
		content, err := os.ReadFile(path)
		if err != nil {
			return domain.Document{}, true, err
		}
		return domain.Document{Text: extractPlain(content), SourcePath: path}, true, nil
	default:
		return domain.Document{}, false, nil
	}
}
