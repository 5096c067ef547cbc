// Package chunker splits documents into fixed-size overlapping windows.
package chunker

import (
	"strings"

	"bioassist/internal/domain"
)

// WindowChunker splits text into rune windows of at most size runes.
// Adjacent windows from the same document overlap by exactly overlap
// runes, except that the first window has no preceding text to share.
type WindowChunker struct {
	size    int
	overlap int
}

// New creates a chunker with the given window size and overlap, both in
// runes. Invalid values fall back to size 1000 / overlap 200.
func New(size, overlap int) *WindowChunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 200
		if overlap >= size {
			overlap = size / 5
		}
	}
	return &WindowChunker{size: size, overlap: overlap}
}

// Split chunks a document. Whitespace-only documents yield no chunks.
func (c *WindowChunker) Split(doc domain.Document) []domain.Chunk {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.size {
		return []domain.Chunk{{Text: text, SourcePath: doc.SourcePath, Index: 0}}
	}

	step := c.size - c.overlap
	var chunks []domain.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, domain.Chunk{
			Text:       string(runes[start:end]),
			SourcePath: doc.SourcePath,
			Index:      len(chunks),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
