package services

import (
	"fmt"
	"strings"

	"ga-assistant-backend/models"
)

// Chunker splits documents into overlapping character windows. Consecutive
// chunks of a document share exactly `overlap` characters, so concatenating
// chunks with the overlap removed reconstructs the original text.
type Chunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewChunker validates the window parameters. separators is an optional
// preference list of break strings; when given, a chunk boundary snaps back
// to the latest separator occurrence inside the window.
func NewChunker(chunkSize, overlap int, separators ...string) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", models.ErrConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap (%d) must be smaller than chunk size (%d)", models.ErrConfig, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap, separators: separators}, nil
}

// Split returns the ordered chunks of a single text. No chunk is empty; a
// trailing whitespace-only remainder is dropped.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			tail := string(runes[start:])
			if strings.TrimSpace(tail) != "" {
				chunks = append(chunks, tail)
			}
			break
		}

		end = c.snapToSeparator(runes, start, end)
		chunks = append(chunks, string(runes[start:end]))

		// The next chunk repeats the last `overlap` characters.
		start = end - c.overlap
	}

	return chunks
}

// snapToSeparator moves the cut point back to the latest separator occurrence
// inside the window, trying separators in preference order. The cut must stay
// past start+overlap so every chunk advances the window.
func (c *Chunker) snapToSeparator(runes []rune, start, end int) int {
	if len(c.separators) == 0 {
		return end
	}

	window := string(runes[start:end])
	floor := c.overlap + 1
	for _, sep := range c.separators {
		if sep == "" {
			continue
		}
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := len([]rune(window[:idx])) + len([]rune(sep))
		if cut >= floor {
			return start + cut
		}
	}
	return end
}

// ChunkDocuments splits each document and attaches its metadata to every
// produced chunk. DocIDs are left unset; the ingestion pipeline assigns them.
func (c *Chunker) ChunkDocuments(docs []models.RawDocument) []models.DocumentChunk {
	var chunks []models.DocumentChunk
	for _, doc := range docs {
		for _, text := range c.Split(doc.Content) {
			chunks = append(chunks, models.DocumentChunk{
				Source:      doc.Source,
				FileName:    doc.FileName,
				IngestedAt:  doc.IngestedAt,
				PageContent: text,
			})
		}
	}
	return chunks
}
