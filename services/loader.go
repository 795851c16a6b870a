package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ga-assistant-backend/models"
)

// LoadTextDocuments reads every file matching pattern (e.g. "*.txt") under
// dir and attaches source, file name and ingestion date metadata.
func LoadTextDocuments(dir, pattern string) ([]models.RawDocument, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid document pattern %q: %w", pattern, err)
	}

	today := time.Now().Truncate(24 * time.Hour)

	var docs []models.RawDocument
	for _, path := range matches {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, models.RawDocument{
			Source:     path,
			FileName:   filepath.Base(path),
			IngestedAt: today,
			Content:    string(content),
		})
	}

	return docs, nil
}
