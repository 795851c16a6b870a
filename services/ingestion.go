package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"ga-assistant-backend/internal/logger"
	"ga-assistant-backend/internal/store"
	"ga-assistant-backend/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// RowStore is the relational store contract the pipeline depends on:
// range-based reads and a single atomic batch insert.
type RowStore interface {
	SelectRange(ctx context.Context, table, columns string, start, end int) ([]store.Row, error)
	Insert(ctx context.Context, table string, rows []store.Row) error
}

// Embedder produces an embedding vector for a text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// VectorWriter indexes chunk embeddings keyed by doc_id.
type VectorWriter interface {
	Upsert(ctx context.Context, chunks []models.DocumentChunk, vectors [][]float32) error
}

// IngestionService chunks documents, assigns doc ids consistent with the
// persisted corpus and appends everything in one batch insert. Ingestion is
// a single-writer path: two concurrent runs would both read the same current
// max id and collide, so every run holds the mutex end to end.
type IngestionService struct {
	mu sync.Mutex

	store    RowStore
	vectors  VectorWriter
	embedder Embedder

	chunkTable string
	pageSize   int
}

func NewIngestionService(rowStore RowStore, vectors VectorWriter, embedder Embedder, chunkTable string, pageSize int) *IngestionService {
	if pageSize <= 0 {
		pageSize = store.DefaultPageSize
	}
	return &IngestionService{
		store:      rowStore,
		vectors:    vectors,
		embedder:   embedder,
		chunkTable: chunkTable,
		pageSize:   pageSize,
	}
}

// Ingest chunks the documents and persists them with freshly allocated ids.
// The id space is re-read from the store on every call; nothing is cached
// between runs, so a failed insert advances nothing.
func (s *IngestionService) Ingest(ctx context.Context, docs []models.RawDocument, chunkSize, overlap int) (*models.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracer := otel.Tracer("ingestion")
	ctx, span := tracer.Start(ctx, "ingestion.ingest")
	defer span.End()

	chunker, err := NewChunker(chunkSize, overlap)
	if err != nil {
		return nil, err
	}

	chunks := chunker.ChunkDocuments(docs)
	result := &models.BatchResult{
		BatchID:   uuid.NewString(),
		Documents: len(docs),
		Chunks:    len(chunks),
	}
	span.SetAttributes(
		attribute.Int("ingestion.documents", len(docs)),
		attribute.Int("ingestion.chunks", len(chunks)),
	)
	if len(chunks) == 0 {
		logger.Info("Ingestion produced no chunks", "batch_id", result.BatchID, "documents", len(docs))
		return result, nil
	}

	maxID, err := s.maxDocID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read current max doc_id: %v", models.ErrIngestion, err)
	}

	// Chunk i of the batch receives maxID+1+i, in emission order.
	rows := make([]store.Row, len(chunks))
	for i := range chunks {
		chunks[i].DocID = maxID + 1 + i
		rows[i] = store.Row{
			"doc_id":       chunks[i].DocID,
			"source":       chunks[i].Source,
			"file_name":    chunks[i].FileName,
			"date":         chunks[i].IngestedAt,
			"page_content": chunks[i].PageContent,
		}
	}

	if err := s.store.Insert(ctx, s.chunkTable, rows); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIngestion, err)
	}

	result.FirstDocID = chunks[0].DocID
	result.LastDocID = chunks[len(chunks)-1].DocID
	logger.Info("Chunk batch persisted",
		"batch_id", result.BatchID,
		"chunks", len(chunks),
		"first_doc_id", result.FirstDocID,
		"last_doc_id", result.LastDocID,
	)

	if err := s.indexChunks(ctx, chunks); err != nil {
		// Rows are durable at this point; only the vector index is behind.
		return result, fmt.Errorf("chunks persisted but embedding index update failed: %w", err)
	}

	return result, nil
}

// maxDocID pages through the doc_id column until a page comes back shorter
// than the page size. An empty table or a column with no parseable numeric
// ids yields 0, so allocation starts at 1.
func (s *IngestionService) maxDocID(ctx context.Context) (int, error) {
	maxID := 0
	for page := 0; ; page++ {
		start := page * s.pageSize
		rows, err := s.store.SelectRange(ctx, s.chunkTable, "doc_id", start, start+s.pageSize-1)
		if err != nil {
			return 0, err
		}
		for _, row := range rows {
			if id, ok := parseDocID(row["doc_id"]); ok && id > maxID {
				maxID = id
			}
		}
		if len(rows) < s.pageSize {
			return maxID, nil
		}
	}
}

func parseDocID(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		id, err := strconv.Atoi(v)
		return id, err == nil
	default:
		return 0, false
	}
}

// indexChunks embeds every chunk and upserts the vectors keyed by doc_id.
func (s *IngestionService) indexChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embedder.EmbedText(ctx, chunk.PageContent)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", chunk.DocID, err)
		}
		vectors[i] = vec
	}
	return s.vectors.Upsert(ctx, chunks, vectors)
}
