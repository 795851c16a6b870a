package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ga-assistant-backend/internal/store"
	"ga-assistant-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRowStore struct {
	rows      []store.Row
	selectErr error
	insertErr error
	pageReads int
}

func (f *fakeRowStore) SelectRange(ctx context.Context, table, columns string, start, end int) ([]store.Row, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	f.pageReads++
	if start >= len(f.rows) {
		return nil, nil
	}
	limit := end + 1
	if limit > len(f.rows) {
		limit = len(f.rows)
	}
	return f.rows[start:limit], nil
}

func (f *fakeRowStore) Insert(ctx context.Context, table string, rows []store.Row) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, rows...)
	return nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 0.5}, nil
}

type fakeVectorWriter struct {
	upserts int
	chunks  []models.DocumentChunk
}

func (f *fakeVectorWriter) Upsert(ctx context.Context, chunks []models.DocumentChunk, vectors [][]float32) error {
	f.upserts++
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func seedRows(ids ...int) []store.Row {
	rows := make([]store.Row, len(ids))
	for i, id := range ids {
		rows[i] = store.Row{"doc_id": id}
	}
	return rows
}

func TestIngestAllocatesContiguousIDs(t *testing.T) {
	rowStore := &fakeRowStore{rows: seedRows(1, 2, 3)}
	vectors := &fakeVectorWriter{}
	svc := NewIngestionService(rowStore, vectors, &fakeEmbedder{}, "vectorstore", 1000)

	docs := []models.RawDocument{
		{Source: "docs/a.txt", FileName: "a.txt", Content: strings.Repeat("x", 1200)},
		{Source: "docs/b.txt", FileName: "b.txt", Content: strings.Repeat("y", 400)},
	}
	result, err := svc.Ingest(context.Background(), docs, 500, 50)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 4, result.Chunks)
	assert.Equal(t, 4, result.FirstDocID)
	assert.Equal(t, 7, result.LastDocID)
	assert.NotEmpty(t, result.BatchID)
	require.Len(t, rowStore.rows, 7)
	assert.Equal(t, 1, vectors.upserts)
}

func TestIngestEmptyStoreStartsAtOne(t *testing.T) {
	rowStore := &fakeRowStore{}
	svc := NewIngestionService(rowStore, &fakeVectorWriter{}, &fakeEmbedder{}, "vectorstore", 1000)

	docs := []models.RawDocument{{FileName: "a.txt", Content: strings.Repeat("x", 400)}}
	result, err := svc.Ingest(context.Background(), docs, 500, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FirstDocID)
	assert.Equal(t, 1, result.LastDocID)
}

func TestIngestRereadsIDSpacePerBatch(t *testing.T) {
	// Batch A on an empty store takes ids 1..3; batch B continues at 4
	// because the id space is re-read, never cached.
	rowStore := &fakeRowStore{}
	svc := NewIngestionService(rowStore, &fakeVectorWriter{}, &fakeEmbedder{}, "vectorstore", 1000)

	first, err := svc.Ingest(context.Background(), []models.RawDocument{
		{FileName: "a.txt", Content: strings.Repeat("x", 1200)},
	}, 500, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, first.FirstDocID)
	assert.Equal(t, 3, first.LastDocID)

	second, err := svc.Ingest(context.Background(), []models.RawDocument{
		{FileName: "b.txt", Content: strings.Repeat("y", 900)},
	}, 500, 50)
	require.NoError(t, err)
	assert.Equal(t, 4, second.FirstDocID)
	assert.Equal(t, 5, second.LastDocID)
}

func TestIngestPagesThroughStore(t *testing.T) {
	// 5 existing rows with page size 2 needs three reads; the max id sits on
	// the last page.
	rowStore := &fakeRowStore{rows: seedRows(10, 11, 12, 13, 42)}
	svc := NewIngestionService(rowStore, &fakeVectorWriter{}, &fakeEmbedder{}, "vectorstore", 2)

	result, err := svc.Ingest(context.Background(), []models.RawDocument{
		{FileName: "a.txt", Content: strings.Repeat("x", 100)},
	}, 500, 50)
	require.NoError(t, err)

	assert.Equal(t, 43, result.FirstDocID)
	assert.GreaterOrEqual(t, rowStore.pageReads, 3)
}

func TestIngestInsertFailure(t *testing.T) {
	rowStore := &fakeRowStore{insertErr: errors.New("connection reset")}
	svc := NewIngestionService(rowStore, &fakeVectorWriter{}, &fakeEmbedder{}, "vectorstore", 1000)

	result, err := svc.Ingest(context.Background(), []models.RawDocument{
		{FileName: "a.txt", Content: strings.Repeat("x", 100)},
	}, 500, 50)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrIngestion)
	assert.Nil(t, result)
	assert.Empty(t, rowStore.rows)
}

func TestIngestStoreReadFailureAborts(t *testing.T) {
	// A failed id scan must abort instead of restarting allocation at 1.
	rowStore := &fakeRowStore{selectErr: errors.New("timeout")}
	svc := NewIngestionService(rowStore, &fakeVectorWriter{}, &fakeEmbedder{}, "vectorstore", 1000)

	_, err := svc.Ingest(context.Background(), []models.RawDocument{
		{FileName: "a.txt", Content: strings.Repeat("x", 100)},
	}, 500, 50)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrIngestion)
	assert.Empty(t, rowStore.rows)
}

func TestIngestEmbeddingFailureAfterPersist(t *testing.T) {
	rowStore := &fakeRowStore{}
	svc := NewIngestionService(rowStore, &fakeVectorWriter{}, &fakeEmbedder{err: errors.New("quota")}, "vectorstore", 1000)

	result, err := svc.Ingest(context.Background(), []models.RawDocument{
		{FileName: "a.txt", Content: strings.Repeat("x", 100)},
	}, 500, 50)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "persisted")
	// Rows are durable even though indexing failed.
	require.NotNil(t, result)
	assert.Len(t, rowStore.rows, 1)
}

func TestIngestInvalidChunkParams(t *testing.T) {
	svc := NewIngestionService(&fakeRowStore{}, &fakeVectorWriter{}, &fakeEmbedder{}, "vectorstore", 1000)

	_, err := svc.Ingest(context.Background(), []models.RawDocument{
		{FileName: "a.txt", Content: "hello"},
	}, 100, 100)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfig)
}

func TestParseDocID(t *testing.T) {
	cases := []struct {
		value any
		want  int
		ok    bool
	}{
		{7, 7, true},
		{int32(8), 8, true},
		{int64(9), 9, true},
		{float64(10), 10, true},
		{"11", 11, true},
		{"not a number", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := parseDocID(tc.value)
		assert.Equal(t, tc.ok, ok)
		if tc.ok {
			assert.Equal(t, tc.want, got)
		}
	}
}
