package services

import (
	"strings"
	"testing"

	"ga-assistant-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunkerValidation(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -1, 0},
		{"negative overlap", 500, -1},
		{"overlap equals chunk size", 500, 500},
		{"overlap exceeds chunk size", 500, 600},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewChunker(tc.chunkSize, tc.overlap)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrConfig)
		})
	}
}

func TestSplitWindowPositions(t *testing.T) {
	chunker, err := NewChunker(500, 50)
	require.NoError(t, err)

	text := strings.Repeat("a", 1200)
	chunks := chunker.Split(text)

	// Windows start at 0, 450, 900.
	require.Len(t, chunks, 3)
	assert.Len(t, []rune(chunks[0]), 500)
	assert.Len(t, []rune(chunks[1]), 500)
	assert.Len(t, []rune(chunks[2]), 300)
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	chunker, err := NewChunker(500, 50)
	require.NoError(t, err)

	text := strings.Repeat("b", 400)
	chunks := chunker.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitReconstruction(t *testing.T) {
	const overlap = 50
	chunker, err := NewChunker(500, overlap)
	require.NoError(t, err)

	var sb strings.Builder
	for i := 0; sb.Len() < 1700; i++ {
		sb.WriteString("word")
		sb.WriteByte(byte('0' + i%10))
		sb.WriteByte(' ')
	}
	text := sb.String()

	chunks := chunker.Split(text)
	require.Greater(t, len(chunks), 1)

	// Consecutive chunks share exactly `overlap` characters, so dropping
	// the first `overlap` runes of every later chunk rebuilds the input.
	rebuilt := chunks[0]
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		assert.Equal(t, string([]rune(rebuilt)[len([]rune(rebuilt))-overlap:]), string(runes[:overlap]))
		rebuilt += string(runes[overlap:])
	}
	assert.Equal(t, text, rebuilt)
}

func TestSplitDropsWhitespaceRemainder(t *testing.T) {
	chunker, err := NewChunker(5, 0)
	require.NoError(t, err)

	chunks := chunker.Split("abcde     ")

	require.Len(t, chunks, 1)
	assert.Equal(t, "abcde", chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	chunker, err := NewChunker(500, 50)
	require.NoError(t, err)

	assert.Empty(t, chunker.Split(""))
}

func TestSplitMultibyteRunes(t *testing.T) {
	chunker, err := NewChunker(10, 2)
	require.NoError(t, err)

	text := strings.Repeat("가나다라마", 5)
	chunks := chunker.Split(text)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 10)
	}
	rebuilt := chunks[0]
	for _, chunk := range chunks[1:] {
		rebuilt += string([]rune(chunk)[2:])
	}
	assert.Equal(t, text, rebuilt)
}

func TestSplitSnapsToSeparator(t *testing.T) {
	chunker, err := NewChunker(20, 4, "\n\n")
	require.NoError(t, err)

	text := "first block\n\nsecond block that keeps going past the window"
	chunks := chunker.Split(text)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, "first block\n\n", chunks[0])
}

func TestChunkDocumentsAttachesMetadata(t *testing.T) {
	chunker, err := NewChunker(500, 50)
	require.NoError(t, err)

	docs := []models.RawDocument{
		{Source: "docs/a.txt", FileName: "a.txt", Content: strings.Repeat("x", 1200)},
		{Source: "docs/b.txt", FileName: "b.txt", Content: strings.Repeat("y", 400)},
	}
	chunks := chunker.ChunkDocuments(docs)

	require.Len(t, chunks, 4)
	for _, chunk := range chunks[:3] {
		assert.Equal(t, "a.txt", chunk.FileName)
	}
	assert.Equal(t, "b.txt", chunks[3].FileName)
	for _, chunk := range chunks {
		assert.Zero(t, chunk.DocID)
	}
}
