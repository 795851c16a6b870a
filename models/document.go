package models

import "time"

// DocumentChunk is the unit of storage and retrieval. DocIDs are strictly
// positive, unique across the corpus, and never reused or renumbered.
type DocumentChunk struct {
	DocID       int       `json:"doc_id"`
	Source      string    `json:"source"`
	FileName    string    `json:"file_name"`
	IngestedAt  time.Time `json:"date"`
	PageContent string    `json:"page_content"`
}

// ScoredChunk pairs a retrieved chunk with its relevance scores.
type ScoredChunk struct {
	Chunk DocumentChunk

	// Similarity is the cosine similarity reported by the vector index.
	Similarity float64

	// Rerank is the cross-encoder score, populated by the refiner.
	Rerank float64
}

// RawDocument is a loaded source file before chunking. Chunks inherit its
// metadata unmodified.
type RawDocument struct {
	Source     string
	FileName   string
	IngestedAt time.Time
	Content    string
}

// ConversationTurn is one prior message of the client session. History is
// per-request input and is never persisted by the pipeline.
type ConversationTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// AssembledPrompt is the rendered context window handed to the generator.
type AssembledPrompt struct {
	HistorySection string
	ContextSection string
	UserInput      string

	// Text is the final prompt: the rendered system template followed by the
	// current user query as the last turn.
	Text string
}

// BatchResult reports one ingestion run.
type BatchResult struct {
	BatchID    string `json:"batch_id"`
	Documents  int    `json:"documents"`
	Chunks     int    `json:"chunks"`
	FirstDocID int    `json:"first_doc_id"`
	LastDocID  int    `json:"last_doc_id"`
}

// ChatLog mirrors one row of the chat_logs table.
type ChatLog struct {
	UserID    string `json:"user_id"`
	IPAddress string `json:"ip_address"`
	Content   string `json:"content"`
	Response  string `json:"response"`
}
