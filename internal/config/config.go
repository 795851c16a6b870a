package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultFallbackMessage is returned verbatim when retrieval produces no
// sufficiently relevant context. It is rendered as an instruction inside the
// system prompt, not enforced in pipeline code.
const DefaultFallbackMessage = "요청하시는 내용의 확인이 어렵습니다.\n번거로우시겠지만 총무팀에 문의 부탁드립니다.\n- email: main3373@gmail.com"

type Config struct {
	DatabaseURL string
	Port        string
	GinMode     string
	CORSOrigins []string

	// Gemini
	GeminiAPIKey    string
	GeminiModel     string
	GeminiTier      string
	EmbeddingsModel string

	// Cross-encoder reranker sidecar
	RerankerURL string

	// Ingestion
	DocumentsDir  string
	ChunkTable    string
	ChatLogTable  string
	ChunkSize     int
	ChunkOverlap  int
	StorePageSize int

	// Retrieval
	RetrieverK          int
	RerankTopN          int
	SimilarityThreshold float64
	HistoryWindow       int

	// External calls
	ExternalTimeout int // seconds, applied per call

	FallbackMessage string

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),
		EmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		RerankerURL: getEnv("RERANKER_URL", "http://localhost:8001"),

		DocumentsDir:  getEnv("DOCUMENTS_DIR", "./documents"),
		ChunkTable:    getEnv("CHUNK_TABLE", "vectorstore"),
		ChatLogTable:  getEnv("CHAT_LOG_TABLE", "chat_logs"),
		ChunkSize:     getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:  getEnvInt("CHUNK_OVERLAP", 50),
		StorePageSize: getEnvInt("STORE_PAGE_SIZE", 1000),

		RetrieverK:          getEnvInt("RETRIEVER_K", 3),
		RerankTopN:          getEnvInt("RERANK_TOP_N", 2),
		SimilarityThreshold: getEnvFloat64("SIMILARITY_THRESHOLD", 0.3),
		HistoryWindow:       getEnvInt("HISTORY_WINDOW", 5),

		ExternalTimeout: getEnvInt("EXTERNAL_TIMEOUT_SECONDS", 30),

		FallbackMessage: getEnv("FALLBACK_MESSAGE", DefaultFallbackMessage),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required - set it in .env file")
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
