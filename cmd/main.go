package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ga-assistant-backend/internal/ai"
	"ga-assistant-backend/internal/config"
	"ga-assistant-backend/internal/logger"
	"ga-assistant-backend/internal/store"
	"ga-assistant-backend/internal/telemetry"
	"ga-assistant-backend/internal/vectorstore"
	"ga-assistant-backend/middleware"
	"ga-assistant-backend/routes"
	"ga-assistant-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("ga-assistant-backend", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled, failed to initialize tracer", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Connect to Postgres
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	rowStore, err := store.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}
	defer rowStore.Close()

	// Gemini clients
	geminiClient, err := ai.NewGeminiClient(cfg)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer geminiClient.Close()

	embedder, err := ai.NewGeminiEmbedder(cfg)
	if err != nil {
		log.Fatal("Failed to create embedder:", err)
	}
	defer embedder.Close()

	reranker := ai.NewRerankerClient(cfg.RerankerURL, time.Duration(cfg.ExternalTimeout)*time.Second)

	// Wire the pipeline
	index := vectorstore.NewIndex(rowStore.Pool(), cfg.ChunkTable)
	ingestion := services.NewIngestionService(rowStore, index, embedder, cfg.ChunkTable, cfg.StorePageSize)

	retriever, err := services.NewRetriever(index, embedder, cfg.RetrieverK)
	if err != nil {
		log.Fatal("Failed to create retriever:", err)
	}
	refiner, err := services.NewRefiner(reranker, cfg.RerankTopN, cfg.SimilarityThreshold)
	if err != nil {
		log.Fatal("Failed to create refiner:", err)
	}
	builder, err := services.NewPromptBuilder(services.DefaultSystemTemplate(cfg.FallbackMessage), cfg.HistoryWindow)
	if err != nil {
		log.Fatal("Failed to create prompt builder:", err)
	}
	pipeline := services.NewQueryPipeline(retriever, refiner, builder, geminiClient)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("ga-assistant-backend"))
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupChatRoutes(router, pipeline)
	routes.SetupDBRoutes(router, cfg, ingestion, rowStore)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
