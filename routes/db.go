package routes

import (
	"net/http"
	"time"

	"ga-assistant-backend/internal/config"
	"ga-assistant-backend/internal/logger"
	"ga-assistant-backend/internal/store"
	"ga-assistant-backend/models"
	"ga-assistant-backend/services"
	"ga-assistant-backend/utils"

	"github.com/gin-gonic/gin"
)

// InsertRowRequest is the body of POST /db/insert_row, used by the widget
// to log a question/answer pair after each exchange.
type InsertRowRequest struct {
	Content  string `json:"content"`
	Response string `json:"response"`
}

// SetupDBRoutes registers document ingestion and chat logging endpoints.
func SetupDBRoutes(router *gin.Engine, cfg *config.Config, ingestion *services.IngestionService, rowStore *store.Client) {
	db := router.Group("/db")

	db.POST("/ingest", func(c *gin.Context) {
		docs, err := services.LoadTextDocuments(cfg.DocumentsDir, "*.txt")
		if err != nil {
			logger.Error("Failed to load documents", "dir", cfg.DocumentsDir, "error", err)
			utils.RespondWithInternalError(c, "failed to load documents", gin.H{"error": err.Error()})
			return
		}
		if len(docs) == 0 {
			utils.RespondWithBadRequest(c, "no documents found to ingest", gin.H{"dir": cfg.DocumentsDir})
			return
		}

		result, err := ingestion.Ingest(c.Request.Context(), docs, cfg.ChunkSize, cfg.ChunkOverlap)
		if err != nil {
			logger.Error("Ingestion failed", "error", err)
			utils.RespondWithDomainError(c, err)
			return
		}

		logger.Info("Ingestion batch completed",
			"batch_id", result.BatchID,
			"documents", result.Documents,
			"chunks", result.Chunks)

		c.JSON(http.StatusOK, result)
	})

	db.POST("/insert_row", func(c *gin.Context) {
		var req InsertRowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "invalid request data", gin.H{"error": err.Error()})
			return
		}
		if req.Content == "" {
			utils.RespondWithBadRequest(c, "content is required", nil)
			return
		}

		entry := models.ChatLog{
			UserID:    "public",
			IPAddress: utils.GetClientIP(c.Request),
			Content:   req.Content,
			Response:  req.Response,
		}
		row := store.Row{
			"user_id":    entry.UserID,
			"ip_address": entry.IPAddress,
			"content":    entry.Content,
			"response":   entry.Response,
			"created_at": time.Now(),
		}
		if err := rowStore.Insert(c.Request.Context(), cfg.ChatLogTable, []store.Row{row}); err != nil {
			logger.Error("Failed to insert chat log", "error", err)
			utils.RespondWithInternalError(c, "failed to insert chat log", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
