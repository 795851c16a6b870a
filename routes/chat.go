package routes

import (
	"net/http"

	"ga-assistant-backend/internal/logger"
	"ga-assistant-backend/middleware"
	"ga-assistant-backend/services"
	"ga-assistant-backend/utils"

	"github.com/gin-gonic/gin"
)

// RagRequest is the body of POST /request/rag. History carries the prior
// conversation as a JSON array of {role, content} turns, serialized by the
// widget as a string.
type RagRequest struct {
	InputText string `json:"input_text"`
	History   string `json:"history"`
}

// SetupChatRoutes registers the retrieval-augmented chat endpoint.
func SetupChatRoutes(router *gin.Engine, pipeline *services.QueryPipeline) {
	router.POST("/request/rag", func(c *gin.Context) {
		var req RagRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			// Older widget builds send the query via URL parameters.
			req.InputText = c.Query("input_text")
			req.History = c.Query("history")
		}
		if req.InputText == "" {
			req.InputText = c.Query("input_text")
		}
		if req.History == "" {
			req.History = c.Query("history")
		}

		if req.InputText == "" {
			utils.RespondWithBadRequest(c, "input_text is required", nil)
			return
		}

		answer, err := pipeline.Answer(c.Request.Context(), req.InputText, req.History)
		if err != nil {
			logger.Error("Chat request failed", "request_id", middleware.GetRequestID(c), "error", err)
			utils.RespondWithDomainError(c, err)
			return
		}

		c.String(http.StatusOK, answer)
	})
}
