package utils

import (
	"errors"
	"net/http"

	"ga-assistant-backend/models"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithDomainError maps a pipeline or ingestion error to the
// appropriate HTTP status. Timeouts from external services surface as 504
// so callers know the request is retryable.
func RespondWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrConfig), errors.Is(err, models.ErrParse):
		RespondWithBadRequest(c, err.Error(), nil)
	case errors.Is(err, models.ErrExternalTimeout):
		RespondWithError(c, http.StatusGatewayTimeout, "external_timeout", err.Error(), nil)
	case errors.Is(err, models.ErrIngestion):
		RespondWithError(c, http.StatusInternalServerError, "ingestion_error", err.Error(), nil)
	default:
		RespondWithInternalError(c, err.Error(), nil)
	}
}
