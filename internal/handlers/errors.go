package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/log"
)

// writeError maps the error taxonomy onto status codes. Unknown errors are
// logged and reported without detail.
func writeError(c *gin.Context, err error) {
	var (
		insufficient *apperrs.InsufficientHoldingError
		invalid      *apperrs.ValidationError
	)

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{"error": insufficient.Error(), "held": insufficient.Held})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Reason})
	case errors.Is(err, apperrs.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrs.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperrs.ErrInvalidCredentials.Error()})
	case errors.Is(err, apperrs.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": apperrs.ErrEmailTaken.Error()})
	case errors.Is(err, apperrs.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": apperrs.ErrUsernameTaken.Error()})
	case errors.Is(err, apperrs.ErrQuoteUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": apperrs.ErrQuoteUnavailable.Error()})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
