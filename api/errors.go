package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_api/internal/catalog"
	"sales_api/internal/sales"
)

// ErrInvalidStatus is returned when a sale status patch names anything other
// than a cancellation.
var ErrInvalidStatus = errors.New("invalid status value")

func statusFor(err error) int {
	switch {
	case errors.Is(err, sales.ErrValidation),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, sales.ErrInvalidQuantity),
		errors.Is(err, sales.ErrQuantityExceedsLimit),
		errors.Is(err, sales.ErrDuplicateProduct):
		return http.StatusBadRequest
	case errors.Is(err, sales.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sales.ErrInactive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sales.ErrInsufficientStock),
		errors.Is(err, sales.ErrAlreadyCancelled),
		errors.Is(err, sales.ErrNotCancelled),
		errors.Is(err, sales.ErrSaleCancelled),
		errors.Is(err, sales.ErrDuplicateSaleNumber),
		errors.Is(err, catalog.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": msg}. Unclassified errors are logged and
// hidden behind a generic message.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("failed to bind JSON request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "details": err.Error()})
}
