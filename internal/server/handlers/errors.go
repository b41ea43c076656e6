package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/domain/models"
)

// respondError maps domain errors to a status and a short message. Raw error
// text only goes to the log.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status, msg := http.StatusInternalServerError, "something went wrong"
	switch {
	case errors.Is(err, models.ErrValidation):
		status, msg = http.StatusBadRequest, "please check the entry and try again"
	case errors.Is(err, models.ErrNoEntries):
		status, msg = http.StatusNotFound, "nothing logged for that day"
	case errors.Is(err, models.ErrStorage):
		status, msg = http.StatusServiceUnavailable, "could not reach your food log, try again"
	}

	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
	} else {
		logger.Warn(op+" rejected", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}
