package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"go.uber.org/zap"
)

// statusFor maps a service error onto its HTTP status.
func statusFor(err error) int {
	var valErr *model.ErrValidation
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, model.ErrNestingLimitExceeded):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": msg}. Unexpected errors are logged and
// hidden behind a generic message.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(op, zap.Error(err))
		c.JSON(status, gin.H{"error": op + " failed"})
		return
	}
	var valErr *model.ErrValidation
	if errors.As(err, &valErr) {
		c.JSON(status, gin.H{"error": valErr.Msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
