package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/storage"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"message": ...}. Classified errors carry their
// own client message; anything else is logged and reported as fallback, with
// the cause attached only in development.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		var de *domain.Error
		msg := err.Error()
		if errors.As(err, &de) {
			msg = de.Message
		}
		c.JSON(status, gin.H{"message": msg})
		return
	}

	h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error(fallback)
	body := gin.H{"message": fallback}
	if h.development {
		body["error"] = err.Error()
	}
	c.JSON(status, body)
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}
