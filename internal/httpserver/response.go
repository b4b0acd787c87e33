package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"beira/internal/domain"
	"beira/internal/service/syncer"
)

// respondError maps domain errors to HTTP statuses and writes a JSON error
// body.
func (h *handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, syncer.ErrSyncInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotConfigured), errors.Is(err, domain.ErrNotConnected):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
