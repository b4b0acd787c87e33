package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beira/internal/domain"
)

func (h *handlers) listProducts(c *gin.Context) {
	platform := domain.Platform(c.Query("platform"))
	if platform != "" && !platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform"})
		return
	}
	products, err := h.deps.Products.List(c.Request.Context(), platform)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
