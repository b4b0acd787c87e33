package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"beira/internal/service/syncer"
)

func (h *handlers) syncEtsyOrders(c *gin.Context) {
	days, ok := h.daysBack(c)
	if !ok {
		return
	}
	result, err := h.deps.Syncs.EtsyOrders(c.Request.Context(), days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) syncSquareOrders(c *gin.Context) {
	days, ok := h.daysBack(c)
	if !ok {
		return
	}
	result, err := h.deps.Syncs.SquareOrders(c.Request.Context(), days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) syncSquareCatalog(c *gin.Context) {
	result, err := h.deps.Syncs.SquareCatalog(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// daysBack parses the optional ?days= query, writing a 400 on bad input.
func (h *handlers) daysBack(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return syncer.DefaultDaysBack, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return 0, false
	}
	return n, true
}
