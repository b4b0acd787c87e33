package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"beira/internal/domain"
	orderrepo "beira/internal/repository/order"
)

const defaultRecentLimit = 10

func (h *handlers) listOrders(c *gin.Context) {
	filter := orderrepo.Filter{
		Platform: domain.Platform(c.Query("platform")),
		Status:   c.Query("status"),
	}
	if filter.Platform != "" && !filter.Platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform"})
		return
	}
	orders, err := h.deps.Orders.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) recentOrders(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	orders, err := h.deps.Orders.Recent(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) getOrder(c *gin.Context) {
	platform := domain.Platform(c.Param("platform"))
	if !platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform"})
		return
	}
	order, err := h.deps.Orders.GetByPlatformID(c.Request.Context(), platform, c.Param("orderID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type fulfillmentRequest struct {
	Status string `json:"status" binding:"required"`
}

// pushFulfillment updates the fulfillment state of a Square order remotely
// and mirrors the new state locally when the push succeeds.
func (h *handlers) pushFulfillment(c *gin.Context) {
	var req fulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	ctx := c.Request.Context()
	platformOrderID := c.Param("orderID")
	order, err := h.deps.Orders.GetByPlatformID(ctx, domain.PlatformSquare, platformOrderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ok, err := h.deps.Syncs.PushSquareFulfillment(ctx, platformOrderID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{"updated": false})
		return
	}

	if err := h.deps.Orders.SetFulfillmentStatus(ctx, order.ID, strings.ToLower(req.Status)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "fulfillmentStatus": strings.ToLower(req.Status)})
}
