package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listCustomers(c *gin.Context) {
	customers, err := h.deps.Customers.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// getCustomer returns the customer with their order history and messages.
func (h *handlers) getCustomer(c *gin.Context) {
	ctx := c.Request.Context()
	customer, err := h.deps.Customers.GetByID(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	orders, err := h.deps.Orders.ListByCustomer(ctx, customer.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	messages, err := h.deps.Messages.ListByCustomer(ctx, customer.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customer": customer,
		"orders":   orders,
		"messages": messages,
	})
}
