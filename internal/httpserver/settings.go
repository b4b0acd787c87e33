package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"beira/internal/domain"
	settingrepo "beira/internal/repository/setting"
)

// getSettings reports connection state per platform. Secret values never
// leave the store; only their presence is exposed.
func (h *handlers) getSettings(c *gin.Context) {
	ctx := c.Request.Context()

	etsyConnected := true
	if _, err := h.deps.Settings.Get(ctx, settingrepo.KeyEtsyAccessToken); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.respondError(c, err)
			return
		}
		etsyConnected = false
	}

	squareConfigured := h.deps.SquareConfigured
	if !squareConfigured {
		if _, err := h.deps.Settings.Get(ctx, settingrepo.KeySquareAccessToken); err == nil {
			squareConfigured = true
		} else if !errors.Is(err, domain.ErrNotFound) {
			h.respondError(c, err)
			return
		}
	}

	etsyLastSync, _ := h.deps.Settings.Get(ctx, settingrepo.KeyEtsyLastSync)
	squareLastSync, _ := h.deps.Settings.Get(ctx, settingrepo.KeySquareLastSync)

	c.JSON(http.StatusOK, gin.H{
		"etsyConnected":    etsyConnected,
		"etsyLastSync":     etsyLastSync,
		"squareConfigured": squareConfigured,
		"squareLastSync":   squareLastSync,
	})
}

type squareTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *handlers) putSquareToken(c *gin.Context) {
	var req squareTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	if err := h.deps.Settings.Set(c.Request.Context(), settingrepo.KeySquareAccessToken, req.Token, true); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}
