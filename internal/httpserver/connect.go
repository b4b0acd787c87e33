package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"beira/internal/domain"
)

// connectEtsy starts the Etsy OAuth flow by redirecting the merchant to the
// authorization page.
func (h *handlers) connectEtsy(c *gin.Context) {
	if h.deps.EtsyConnect == nil {
		h.respondError(c, fmt.Errorf("etsy credentials: %w", domain.ErrNotConfigured))
		return
	}
	authURL, err := h.deps.EtsyConnect.Begin(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// etsyCallback finishes the OAuth flow: it validates state, exchanges the
// code and persists the token set.
func (h *handlers) etsyCallback(c *gin.Context) {
	if h.deps.EtsyConnect == nil {
		h.respondError(c, fmt.Errorf("etsy credentials: %w", domain.ErrNotConfigured))
		return
	}
	if oauthErr := c.Query("error"); oauthErr != "" {
		desc := c.Query("error_description")
		if desc == "" {
			desc = oauthErr
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "etsy authorization failed: " + desc})
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state and code are required"})
		return
	}
	if err := h.deps.EtsyConnect.Complete(c.Request.Context(), state, code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}
