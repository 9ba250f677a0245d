package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wardenlock/warden/internal/grants"
)

type GrantHandler struct {
	store *grants.Store
}

func NewGrantHandler(store *grants.Store) *GrantHandler {
	return &GrantHandler{store: store}
}

// List returns currently valid grants, soonest expiry first.
func (h *GrantHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Active())
}

// Revoke drops the grant for a path so blocking applies again immediately.
func (h *GrantHandler) Revoke(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter required"})
		return
	}
	h.store.Revoke(path)
	c.JSON(http.StatusOK, gin.H{"message": "grant revoked"})
}
