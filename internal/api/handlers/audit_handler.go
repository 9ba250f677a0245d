package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wardenlock/warden/internal/audit"
)

type AuditHandler struct {
	log *audit.Log
}

func NewAuditHandler(log *audit.Log) *AuditHandler {
	return &AuditHandler{log: log}
}

// List returns the audit ring, most recent first.
func (h *AuditHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.log.List())
}

func (h *AuditHandler) Clear(c *gin.Context) {
	h.log.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "audit log cleared"})
}
