package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wardenlock/warden/internal/procctl"
)

// ProcessHandler lets the UI browse running processes when authoring rules.
type ProcessHandler struct {
	scanner procctl.Scanner
}

func NewProcessHandler(scanner procctl.Scanner) *ProcessHandler {
	return &ProcessHandler{scanner: scanner}
}

func (h *ProcessHandler) List(c *gin.Context) {
	procs, err := h.scanner.List()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, procs)
}
