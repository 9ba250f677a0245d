package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wardenlock/warden/internal/auth"
	"github.com/wardenlock/warden/internal/rules"
)

// RuleHandler exposes the block-rule set. Mutations go through the registry
// first and are then persisted; persistence failures are reported but the
// in-memory rule set stays authoritative for enforcement.
type RuleHandler struct {
	registry *rules.Registry
	store    *rules.Store
	verifier *auth.Verifier
}

func NewRuleHandler(registry *rules.Registry, store *rules.Store, verifier *auth.Verifier) *RuleHandler {
	return &RuleHandler{registry: registry, store: store, verifier: verifier}
}

func (h *RuleHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Snapshot())
}

func (h *RuleHandler) Upsert(c *gin.Context) {
	var rule rules.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.registry.Upsert(rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.persist(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *RuleHandler) Delete(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter required"})
		return
	}
	if !h.registry.Remove(path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rule for path"})
		return
	}
	if err := h.persist(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rule removed"})
}

func (h *RuleHandler) persist() error {
	return h.store.Save(rules.File{
		Rules:        h.registry.Snapshot(),
		PasswordHash: h.verifier.Hash(),
	})
}
