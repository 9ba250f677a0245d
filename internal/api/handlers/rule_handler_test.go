package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenlock/warden/internal/auth"
	"github.com/wardenlock/warden/internal/rules"
)

func setupRuleRouter(t *testing.T) (*gin.Engine, *rules.Registry, *rules.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := rules.NewRegistry()
	store := rules.NewStore(filepath.Join(t.TempDir(), "warden.json"))
	verifier := auth.NewVerifier(rules.DefaultPasswordHash)
	handler := NewRuleHandler(registry, store, verifier)

	r := gin.New()
	r.GET("/api/rules", handler.List)
	r.POST("/api/rules", handler.Upsert)
	r.DELETE("/api/rules", handler.Delete)
	return r, registry, store
}

func TestRuleHandler_UpsertAndList(t *testing.T) {
	r, registry, store := setupRuleRouter(t)

	w := postJSON(t, r, "/api/rules", gin.H{
		"path": "/usr/bin/game", "name": "Game", "blocked": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	rule, ok := registry.Get("/usr/bin/game")
	require.True(t, ok)
	assert.Equal(t, "Game", rule.Name)
	assert.True(t, rule.Enabled)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var listed []rules.Rule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "/usr/bin/game", listed[0].Path)

	// The mutation reached disk.
	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Rules, 1)
}

func TestRuleHandler_UpsertInvalidRule(t *testing.T) {
	r, _, _ := setupRuleRouter(t)

	// Time-restricted rule with a malformed clock.
	w := postJSON(t, r, "/api/rules", gin.H{
		"path": "/usr/bin/game", "name": "Game", "blocked": true,
		"time_restricted": true, "start_time": "9am", "end_time": "17:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing path.
	w = postJSON(t, r, "/api/rules", gin.H{"name": "Game", "blocked": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRuleHandler_Delete(t *testing.T) {
	r, registry, _ := setupRuleRouter(t)
	require.NoError(t, registry.Upsert(rules.Rule{Path: "/usr/bin/game", Name: "Game", Enabled: true}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/rules?path=/usr/bin/game", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, registry.Len())

	// Unknown path and missing parameter.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/rules?path=/usr/bin/other", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/rules", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
