package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wardenlock/warden/internal/api/routes"
	"github.com/wardenlock/warden/internal/audit"
	"github.com/wardenlock/warden/internal/auth"
	"github.com/wardenlock/warden/internal/challenge"
	"github.com/wardenlock/warden/internal/config"
	"github.com/wardenlock/warden/internal/grants"
	"github.com/wardenlock/warden/internal/metrics"
	"github.com/wardenlock/warden/internal/monitor"
	"github.com/wardenlock/warden/internal/policy"
	"github.com/wardenlock/warden/internal/procctl"
	"github.com/wardenlock/warden/internal/rules"
	"github.com/wardenlock/warden/internal/services"
)

type staticScanner struct{ procs []procctl.Process }

func (s staticScanner) List() ([]procctl.Process, error) { return s.procs, nil }

type noopHandler struct{}

func (noopHandler) Handle(procctl.Process, string) challenge.Outcome {
	return challenge.OutcomeSkipped
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	registry := rules.NewRegistry()
	store := rules.NewStore(filepath.Join(t.TempDir(), "warden.json"))
	verifier := auth.NewVerifier(auth.HashPassword("password123"))
	lockout := auth.NewLockout(verifier)
	grantStore := grants.NewStore()
	evaluator := policy.NewEvaluator(registry, grantStore)
	scanner := staticScanner{}
	scheduler := monitor.NewScheduler(scanner, registry, evaluator, noopHandler{}, grantStore,
		time.Second, time.Second)

	metricsRegistry := prometheus.NewRegistry()
	metrics.Register(metricsRegistry)

	deps := routes.Deps{
		DB:                  db,
		Registry:            registry,
		Store:               store,
		Verifier:            verifier,
		AuthService:         services.NewAuthService(verifier, lockout, registry, store, "test-secret"),
		NotificationService: services.NewNotificationService(db),
		AuditLog:            audit.NewLog(),
		Grants:              grantStore,
		Broker:              challenge.NewBroker(),
		Scanner:             scanner,
		Scheduler:           scheduler,
		Metrics:             metricsRegistry,
	}

	srv, err := New(config.Config{Environment: "test", HTTPPort: "0"}, deps)
	require.NoError(t, err)
	return srv
}

func (s *Server) get(path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	s.Engine.ServeHTTP(w, req)
	return w
}

func TestServer_HealthIsPublic(t *testing.T) {
	srv := newTestServer(t)

	w := srv.get("/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_MetricsIsPublic(t *testing.T) {
	srv := newTestServer(t)

	w := srv.get("/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "warden_ticks_total")
}

func TestServer_ProtectedRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/v1/rules", "/api/v1/audit", "/api/v1/status"} {
		w := srv.get(path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestServer_LoginGrantsAccess(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"password": "password123"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp["token"]
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusOK, srv.get("/api/v1/rules", token).Code)
	assert.Equal(t, http.StatusOK, srv.get("/api/v1/status", token).Code)
	assert.Equal(t, http.StatusOK, srv.get("/api/v1/processes", token).Code)
}
