package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment string
	HTTPPort    string

	// ConfigPath is the persisted rule set and password hash.
	ConfigPath   string
	DatabasePath string
	LogDir       string

	ScanInterval     time.Duration
	ScanBackoff      time.Duration
	GrantTTL         time.Duration
	ChallengeTimeout time.Duration

	JWTSecret string

	BackupSchedule  string
	BackupDir       string
	BackupRetention int
}

// Load reads env vars and falls back to defaults so the daemon can boot with
// zero configuration. Invalid durations are configuration errors, never
// silently clamped.
func Load() (Config, error) {
	cfg := Config{
		Environment:    getEnv("WARDEN_ENV", "development"),
		HTTPPort:       getEnv("WARDEN_HTTP_PORT", "8750"),
		ConfigPath:     getEnv("WARDEN_CONFIG_PATH", filepath.Join("data", "warden.json")),
		DatabasePath:   getEnv("WARDEN_DB_PATH", filepath.Join("data", "warden.db")),
		LogDir:         getEnv("WARDEN_LOG_DIR", filepath.Join("data", "logs")),
		JWTSecret:      os.Getenv("WARDEN_JWT_SECRET"),
		BackupSchedule: getEnv("WARDEN_BACKUP_SCHEDULE", "0 3 * * *"),
		BackupDir:      getEnv("WARDEN_BACKUP_DIR", filepath.Join("data", "backups")),
	}

	var err error
	if cfg.ScanInterval, err = getDuration("WARDEN_SCAN_INTERVAL", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ScanBackoff, err = getDuration("WARDEN_SCAN_BACKOFF", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.GrantTTL, err = getDuration("WARDEN_GRANT_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ChallengeTimeout, err = getDuration("WARDEN_CHALLENGE_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.BackupRetention, err = getInt("WARDEN_BACKUP_RETENTION", 14); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		// Tokens won't survive a restart without a configured secret; fine
		// for a single-machine daemon, the UI just logs in again.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return Config{}, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.JWTSecret = hex.EncodeToString(buf)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", key, n)
	}
	return n, nil
}
