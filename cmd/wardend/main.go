package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wardenlock/warden/internal/api/routes"
	"github.com/wardenlock/warden/internal/audit"
	"github.com/wardenlock/warden/internal/auth"
	"github.com/wardenlock/warden/internal/challenge"
	"github.com/wardenlock/warden/internal/config"
	"github.com/wardenlock/warden/internal/database"
	"github.com/wardenlock/warden/internal/grants"
	"github.com/wardenlock/warden/internal/logger"
	"github.com/wardenlock/warden/internal/metrics"
	"github.com/wardenlock/warden/internal/monitor"
	"github.com/wardenlock/warden/internal/policy"
	"github.com/wardenlock/warden/internal/procctl"
	"github.com/wardenlock/warden/internal/rules"
	"github.com/wardenlock/warden/internal/server"
	"github.com/wardenlock/warden/internal/services"
	"github.com/wardenlock/warden/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Logging with rotation, to both stdout and file.
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		log.Fatalf("ensure log directory: %v", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "wardend.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	// CLI password reset, for a locked-out owner with shell access.
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if len(os.Args) != 3 {
			log.Fatalf("Usage: %s reset-password <new-password>", os.Args[0])
		}
		resetPassword(cfg, os.Args[2])
		return
	}

	logger.Log().Infof("starting %s %s", version.Name, version.Full())

	store := rules.NewStore(cfg.ConfigPath)
	registry := rules.NewRegistry()
	loaded, err := store.Load()
	if err != nil {
		// Enforcement still starts, just with nothing to enforce; better
		// than crashing on a corrupt file.
		logger.Log().WithError(err).Error("config unreadable, starting with empty rule set")
		loaded = rules.File{PasswordHash: rules.DefaultPasswordHash}
	}
	registry.Replace(loaded.Rules)
	logger.Log().WithField("rules", registry.Len()).Info("rule set loaded")

	verifier := auth.NewVerifier(loaded.PasswordHash)
	lockout := auth.NewLockout(verifier)
	grantStore := grants.NewStore()
	auditLog := audit.NewLog()

	registryMetrics := prometheus.NewRegistry()
	metrics.Register(registryMetrics)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	notificationService := services.NewNotificationService(db)

	procs := procctl.NewProcFS()
	broker := challenge.NewBroker()
	coordinator := challenge.NewCoordinator(
		verifier, grantStore, auditLog, procs, broker, notificationService,
		cfg.GrantTTL, cfg.ChallengeTimeout,
	)
	evaluator := policy.NewEvaluator(registry, grantStore)
	scheduler := monitor.NewScheduler(
		procs, registry, evaluator, coordinator, grantStore,
		cfg.ScanInterval, cfg.ScanBackoff,
	)

	backupService := services.NewBackupService(cfg)
	if err := backupService.Start(); err != nil {
		log.Fatalf("start backup schedule: %v", err)
	}

	authService := services.NewAuthService(verifier, lockout, registry, store, cfg.JWTSecret)

	srv, err := server.New(cfg, routes.Deps{
		DB:                  db,
		Registry:            registry,
		Store:               store,
		Verifier:            verifier,
		AuthService:         authService,
		NotificationService: notificationService,
		AuditLog:            auditLog,
		Grants:              grantStore,
		Broker:              broker,
		Scanner:             procs,
		Scheduler:           scheduler,
		Metrics:             registryMetrics,
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	scheduler.Start()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		logger.Log().WithError(err).Error("server error")
	}

	scheduler.Stop()
	backupService.Stop()
	logger.Log().Info("shutdown complete")
}

func resetPassword(cfg config.Config, newPassword string) {
	store := rules.NewStore(cfg.ConfigPath)
	loaded, err := store.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	loaded.PasswordHash = auth.HashPassword(newPassword)
	if err := store.Save(loaded); err != nil {
		log.Fatalf("save config: %v", err)
	}
	log.Printf("Password updated")
}
