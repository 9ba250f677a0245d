package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wardenlock/warden/internal/config"
	"github.com/wardenlock/warden/internal/logger"
)

// BackupService snapshots the configuration file on a cron schedule. It runs
// on the cron goroutine, outside the monitoring tick's time budget.
type BackupService struct {
	cfg  config.Config
	cron *cron.Cron
}

func NewBackupService(cfg config.Config) *BackupService {
	return &BackupService{cfg: cfg, cron: cron.New()}
}

// Start registers the schedule and launches the cron runner.
func (s *BackupService) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.BackupSchedule, func() {
		if err := s.Backup(); err != nil {
			logger.WithComponent("backup").WithError(err).Error("scheduled backup failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.cfg.BackupSchedule, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron runner, waiting for a running job to finish.
func (s *BackupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Backup copies the current configuration into the backup directory and
// prunes old snapshots down to the retention count.
func (s *BackupService) Backup() error {
	raw, err := os.ReadFile(s.cfg.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to back up yet.
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	if err := os.MkdirAll(s.cfg.BackupDir, 0o755); err != nil {
		return fmt.Errorf("ensure backup directory: %w", err)
	}

	name := fmt.Sprintf("warden-%s.json", time.Now().Format("20060102-150405"))
	dest := filepath.Join(s.cfg.BackupDir, name)
	if err := os.WriteFile(dest, raw, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	logger.WithComponent("backup").WithField("file", dest).Info("configuration backed up")

	return s.prune()
}

// List returns existing backup file names, newest first.
func (s *BackupService) List() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.BackupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *BackupService) prune() error {
	names, err := s.List()
	if err != nil {
		return err
	}
	for i := s.cfg.BackupRetention; i < len(names); i++ {
		if err := os.Remove(filepath.Join(s.cfg.BackupDir, names[i])); err != nil {
			return fmt.Errorf("prune backup %s: %w", names[i], err)
		}
	}
	return nil
}
