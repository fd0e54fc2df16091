package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// BackupConfig controls on-demand data file backups.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// BackupService copies the data file into a backup directory and prunes
// old copies. Backups run synchronously when requested; there is no
// background scheduler.
type BackupService struct {
	dataPath string
	config   BackupConfig
	logger   *zerolog.Logger
}

// NewBackupService creates a backup service for the given data file.
func NewBackupService(dataPath string, cfg BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{dataPath: dataPath, config: cfg, logger: logger}
}

// Perform copies the current data file to a timestamped backup and
// returns the backup path.
func (s *BackupService) Perform() (string, error) {
	if !s.config.Enabled {
		return "", nil
	}
	if err := os.MkdirAll(s.config.Path, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(s.config.Path, fmt.Sprintf("backup_%s.dat", timestamp))

	source, err := os.Open(s.dataPath)
	if err != nil {
		return "", fmt.Errorf("open data file: %w", err)
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return "", fmt.Errorf("copy data file: %w", err)
	}

	s.logger.Info().Str("path", backupPath).Msg("data file backed up")
	return backupPath, nil
}

// CleanupOld removes backups older than the retention window.
func (s *BackupService) CleanupOld() {
	if s.config.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	entries, err := os.ReadDir(s.config.Path)
	if err != nil {
		s.logger.Error().Err(err).Msg("read backup directory failed")
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "backup_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.config.Path, entry.Name())
			if err := os.Remove(path); err != nil {
				s.logger.Error().Err(err).Str("path", path).Msg("remove old backup failed")
			}
		}
	}
}
