package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"loungebook/internal/config"
)

// BackupService periodically copies the file store's collection files
// into a timestamped backup directory and prunes old backups.
type BackupService struct {
	store  *FileStore
	config config.BackupConfig
	logger zerolog.Logger
}

// NewBackupService builds a backup service for the given file store.
func NewBackupService(store *FileStore, cfg config.BackupConfig, logger zerolog.Logger) *BackupService {
	if cfg.IntervalHours <= 0 {
		cfg.IntervalHours = 24
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 14
	}
	if cfg.Path == "" {
		cfg.Path = "backups"
	}
	return &BackupService{
		store:  store,
		config: cfg,
		logger: logger.With().Str("component", "backup").Logger(),
	}
}

// Start runs the backup loop until the context is cancelled.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("backup service is disabled")
		return
	}

	if err := os.MkdirAll(s.config.Path, 0o755); err != nil {
		s.logger.Error().Err(err).Msg("failed to create backup directory")
		return
	}

	interval := time.Duration(s.config.IntervalHours) * time.Hour
	s.logger.Info().Dur("interval", interval).Msg("backup service started")

	// First backup shortly after startup.
	select {
	case <-time.After(1 * time.Minute):
		s.runOnce()
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce()
		case <-ctx.Done():
			return
		}
	}
}

func (s *BackupService) runOnce() {
	dest, err := s.PerformBackup()
	if err != nil {
		s.logger.Error().Err(err).Msg("backup failed")
	} else {
		s.logger.Info().Str("path", dest).Msg("backup completed")
	}

	deleted, err := s.CleanupOldBackups()
	if err != nil {
		s.logger.Error().Err(err).Msg("backup cleanup failed")
	} else if deleted > 0 {
		s.logger.Info().Int("deleted", deleted).Msg("cleaned up old backups")
	}
}

// PerformBackup copies every collection file into a timestamped
// directory under the backup path and returns that directory.
func (s *BackupService) PerformBackup() (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	dest := filepath.Join(s.config.Path, "loungebook_"+timestamp)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	entries, err := os.ReadDir(s.store.Dir())
	if err != nil {
		return "", fmt.Errorf("read data directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		src := filepath.Join(s.store.Dir(), entry.Name())
		if err := copyFile(src, filepath.Join(dest, entry.Name())); err != nil {
			return "", fmt.Errorf("copy %s: %w", entry.Name(), err)
		}
	}

	return dest, nil
}

// CleanupOldBackups removes backup directories older than the retention
// period and returns how many were deleted.
func (s *BackupService) CleanupOldBackups() (int, error) {
	cutoff := time.Now().Add(-time.Duration(s.config.RetentionDays) * 24 * time.Hour)

	entries, err := os.ReadDir(s.config.Path)
	if err != nil {
		return 0, fmt.Errorf("read backup directory: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "loungebook_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(s.config.Path, entry.Name())); err != nil {
				s.logger.Error().Err(err).Str("name", entry.Name()).Msg("failed to remove old backup")
				continue
			}
			deleted++
		}
	}
	return deleted, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
