package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"indigo/internal/config"
	"indigo/internal/models"

	"github.com/rs/zerolog"
)

const (
	backupPrefix     = "menu_"
	backupSuffix     = ".db"
	backupTimeLayout = "20060102_150405"
)

// BackupService periodically writes a consistent copy of the open catalog
// database and prunes copies past the retention window.
type BackupService struct {
	db     *DB
	config config.BackupConfig
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (s *BackupService) interval() time.Duration {
	if s.config.Schedule == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(s.config.Schedule)
	if err != nil || d <= 0 {
		s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("Failed to parse backup schedule, using default 24h")
		return 24 * time.Hour
	}
	return d
}

// Start backs up once immediately and then on every tick until ctx ends.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	interval := s.interval()
	s.logger.Info().Dur("interval", interval).Msg("Backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.PerformBackup(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Backup failed")
		}
		if removed := s.CleanupOldBackups(); removed > 0 {
			s.logger.Info().Int("removed", removed).Msg("Old backups pruned")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PerformBackup runs VACUUM INTO on the live connection, checks that the
// copy opens and holds the same number of items, and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	backupPath := filepath.Join(s.config.StoragePath, backupPrefix+s.now().Format(backupTimeLayout)+backupSuffix)
	if _, err := os.Stat(backupPath); err == nil {
		return "", fmt.Errorf("backup %s already exists", backupPath)
	}

	var want int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+models.MenuCollection).Scan(&want); err != nil {
		return "", fmt.Errorf("count items: %w", err)
	}

	quoted := strings.ReplaceAll(backupPath, "'", "''")
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", backupPath, err)
	}

	got, err := countBackupItems(ctx, backupPath)
	if err != nil {
		_ = os.Remove(backupPath)
		return "", fmt.Errorf("verify backup: %w", err)
	}
	if got != want {
		_ = os.Remove(backupPath)
		return "", fmt.Errorf("verify backup: %d items, expected %d", got, want)
	}

	s.logger.Info().Str("path", backupPath).Int("items", got).Msg("Backup completed")
	return backupPath, nil
}

func countBackupItems(ctx context.Context, path string) (int, error) {
	copyDB, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return 0, err
	}
	defer copyDB.Close()

	var n int
	err = copyDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+models.MenuCollection).Scan(&n)
	return n, err
}

// backupTime reads the timestamp encoded in a backup file name.
func backupTime(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix)
	t, err := time.ParseInLocation(backupTimeLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CleanupOldBackups removes backups whose name stamp is older than the
// retention window and returns how many were removed. Other files are kept.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return 0
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		taken, ok := backupTime(file.Name())
		if !ok || !taken.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.StoragePath, file.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", file.Name()).Msg("Failed to delete old backup")
			continue
		}
		removed++
	}
	return removed
}
