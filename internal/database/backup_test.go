package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"indigo/internal/config"
	"indigo/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackupFixture(t *testing.T, retentionDays int) (*DB, *BackupService, string) {
	t.Helper()
	tempDir := t.TempDir()
	storagePath := filepath.Join(tempDir, "backups")

	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(tempDir, "menu.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.SeedItems(context.Background(), models.SeedMenu()))

	s := NewBackupService(db, config.BackupConfig{
		Enabled:       true,
		StoragePath:   storagePath,
		RetentionDays: retentionDays,
	}, &logger)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 8, 30, 0, 0, time.Local) }
	return db, s, storagePath
}

func TestPerformBackup(t *testing.T) {
	_, s, storagePath := newBackupFixture(t, 7)

	path, err := s.PerformBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(storagePath, "menu_20260310_083000.db"), path)

	logger := zerolog.Nop()
	restored, err := NewDB(path, &logger)
	require.NoError(t, err)
	defer restored.Close()

	items, err := restored.ListItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, len(models.SeedMenu()))

	_, err = s.PerformBackup(context.Background())
	assert.Error(t, err, "same stamp must not overwrite an existing backup")
}

func TestCleanupOldBackups(t *testing.T) {
	_, s, storagePath := newBackupFixture(t, 2)
	require.NoError(t, os.MkdirAll(storagePath, 0o755))

	files := map[string]bool{
		"menu_20260301_000000.db": false, // past retention
		"menu_20260309_120000.db": true,
		"menu_garbage.db":         true,
		"notes.txt":               true,
	}
	for name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(storagePath, name), []byte("x"), 0o644))
	}

	assert.Equal(t, 1, s.CleanupOldBackups())
	for name, kept := range files {
		if kept {
			assert.FileExists(t, filepath.Join(storagePath, name))
		} else {
			assert.NoFileExists(t, filepath.Join(storagePath, name))
		}
	}
}

func TestBackupInterval(t *testing.T) {
	logger := zerolog.Nop()
	cases := map[string]time.Duration{"": 24 * time.Hour, "6h": 6 * time.Hour, "nonsense": 24 * time.Hour, "-1h": 24 * time.Hour}
	for schedule, want := range cases {
		s := NewBackupService(nil, config.BackupConfig{Schedule: schedule}, &logger)
		assert.Equal(t, want, s.interval(), schedule)
	}
}

func TestBackupService_Disabled(t *testing.T) {
	logger := zerolog.Nop()
	s := NewBackupService(nil, config.BackupConfig{Enabled: false}, &logger)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled backup service should return immediately")
	}
}
