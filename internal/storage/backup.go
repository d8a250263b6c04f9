package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrBackupExists is returned when a backup with the same tag is present.
var ErrBackupExists = errors.New("backup already exists")

// BackupDir returns the directory backups are written to.
func (s *SQLiteStorage) BackupDir() string {
	return filepath.Join(filepath.Dir(s.dbPath), "backups")
}

// Backup writes a consistent copy of the database and returns its path.
// An empty tag is replaced with a timestamped one.
func (s *SQLiteStorage) Backup(ctx context.Context, tag string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if tag == "" {
		tag = fmt.Sprintf("backup-%s", s.now().Format("2006-01-02-150405"))
	}
	if err := validateTag(tag); err != nil {
		return "", err
	}

	dir := s.BackupDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest, err := filepath.Abs(filepath.Join(dir, tag+".db"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve backup path: %w", err)
	}
	if strings.ContainsAny(dest, `'";`) {
		return "", fmt.Errorf("invalid backup path %q", dest)
	}
	if _, statErr := os.Stat(dest); statErr == nil {
		return "", fmt.Errorf("%w: %s", ErrBackupExists, tag)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	// #nosec G201 - dest is validated above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	return dest, nil
}

// ListBackups returns backup files, newest first.
func (s *SQLiteStorage) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.BackupDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Tag:       strings.TrimSuffix(entry.Name(), ".db"),
			Path:      filepath.Join(s.BackupDir(), entry.Name()),
			CreatedAt: info.ModTime(),
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// BackupInfo describes one backup file.
type BackupInfo struct {
	CreatedAt time.Time
	Tag       string
	Path      string
	Size      int64
}
