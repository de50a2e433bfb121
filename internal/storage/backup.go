package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ramonehamilton/SWU-Companion/internal/config"
)

// BackupManager snapshots the data directory: the catalog and collection
// for the configured backend, plus the deck tree.
type BackupManager struct {
	cfg    *config.Config
	root   string
	logger *slog.Logger
}

// BackupInfo describes one snapshot.
type BackupInfo struct {
	Path    string
	Name    string
	Files   int
	Size    int64
	ModTime time.Time
}

// NewBackupManager creates a backup manager storing snapshots under
// {data dir}/backups.
func NewBackupManager(cfg *config.Config, logger *slog.Logger) *BackupManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupManager{
		cfg:    cfg,
		root:   cfg.Resolve("backups"),
		logger: logger,
	}
}

// GetBackupDir returns the directory holding snapshots.
func (bm *BackupManager) GetBackupDir() string {
	return bm.root
}

// Backup writes a snapshot named name (a timestamp when empty) and returns
// its directory.
func (bm *BackupManager) Backup(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = "backup_" + time.Now().Format("20060102_150405")
	}
	dest := filepath.Join(bm.root, name)
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("backup %s already exists", name)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	var err error
	if bm.cfg.Data.Backend == config.BackendSQLite {
		err = bm.backupSQLite(ctx, filepath.Join(dest, filepath.Base(bm.cfg.SQLitePath())))
	} else {
		err = bm.backupJSON(dest)
	}
	if err == nil {
		err = copyTree(bm.cfg.DeckRoot(), filepath.Join(dest, "decks"))
	}
	if err != nil {
		_ = os.RemoveAll(dest)
		return "", err
	}

	bm.logger.Info("Backup created", "path", dest)
	return dest, nil
}

// backupSQLite uses VACUUM INTO, which yields a consistent copy without
// an exclusive lock, then verifies the result.
func (bm *BackupManager) backupSQLite(ctx context.Context, backupPath string) error {
	src := bm.cfg.SQLitePath()
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	db, err := sql.Open("sqlite", src)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO %q", backupPath)); err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}

	return VerifyBackup(backupPath)
}

func (bm *BackupManager) backupJSON(dest string) error {
	for _, src := range []string{bm.cfg.CardsPath(), bm.cfg.CollectionPath()} {
		err := copyFile(src, filepath.Join(dest, filepath.Base(src)))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// VerifyBackup checks that a file is a readable SQLite database.
func VerifyBackup(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query backup database: %w", err)
	}
	return nil
}

// ListBackups returns snapshots, newest first.
func (bm *BackupManager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		b := BackupInfo{
			Path:    filepath.Join(bm.root, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
		}
		_ = filepath.WalkDir(b.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if fi, err := d.Info(); err == nil {
				b.Files++
				b.Size += fi.Size()
			}
			return nil
		})
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

func copyTree(src, dst string) error {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		if filepath.Ext(path) == ".tmp" {
			return nil
		}
		return copyFile(path, filepath.Join(dst, rel))
	})
}
