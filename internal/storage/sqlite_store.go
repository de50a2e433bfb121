package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
)

// SQLiteStore keeps the catalog and collection in a SQLite database.
// Each save replaces the table contents in a single transaction.
type SQLiteStore struct {
	db     *DB
	logger *slog.Logger
}

// sqliteHeader starts every SQLite database file.
var sqliteHeader = []byte("SQLite format 3\x00")

// OpenSQLiteStore opens (and migrates) the database at path.
//
// A file that is not a usable database is moved aside to
// {path}.corrupt-{timestamp} and replaced by an empty one, matching the
// JSON backend's corrupt-loads-empty behavior.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := OpenDB(DefaultConfig(path))
	if err != nil {
		if !isCorruptDatabase(path, err) {
			return nil, err
		}

		aside, moveErr := quarantineDatabase(path)
		if moveErr != nil {
			return nil, fmt.Errorf("failed to move corrupt database aside: %w (original error: %v)", moveErr, err)
		}
		logger.Warn("Database is corrupt, starting empty", "path", path, "moved_to", aside, "error", err)

		db, err = OpenDB(DefaultConfig(path))
		if err != nil {
			return nil, err
		}
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// isCorruptDatabase reports whether openErr was caused by the file at path
// not being a readable SQLite database.
func isCorruptDatabase(path string, openErr error) bool {
	msg := strings.ToLower(openErr.Error())
	if strings.Contains(msg, "not a database") || strings.Contains(msg, "malformed") {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, len(sqliteHeader))
	n, err := io.ReadFull(f, header)
	if n == 0 {
		return false
	}
	return err != nil || !bytes.Equal(header, sqliteHeader)
}

// quarantineDatabase renames the database and its WAL/SHM side files with
// a .corrupt-{timestamp} suffix and returns the new database path.
func quarantineDatabase(path string) (string, error) {
	suffix := ".corrupt-" + time.Now().Format("20060102-150405")
	aside := path + suffix

	if err := os.Rename(path, aside); err != nil {
		return "", err
	}
	for _, side := range []string{"-wal", "-shm"} {
		if err := os.Rename(path+side, aside+side); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return aside, nil
}

// LoadCatalog returns every card in ingestion order. Rows that no longer
// decode are skipped with a warning.
func (s *SQLiteStore) LoadCatalog(ctx context.Context) (cards.Catalog, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT identity_key, data FROM cards ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	catalog := cards.Catalog{}
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}

		var card cards.Card
		if err := json.Unmarshal([]byte(data), &card); err != nil {
			s.logger.Warn("Skipping corrupt card row", "identity_key", key, "error", err)
			continue
		}
		catalog = append(catalog, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return catalog, nil
}

// SaveCatalog replaces the stored catalog.
func (s *SQLiteStore) SaveCatalog(ctx context.Context, catalog cards.Catalog) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
			return fmt.Errorf("failed to clear cards: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO cards (identity_key, position, name, set_code, card_type, data)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare card insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, card := range catalog {
			data, err := json.Marshal(card)
			if err != nil {
				return fmt.Errorf("failed to marshal card %s: %w", card.IdentityKey, err)
			}
			if _, err := stmt.ExecContext(ctx,
				card.IdentityKey, i, card.Name, card.SetCode, card.CardType, string(data),
			); err != nil {
				return fmt.Errorf("failed to insert card %s: %w", card.IdentityKey, err)
			}
		}

		return nil
	})
}

// LoadCollection returns the owned quantities.
func (s *SQLiteStore) LoadCollection(ctx context.Context) (cards.Collection, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT identity_key, quantity FROM collection`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer func() { _ = rows.Close() }()

	collection := cards.Collection{}
	for rows.Next() {
		var key string
		var qty int
		if err := rows.Scan(&key, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		collection[key] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collection: %w", err)
	}

	return collection, nil
}

// SaveCollection replaces the stored collection.
func (s *SQLiteStore) SaveCollection(ctx context.Context, collection cards.Collection) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM collection`); err != nil {
			return fmt.Errorf("failed to clear collection: %w", err)
		}

		for key, qty := range collection {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO collection (identity_key, quantity) VALUES (?, ?)`, key, qty,
			); err != nil {
				return fmt.Errorf("failed to insert quantity for %s: %w", key, err)
			}
		}

		return nil
	})
}

// RecordSync appends a sync run to the history.
func (s *SQLiteStore) RecordSync(ctx context.Context, run SyncRun) error {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO sync_runs (partitions, card_count, skipped, duplicates, finished_at)
		VALUES (?, ?, ?, ?, ?)
	`, strings.Join(run.Partitions, ","), run.CardCount, run.Skipped, run.Duplicates, finished.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// SyncHistory returns the most recent sync runs, newest first.
func (s *SQLiteStore) SyncHistory(ctx context.Context, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT partitions, card_count, skipped, duplicates, finished_at
		FROM sync_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []SyncRun
	for rows.Next() {
		var run SyncRun
		var partitions, finished string
		if err := rows.Scan(&partitions, &run.CardCount, &run.Skipped, &run.Duplicates, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, finished); err == nil {
			run.FinishedAt = t
		}
		if partitions != "" {
			run.Partitions = strings.Split(partitions, ",")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync history: %w", err)
	}

	return runs, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
