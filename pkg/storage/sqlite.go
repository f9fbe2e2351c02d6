package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	errs "catalogscraper/pkg/errors"
	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
  position INTEGER PRIMARY KEY,
  url      TEXT NOT NULL UNIQUE,
  doc      TEXT NOT NULL
);`

// SQLiteStore keeps the collection in a SQLite table, one row per record.
// Save rewrites every row inside a single transaction.
type SQLiteStore struct {
	path   string
	db     *sql.DB
	logger logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(ctx context.Context, path string, log logger.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "open sqlite %s", path)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "ping sqlite %s", path)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "create sqlite schema")
	}

	return &SQLiteStore{
		path:   path,
		db:     db,
		logger: log.WithField("store", "sqlite:"+path),
	}, nil
}

// Location returns the database path
func (s *SQLiteStore) Location() string {
	return "sqlite:" + s.path
}

// Load reads every record in position order
func (s *SQLiteStore) Load(ctx context.Context) models.Collection {
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM records ORDER BY position")
	if err != nil {
		s.logger.WithError(err).Warn("Snapshot unreadable, starting fresh")
		return models.Collection{}
	}
	defer rows.Close()

	c := models.Collection{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			s.logger.WithError(err).Warn("Snapshot unreadable, starting fresh")
			return models.Collection{}
		}
		var rec models.MergedRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			s.logger.WithError(err).Warn("Snapshot corrupt, starting fresh")
			return models.Collection{}
		}
		c = append(c, rec)
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Warn("Snapshot unreadable, starting fresh")
		return models.Collection{}
	}

	s.logger.WithField("records", len(c)).Info("Snapshot loaded")
	return c
}

// Save replaces all rows with c in one transaction
func (s *SQLiteStore) Save(ctx context.Context, c models.Collection) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "begin snapshot transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "clear snapshot")
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records(position, url, doc) VALUES(?,?,?)")
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "prepare insert")
	}
	defer stmt.Close()

	for i, rec := range c {
		var doc string
		if doc, err = encodeRecord(rec); err != nil {
			return errs.Wrap(errs.ErrorTypeStorage, err, "encode snapshot")
		}
		if _, err = stmt.ExecContext(ctx, i, rec.Locator(), doc); err != nil {
			return errs.Wrap(errs.ErrorTypeStorage, err, "insert record %s", rec.Locator())
		}
	}

	if err = tx.Commit(); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "commit snapshot")
	}

	s.logger.DebugWithFields("Snapshot saved", map[string]interface{}{"records": len(c)})
	return nil
}

// Close closes the database handle
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
