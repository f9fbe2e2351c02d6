package storage

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	errs "catalogscraper/pkg/errors"
	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS catalog_records (
  position INTEGER PRIMARY KEY,
  url      TEXT NOT NULL UNIQUE,
  doc      JSONB NOT NULL
)`

// postgresBatchSize bounds the number of inserts queued per round trip
const postgresBatchSize = 200

// PostgresStore keeps the collection in a Postgres table. Save rewrites the
// table inside one transaction, so readers see the old or the new snapshot.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// OpenPostgres connects to dsn and ensures the table exists
func OpenPostgres(ctx context.Context, dsn string, log logger.Logger) (*PostgresStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "parse postgres DSN")
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "connect postgres")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "create postgres schema")
	}

	return &PostgresStore{
		pool:   pool,
		logger: log.WithField("store", "postgres"),
	}, nil
}

// Location identifies the database without leaking credentials
func (s *PostgresStore) Location() string {
	cc := s.pool.Config().ConnConfig
	return "postgres:" + cc.Host + "/" + cc.Database
}

// Load reads every record in position order
func (s *PostgresStore) Load(ctx context.Context) models.Collection {
	rows, err := s.pool.Query(ctx, "SELECT doc::text FROM catalog_records ORDER BY position")
	if err != nil {
		s.logger.WithError(err).Warn("Snapshot unreadable, starting fresh")
		return models.Collection{}
	}

	docs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		s.logger.WithError(err).Warn("Snapshot unreadable, starting fresh")
		return models.Collection{}
	}

	c := make(models.Collection, 0, len(docs))
	for _, doc := range docs {
		var rec models.MergedRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			s.logger.WithError(err).Warn("Snapshot corrupt, starting fresh")
			return models.Collection{}
		}
		c = append(c, rec)
	}

	s.logger.WithField("records", len(c)).Info("Snapshot loaded")
	return c
}

// Save replaces all rows with c in one transaction
func (s *PostgresStore) Save(ctx context.Context, c models.Collection) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "begin snapshot transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "DELETE FROM catalog_records"); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "clear snapshot")
	}

	for i := 0; i < len(c); i += postgresBatchSize {
		j := i + postgresBatchSize
		if j > len(c) {
			j = len(c)
		}

		b := &pgx.Batch{}
		for pos := i; pos < j; pos++ {
			var doc string
			if doc, err = encodeRecord(c[pos]); err != nil {
				return errs.Wrap(errs.ErrorTypeStorage, err, "encode snapshot")
			}
			b.Queue(
				"INSERT INTO catalog_records(position, url, doc) VALUES ($1, $2, $3::jsonb)",
				pos, c[pos].Locator(), doc,
			)
		}

		br := tx.SendBatch(ctx, b)
		for k := i; k < j; k++ {
			if _, err = br.Exec(); err != nil {
				_ = br.Close()
				return errs.Wrap(errs.ErrorTypeStorage, err, "insert record %s", c[k].Locator())
			}
		}
		if err = br.Close(); err != nil {
			return errs.Wrap(errs.ErrorTypeStorage, err, "flush insert batch")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "commit snapshot")
	}

	s.logger.DebugWithFields("Snapshot saved", map[string]interface{}{"records": len(c)})
	return nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}
