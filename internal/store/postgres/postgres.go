package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"shopos/backend/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS pos_documents (
	key        TEXT PRIMARY KEY,
	version    BIGINT NOT NULL,
	body       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Store struct {
	db *sqlx.DB
}

type documentRow struct {
	Body    string `db:"body"`
	Version int64  `db:"version"`
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context, key store.Collection) (store.Document, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row, `SELECT body, version FROM pos_documents WHERE key = $1`, string(key))
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, err
	}
	return store.Document{Body: []byte(row.Body), Version: row.Version}, nil
}

func (s *Store) Save(ctx context.Context, key store.Collection, body []byte, expectedVersion int64) (int64, error) {
	next := expectedVersion + 1

	if expectedVersion == 0 {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO pos_documents (key, version, body, updated_at)
			VALUES ($1, $2, $3, now())
		`, string(key), next, string(body))
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s already exists", store.ErrConflict, key)
		}
		if err != nil {
			return 0, err
		}
		return next, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE pos_documents
		SET version = $3, body = $4, updated_at = now()
		WHERE key = $1 AND version = $2
	`, string(key), expectedVersion, next, string(body))
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, fmt.Errorf("%w: %s moved past version %d", store.ErrConflict, key, expectedVersion)
	}
	return next, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
