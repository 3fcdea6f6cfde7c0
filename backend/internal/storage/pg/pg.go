package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ginclub-dev/ginclub/shared/config"
	internal_errors "github.com/ginclub-dev/ginclub/shared/errors"
	"github.com/ginclub-dev/ginclub/shared/logger"
)

const opTimeout = 5 * time.Second

// Storage keeps the gate state in a single key/value table. Per-key upserts
// give the single-key atomicity the gate relies on.
type Storage struct {
	db *sql.DB
}

func New(cfg *config.Pg) (*Storage, error) {
	logger.Log.Info("connecting to db", "host", cfg.Host, "dbname", cfg.Dbname)
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}

	s := &Storage{db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	logger.Log.Info("successfully connected to db")
	return s, nil
}

func Connect(cfg *config.Pg) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func (s *Storage) ensureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS gate_state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (s *Storage) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM gate_state WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", internal_errors.NotFound("Key not found")
		}
		return "", fmt.Errorf("failed to query key %s: %w", key, err)
	}
	return value, nil
}

func (s *Storage) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gate_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert key %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM gate_state WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}
