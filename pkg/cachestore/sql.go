package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/util/dbutil"

	"github.com/beeper/drawboard/pkg/cachestore/upgrades"
)

const databaseOwner = "drawboard"

type SQLStore struct {
	db *dbutil.Database
}

func NewSQLStore(db *dbutil.Database) *SQLStore {
	return &SQLStore{db: db}
}

// Open connects to the configured database and brings its schema up to date.
func Open(ctx context.Context, cfg dbutil.Config, log zerolog.Logger) (*SQLStore, error) {
	db, err := dbutil.NewFromConfig(databaseOwner, cfg, dbutil.ZeroLogger(log.With().Str("db_section", "cache").Logger()))
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	store := NewSQLStore(db)
	if err := store.Upgrade(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Upgrade runs the embedded schema upgrades.
func (s *SQLStore) Upgrade(ctx context.Context) error {
	s.db.UpgradeTable = upgrades.Table
	if err := s.db.Upgrade(ctx); err != nil {
		return fmt.Errorf("upgrade cache database: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Lookup(ctx context.Context, key string) (*Entry, bool, error) {
	var entry Entry
	row := s.db.QueryRow(ctx,
		`SELECT key, body, media_type, updated_at FROM cache_entry WHERE key=$1`,
		key,
	)
	if err := row.Scan(&entry.Key, &entry.Body, &entry.MediaType, &entry.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &entry, true, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, body []byte, mediaType string) (*Entry, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("key is required")
	}
	if body == nil {
		body = []byte{}
	}
	updatedAt := time.Now().UnixMilli()
	_, err := s.db.Exec(ctx,
		`INSERT INTO cache_entry (key, body, media_type, updated_at)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (key)
         DO UPDATE SET body=excluded.body, media_type=excluded.media_type, updated_at=excluded.updated_at`,
		key, body, mediaType, updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Key:       key,
		Body:      body,
		MediaType: mediaType,
		UpdatedAt: updatedAt,
	}, nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM cache_entry WHERE key=$1`, key)
	return err
}

// List returns all entries without their bodies, ordered by key.
func (s *SQLStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT key, media_type, updated_at FROM cache_entry ORDER BY key`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.MediaType, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *SQLStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	result, err := s.db.Exec(ctx, `DELETE FROM cache_entry WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	if result == nil {
		return 0, nil
	}
	return result.RowsAffected()
}
