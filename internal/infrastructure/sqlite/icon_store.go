package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/zjrosen/iconkit/internal/cachemanager"
	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/log"
)

// NoExpiration stores an icon until it is deleted or flushed.
const NoExpiration time.Duration = -1

const iconColumns = `key, namespace, name, markup, category, tags, expires_at, created_at, updated_at`

// IconStore is a persistent CacheManager for materialized icons. Reads and
// writes never fail the caller: database errors are logged and reported as
// misses, matching the in-memory tier.
type IconStore struct {
	db                *sql.DB
	defaultExpiration time.Duration
	now               func() time.Time
}

// IconStoreOption configures an IconStore.
type IconStoreOption func(*IconStore)

// WithDefaultExpiration sets the TTL used when Set is called with ttl 0.
func WithDefaultExpiration(ttl time.Duration) IconStoreOption {
	return func(s *IconStore) {
		s.defaultExpiration = ttl
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) IconStoreOption {
	return func(s *IconStore) {
		s.now = now
	}
}

var (
	_ cachemanager.CacheManager[string, *icon.Icon] = (*IconStore)(nil)
	_ cachemanager.Maintainer                       = (*IconStore)(nil)
)

func newIconStore(db *sql.DB, opts ...IconStoreOption) *IconStore {
	s := &IconStore{
		db:                db,
		defaultExpiration: cachemanager.DefaultExpiration,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scanIcon scans a row into an IconModel.
func scanIcon(scanner interface{ Scan(...any) error }) (*IconModel, error) {
	var model IconModel
	err := scanner.Scan(
		&model.Key, &model.Namespace, &model.Name, &model.Markup, &model.Category,
		&model.Tags, &model.ExpiresAt, &model.CreatedAt, &model.UpdatedAt,
	)
	return &model, err
}

// Get returns the stored icon. Expired rows are removed and reported as a
// miss.
func (s *IconStore) Get(ctx context.Context, key string) (*icon.Icon, bool) {
	row := s.db.QueryRowContext(ctx, `SELECT `+iconColumns+` FROM icons WHERE key = ?`, key)
	model, err := scanIcon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to read icon", err, "key", key)
		return nil, false
	}
	if model.expired(s.now()) {
		if err := s.Delete(ctx, key); err != nil {
			log.ErrorErr(log.CatStore, "Failed to drop expired icon", err, "key", key)
		}
		return nil, false
	}

	log.Debug(log.CatStore, "second tier hit", "key", key)
	return model.toDomain(), true
}

// GetMultiple returns every live key present in the store. ok is false when
// none were found.
func (s *IconStore) GetMultiple(ctx context.Context, keys []string) (map[string]*icon.Icon, bool) {
	if len(keys) == 0 {
		return nil, false
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")

	rows, err := s.db.QueryContext(ctx, `SELECT `+iconColumns+` FROM icons WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to read icons", err, "keys", len(keys))
		return nil, false
	}
	defer func() { _ = rows.Close() }()

	now := s.now()
	found := make(map[string]*icon.Icon, len(keys))
	for rows.Next() {
		model, err := scanIcon(rows)
		if err != nil {
			log.ErrorErr(log.CatStore, "Failed to scan icon", err)
			continue
		}
		if model.expired(now) {
			continue
		}
		found[model.Key] = model.toDomain()
	}
	if err := rows.Err(); err != nil {
		log.ErrorErr(log.CatStore, "Failed to iterate icons", err)
	}
	return found, len(found) > 0
}

// GetWithRefresh returns the stored icon and pushes its expiry out by ttl.
func (s *IconStore) GetWithRefresh(ctx context.Context, key string, ttl time.Duration) (*icon.Icon, bool) {
	ic, ok := s.Get(ctx, key)
	if !ok {
		return nil, false
	}

	now := s.now()
	var expiresAt *int64
	if exp := s.expiry(ttl, now); exp != nil {
		ms := exp.UnixMilli()
		expiresAt = &ms
	}
	_, err := s.db.ExecContext(ctx, `UPDATE icons SET expires_at = ?, updated_at = ? WHERE key = ?`,
		expiresAt, now.UnixMilli(), key)
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to refresh icon", err, "key", key)
	}
	return ic, true
}

// Set stores value under key. ttl 0 uses the default expiration and
// NoExpiration keeps the row until deleted.
func (s *IconStore) Set(ctx context.Context, key string, value *icon.Icon, ttl time.Duration) {
	if value == nil {
		return
	}
	now := s.now()
	model := toIconModel(key, value, s.expiry(ttl, now), now)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO icons (`+iconColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			namespace = excluded.namespace, name = excluded.name, markup = excluded.markup,
			category = excluded.category, tags = excluded.tags,
			expires_at = excluded.expires_at, updated_at = excluded.updated_at`,
		model.Key, model.Namespace, model.Name, model.Markup, model.Category,
		model.Tags, model.ExpiresAt, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to store icon", err, "key", key)
		return
	}
	log.Debug(log.CatStore, "Stored icon", "key", key)
}

// Delete removes keys.
func (s *IconStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM icons WHERE key = ?`, key); err != nil {
			return err
		}
	}
	return nil
}

// Flush removes every stored icon.
func (s *IconStore) Flush(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM icons`)
	return err
}

// PurgeExpired deletes rows past their expiry and returns how many were
// removed.
func (s *IconStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM icons WHERE expires_at IS NOT NULL AND expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of stored rows, expired ones included.
func (s *IconStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM icons`).Scan(&n)
	return n, err
}

func (s *IconStore) expiry(ttl time.Duration, now time.Time) *time.Time {
	if ttl == 0 {
		ttl = s.defaultExpiration
	}
	if ttl < 0 {
		return nil
	}
	exp := now.Add(ttl)
	return &exp
}
