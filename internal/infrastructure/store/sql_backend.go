package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names a database/sql driver supported by SQLBackend.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const sqlSchema = `CREATE TABLE IF NOT EXISTS kv_store (
	profile    TEXT NOT NULL,
	item_key   TEXT NOT NULL,
	item_value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (profile, item_key)
)`

var placeholderRe = regexp.MustCompile(`\$[0-9]+`)

// SQLBackend stores every key of a profile as one row of the kv_store table.
type SQLBackend struct {
	db      *sql.DB
	dialect Dialect
	profile string
}

// ConnectSQL opens and pings a database for the given dialect
func ConnectSQL(dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Configure connection pool
	if dialect == DialectSQLite {
		// every sqlite connection to ":memory:" is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return db, nil
}

// NewSQLBackend creates the kv_store table if needed and returns a backend bound to profile
func NewSQLBackend(ctx context.Context, db *sql.DB, dialect Dialect, profile string) (*SQLBackend, error) {
	if _, err := db.ExecContext(ctx, sqlSchema); err != nil {
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return &SQLBackend{db: db, dialect: dialect, profile: profile}, nil
}

// rebind rewrites $N placeholders for drivers that expect '?'
func (b *SQLBackend) rebind(query string) string {
	if b.dialect == DialectSQLite {
		return placeholderRe.ReplaceAllString(query, "?")
	}
	return query
}

// Get reads one value
func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx,
		b.rebind("SELECT item_value FROM kv_store WHERE profile = $1 AND item_key = $2"),
		b.profile, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Set upserts one value
func (b *SQLBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx,
		b.rebind(`INSERT INTO kv_store (profile, item_key, item_value, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (profile, item_key)
		 DO UPDATE SET item_value = excluded.item_value, updated_at = excluded.updated_at`),
		b.profile, key, string(value), time.Now().UTC(),
	)
	return err
}

// Delete removes one key
func (b *SQLBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx,
		b.rebind("DELETE FROM kv_store WHERE profile = $1 AND item_key = $2"),
		b.profile, key,
	)
	return err
}

// Keys lists the profile's keys
func (b *SQLBackend) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		b.rebind("SELECT item_key FROM kv_store WHERE profile = $1 ORDER BY item_key"),
		b.profile,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Usage sums key and value lengths. LENGTH counts characters on both dialects.
func (b *SQLBackend) Usage(ctx context.Context) (int64, error) {
	var total int64
	err := b.db.QueryRowContext(ctx,
		b.rebind("SELECT COALESCE(SUM(LENGTH(item_key) + LENGTH(item_value)), 0) FROM kv_store WHERE profile = $1"),
		b.profile,
	).Scan(&total)
	return total, err
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}
