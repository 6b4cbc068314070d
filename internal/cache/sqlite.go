package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/joshuakim/sharpline/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultSQLiteDSN keeps the cache in memory for the life of the process
const DefaultSQLiteDSN = "file::memory:?cache=shared"

// SQLite is a Cache backed by a single sqlite table
type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

// NewSQLite opens the database and initializes the schema
func NewSQLite(dsn string) (*SQLite, error) {
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// an in-memory database lives only as long as its connection
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	c := &SQLite{conn: conn, now: time.Now}
	if err := c.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.WithComponent("cache").WithField("dsn", dsn).Info("SQLite cache initialized")
	return c, nil
}

func (c *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_responses_expiry
		ON responses(expires_at);
	`

	_, err := c.conn.Exec(schema)
	return err
}

// Get returns the stored value unless it is missing or expired
func (c *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64

	err := c.conn.QueryRowContext(ctx,
		`SELECT value, expires_at FROM responses WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if c.now().UnixNano() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

// Set upserts a value with a time to live
func (c *SQLite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.conn.ExecContext(ctx, `
		INSERT INTO responses (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, value, c.now().Add(ttl).UnixNano())
	return err
}

// Purge removes expired entries and reports how many were dropped
func (c *SQLite) Purge(ctx context.Context) (int64, error) {
	res, err := c.conn.ExecContext(ctx,
		`DELETE FROM responses WHERE expires_at <= ?`, c.now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (c *SQLite) Close() error {
	return c.conn.Close()
}
