package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// How long a connection waits on a locked database before giving up.
// Ingestion writes rows one at a time while the API reads, so short
// lock contention is normal.
const busyTimeoutMS = 5000

// DB owns the sqlite handle behind the job board. Feed ingestion, the
// query layer and the translation backfill all go through the one Pool.
type DB struct {
	Pool *sql.DB
}

func Open(path string) (*DB, error) {
	// modernc's driver takes pragmas in the DSN, not via Exec.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, busyTimeoutMS)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Single connection: sqlite serializes writers anyway, and a second
	// connection would only turn inserts into busy-timeout races.
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &DB{Pool: pool}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}
