package store

import (
	"database/sql"
	"fmt"
)

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: jobs table ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT 'Remote',
  category TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  publication_date TEXT,
  apply_url TEXT NOT NULL,
  experience_level TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_apply_url
ON jobs(apply_url);
`); err != nil {
		return err
	}

	for _, col := range []string{"title", "company", "location", "category", "created_at"} {
		stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_jobs_%s ON jobs(%s);`, col, col)
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	// Back-compat for dev DBs created before these columns existed.
	if !columnExists(tx, "jobs", "category") {
		if _, err := tx.Exec(`ALTER TABLE jobs ADD COLUMN category TEXT NOT NULL DEFAULT '';`); err != nil {
			return err
		}
	}
	if !columnExists(tx, "jobs", "experience_level") {
		if _, err := tx.Exec(`ALTER TABLE jobs ADD COLUMN experience_level TEXT NOT NULL DEFAULT '';`); err != nil {
			return err
		}
	}

	// Mark schema v1
	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}
