package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"greenremote-engine/internal/domain"
)

type Job struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	Category        string `json:"category,omitempty"`
	Description     string `json:"description,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
	ApplyURL        string `json:"apply_url"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	Source          string `json:"source,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// InsertJobIgnore writes one normalized row, skipping silently when a row
// with the same apply_url already exists. Existing rows are never
// overwritten; re-ingestion is idempotent per apply_url.
func InsertJobIgnore(ctx context.Context, db *sql.DB, j domain.Job) (added bool, err error) {
	if j.ApplyURL == "" {
		return false, errors.New("missing apply_url")
	}
	loc := strings.TrimSpace(j.Location)
	if loc == "" {
		loc = "Remote"
	}
	var pub any
	if j.PublishedAt != nil && !j.PublishedAt.IsZero() {
		pub = j.PublishedAt.UTC().Format(time.RFC3339)
	}

	_, err = db.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs (title, company, location, category, description, publication_date, apply_url, experience_level, source, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		strings.TrimSpace(j.Title),
		strings.TrimSpace(j.Company),
		loc,
		strings.TrimSpace(j.Category),
		strings.TrimSpace(j.Description),
		pub,
		strings.TrimSpace(j.ApplyURL),
		strings.TrimSpace(j.ExperienceLevel),
		j.Source,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}

	// RowsAffected is unreliable with OR IGNORE across drivers; ask sqlite.
	var changes int
	if e := db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

func DeleteJob(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	return err
}

// TextRow is the slice of a job the translation backfill reads and rewrites.
type TextRow struct {
	ID          int64
	Title       string
	Company     string
	Location    string
	Description string
}

func ListTextRows(ctx context.Context, db *sql.DB) ([]TextRow, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, title, company, location, description
FROM jobs
ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TextRow
	for rows.Next() {
		var r TextRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Company, &r.Location, &r.Description); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateJobText rewrites the four translatable fields in place. This is the
// only mutation a stored row ever sees.
func UpdateJobText(ctx context.Context, db *sql.DB, r TextRow) error {
	_, err := db.ExecContext(ctx, `
UPDATE jobs
SET title = ?, company = ?, location = ?, description = ?
WHERE id = ?;`,
		r.Title, r.Company, r.Location, r.Description, r.ID,
	)
	return err
}
