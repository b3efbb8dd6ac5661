package store

import (
	"context"
	"database/sql"
	"strings"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

type ListJobsOpts struct {
	Search     string // matched against title OR company
	Location   string // substring
	Category   string // substring
	Experience string // substring
	RemoteOnly bool
	Sort       string // newest | oldest
	Page       int    // 1-based
	Limit      int
}

type JobPage struct {
	Jobs       []Job `json:"jobs"`
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	Limit      int   `json:"limit"`
}

// TotalPages is ceil(total/limit), floored at 1 so a UI always has page 1.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 1
	}
	n := (total + limit - 1) / limit
	if n < 1 {
		return 1
	}
	return n
}

// ListJobs builds a filtered, sorted, paginated read plus an exact count.
// When the deployed table predates the category/experience_level columns,
// the query is retried once with those filters dropped instead of failing
// the request.
func ListJobs(ctx context.Context, db *sql.DB, opts ListJobsOpts) (JobPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultPageSize
	}
	if opts.Limit > MaxPageSize {
		opts.Limit = MaxPageSize
	}

	page, err := listJobs(ctx, db, opts, false)
	if err != nil && isMissingOptionalColumn(err) {
		page, err = listJobs(ctx, db, opts, true)
	}
	return page, err
}

// isMissingOptionalColumn detects schema drift: an older deployed table
// without the optional category/experience_level columns.
func isMissingOptionalColumn(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "no such column") {
		return false
	}
	return strings.Contains(msg, "category") || strings.Contains(msg, "experience_level")
}

func listJobs(ctx context.Context, db *sql.DB, opts ListJobsOpts, degraded bool) (JobPage, error) {
	var (
		conds []string
		args  []any
	)

	like := func(s string) string { return "%" + strings.ToLower(strings.TrimSpace(s)) + "%" }

	if strings.TrimSpace(opts.Search) != "" {
		conds = append(conds, "(LOWER(title) LIKE ? OR LOWER(company) LIKE ?)")
		args = append(args, like(opts.Search), like(opts.Search))
	}
	if strings.TrimSpace(opts.Location) != "" {
		conds = append(conds, "LOWER(location) LIKE ?")
		args = append(args, like(opts.Location))
	}
	if !degraded {
		if strings.TrimSpace(opts.Category) != "" {
			conds = append(conds, "LOWER(category) LIKE ?")
			args = append(args, like(opts.Category))
		}
		if strings.TrimSpace(opts.Experience) != "" {
			conds = append(conds, "LOWER(experience_level) LIKE ?")
			args = append(args, like(opts.Experience))
		}
	}
	if opts.RemoteOnly {
		conds = append(conds, "LOWER(location) LIKE '%remote%'")
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	order := "ORDER BY created_at DESC, id DESC"
	if opts.Sort == "oldest" {
		order = "ORDER BY created_at ASC, id ASC"
	}

	var total int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jobs "+where+";", args...,
	).Scan(&total); err != nil {
		return JobPage{}, err
	}

	sel := `SELECT id, title, company, location, category, description, publication_date, apply_url, experience_level, source, created_at FROM jobs `
	if degraded {
		sel = `SELECT id, title, company, location, '', description, publication_date, apply_url, '', source, created_at FROM jobs `
	}

	offset := (opts.Page - 1) * opts.Limit
	rows, err := db.QueryContext(ctx,
		sel+where+" "+order+" LIMIT ? OFFSET ?;",
		append(append([]any{}, args...), opts.Limit, offset)...,
	)
	if err != nil {
		return JobPage{}, err
	}
	defer rows.Close()

	jobs := make([]Job, 0, opts.Limit)
	for rows.Next() {
		var j Job
		var pub sql.NullString
		if err := rows.Scan(
			&j.ID, &j.Title, &j.Company, &j.Location, &j.Category,
			&j.Description, &pub, &j.ApplyURL, &j.ExperienceLevel,
			&j.Source, &j.CreatedAt,
		); err != nil {
			return JobPage{}, err
		}
		j.PublicationDate = pub.String
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return JobPage{}, err
	}

	return JobPage{
		Jobs:       jobs,
		Total:      total,
		Page:       opts.Page,
		TotalPages: TotalPages(total, opts.Limit),
		Limit:      opts.Limit,
	}, nil
}
