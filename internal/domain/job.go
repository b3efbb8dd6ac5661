package domain

import "time"

// Job is a listing normalized into the common field set shared by every
// feed and by the storage layer. Optional text fields are empty strings;
// PublishedAt stays nil when a feed omits it.
type Job struct {
	Title           string
	Company         string
	Location        string // "" means the source did not say; stored as "Remote"
	Category        string
	Description     string
	PublishedAt     *time.Time
	ApplyURL        string // dedup natural key, unique across all sources
	ExperienceLevel string
	Source          string // feed name, e.g. "remotive"
}

// Valid reports whether the record carries the fields that identify a
// listing. Records failing this are dropped during normalization, never
// treated as a source failure.
func (j Job) Valid() bool {
	return j.ApplyURL != "" && j.Title != "" && j.Company != ""
}
