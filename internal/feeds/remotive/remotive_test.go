package remotive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"url": "https://remotive.com/remote-jobs/software-dev/backend-engineer-100",
				"title": "Backend Engineer",
				"company_name": "Acme",
				"category": "Software Development",
				"candidate_required_location": "Worldwide",
				"publication_date": "2026-03-01T10:30:00",
				"description": "<p>Build APIs</p>"
			},
			{
				"url": "https://remotive.com/remote-jobs/design/product-designer-101",
				"title": "Product Designer",
				"company_name": "Beta Co",
				"category": "Design",
				"candidate_required_location": "Europe",
				"publication_date": "2026-03-02T08:00:00Z",
				"description": ""
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/remote-jobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("expected limit=50, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL, Limit: 50}, nil)

	jobs, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Title != "Backend Engineer" {
		t.Errorf("expected title Backend Engineer, got %s", j.Title)
	}
	if j.Company != "Acme" {
		t.Errorf("expected company Acme, got %s", j.Company)
	}
	if j.Location != "Worldwide" {
		t.Errorf("expected location Worldwide, got %s", j.Location)
	}
	if j.Category != "Software Development" {
		t.Errorf("expected category Software Development, got %s", j.Category)
	}
	if j.Source != "remotive" {
		t.Errorf("expected source remotive, got %s", j.Source)
	}
	if j.PublishedAt == nil {
		t.Fatal("expected PublishedAt to be set")
	}
	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	if !j.PublishedAt.Equal(want) {
		t.Errorf("expected PublishedAt %v, got %v", want, j.PublishedAt)
	}

	// Second record uses an RFC 3339 timestamp; both layouts must parse.
	if jobs[1].PublishedAt == nil {
		t.Fatal("expected PublishedAt to be set for RFC 3339 timestamp")
	}
}

func TestFetch_DropsIncompleteRecords(t *testing.T) {
	payload := `{
		"jobs": [
			{"url": "https://remotive.com/j/1", "title": "", "company_name": "Acme"},
			{"url": "", "title": "Engineer", "company_name": "Acme"},
			{"url": "https://remotive.com/j/2", "title": "Engineer", "company_name": ""},
			{"url": "https://remotive.com/j/3", "title": "Engineer", "company_name": "Acme"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL}, nil)

	jobs, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].ApplyURL != "https://remotive.com/j/3" {
		t.Errorf("unexpected apply url %s", jobs[0].ApplyURL)
	}
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL}, nil)

	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestParsePublicationDate_Invalid(t *testing.T) {
	if got := parsePublicationDate("not a date"); got != nil {
		t.Errorf("expected nil for garbage input, got %v", got)
	}
	if got := parsePublicationDate(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}
