package jobicy

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
				"url": "https://jobicy.com/jobs/12345-data-engineer",
				"jobTitle": "Data Engineer",
				"companyName": "Acme",
				"jobIndustry": ["Data Science", "Engineering"],
				"jobGeo": "USA",
				"jobLevel": "Senior",
				"jobDescription": "Pipelines all day",
				"pubDate": "2026-03-01 09:15:00"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/remote-jobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("count"); got != "20" {
			t.Errorf("expected count=20, got %q", got)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL, Count: 20}, nil)

	jobs, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Category != "Data Science" {
		t.Errorf("expected first industry as category, got %s", j.Category)
	}
	if j.Location != "USA" {
		t.Errorf("expected location USA, got %s", j.Location)
	}
	if j.ExperienceLevel != "Senior" {
		t.Errorf("expected experience Senior, got %s", j.ExperienceLevel)
	}
	if j.PublishedAt == nil {
		t.Fatal("expected PublishedAt from pubDate")
	}
	want := time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)
	if !j.PublishedAt.Equal(want) {
		t.Errorf("expected PublishedAt %v, got %v", want, j.PublishedAt)
	}
}

func TestFetch_IndustryAsStringAndAnyLevel(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"url": "https://jobicy.com/jobs/67890-support",
				"jobTitle": "Support Specialist",
				"companyName": "Beta",
				"jobIndustry": "Customer Success",
				"jobGeo": "Anywhere",
				"jobLevel": "Any"
			}
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
	if jobs[0].Category != "Customer Success" {
		t.Errorf("expected single-string industry as category, got %s", jobs[0].Category)
	}
	if jobs[0].ExperienceLevel != "" {
		t.Errorf("expected jobLevel Any to map to empty, got %q", jobs[0].ExperienceLevel)
	}
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL}, nil)

	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 500")
	}
}
