package remoteok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch_SkipsLegalNotice(t *testing.T) {
	payload := `[
		{"legal": "API terms of service apply."},
		{
			"id": 123456,
			"position": "Go Developer",
			"company": "Acme",
			"location": "Worldwide",
			"tags": ["golang", "backend"],
			"description": "Write Go services",
			"epoch": 1767225600,
			"url": "https://remoteok.com/remote-jobs/123456"
		}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL}, nil)

	jobs, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job after dropping the legal notice, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Title != "Go Developer" {
		t.Errorf("expected title Go Developer, got %s", j.Title)
	}
	if j.Category != "golang" {
		t.Errorf("expected first tag as category, got %s", j.Category)
	}
	if j.PublishedAt == nil {
		t.Fatal("expected PublishedAt from epoch")
	}
	want := time.Unix(1767225600, 0).UTC()
	if !j.PublishedAt.Equal(want) {
		t.Errorf("expected PublishedAt %v, got %v", want, j.PublishedAt)
	}
	if j.Source != "remoteok" {
		t.Errorf("expected source remoteok, got %s", j.Source)
	}
}

func TestFetch_StringIDsAndApplyURLFallback(t *testing.T) {
	// RemoteOK has served ids as both numbers and strings over time.
	payload := `[
		{"legal": "notice"},
		{
			"id": "789",
			"position": "SRE",
			"company": "Beta",
			"location": "",
			"epoch": 0,
			"url": "",
			"apply_url": "https://remoteok.com/l/789"
		}
	]`
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
	if jobs[0].ApplyURL != "https://remoteok.com/l/789" {
		t.Errorf("expected apply_url fallback, got %s", jobs[0].ApplyURL)
	}
	if jobs[0].PublishedAt != nil {
		t.Errorf("expected nil PublishedAt for epoch 0, got %v", jobs[0].PublishedAt)
	}
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL}, nil)

	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 429")
	}
}
