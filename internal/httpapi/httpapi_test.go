package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"greenremote-engine/internal/config"
	"greenremote-engine/internal/domain"
	"greenremote-engine/internal/events"
	"greenremote-engine/internal/feeds/types"
	"greenremote-engine/internal/ingest"
	"greenremote-engine/internal/store"
)

func newTestServer(t *testing.T, runFeeds func(ctx context.Context, group string) ingest.Summary) (*httptest.Server, *store.DB) {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.Migrate(db.Pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	var cfgVal, status atomic.Value
	cfgVal.Store(config.Config{})
	status.Store(types.IngestStatus{})

	if runFeeds == nil {
		runFeeds = func(ctx context.Context, group string) ingest.Summary { return ingest.Summary{} }
	}

	mux := NewMux(Deps{
		DB:           db.Pool,
		Hub:          events.NewHub(),
		CfgVal:       &cfgVal,
		IngestStatus: &status,
		LoadCfg:      func() (config.Config, error) { return config.Config{}, nil },
		DeleteJob:    store.DeleteJob,
		RunFeeds:     runFeeds,
		RunTranslate: func(ctx context.Context) (int, error) { return 0, nil },
	})

	srv := httptest.NewServer(Chain(mux, RequestID, Recover))
	t.Cleanup(srv.Close)
	return srv, db
}

func seedJobs(t *testing.T, db *store.DB, jobs ...domain.Job) {
	t.Helper()
	for _, j := range jobs {
		if _, err := store.InsertJobIgnore(context.Background(), db.Pool, j); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestListJobsEndpoint(t *testing.T) {
	srv, db := newTestServer(t, nil)
	seedJobs(t, db,
		domain.Job{Title: "Go Developer", Company: "Acme", Location: "Remote", ApplyURL: "https://a/1"},
		domain.Job{Title: "Designer", Company: "Beta", Location: "Berlin", ApplyURL: "https://a/2"},
	)

	res, err := http.Get(srv.URL + "/api/jobs?search=go&remote=1")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var page store.JobPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected 1 match, got %d", page.Total)
	}
	if page.Jobs[0].Title != "Go Developer" {
		t.Errorf("unexpected row: %+v", page.Jobs[0])
	}
	if page.Page != 1 || page.TotalPages != 1 || page.Limit != store.DefaultPageSize {
		t.Errorf("unexpected paging fields: %+v", page)
	}
}

func TestAddJobEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := `{"title":"Engineer","company":"Acme","apply_url":"https://a/1","publication_date":"2026-03-01T00:00:00Z"}`
	res, err := http.Post(srv.URL+"/api/add-job", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}

	// same apply_url again is a conflict
	res, err = http.Post(srv.URL+"/api/add-job", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate apply_url, got %d", res.StatusCode)
	}

	var apiErr APIError
	if err := json.NewDecoder(res.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if apiErr.Error.Code != "duplicate_apply_url" {
		t.Errorf("unexpected error code %q", apiErr.Error.Code)
	}
	if apiErr.Error.RequestID == "" {
		t.Error("expected request id in the error envelope")
	}
}

func TestAddJobEndpoint_MissingFields(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	res, err := http.Post(srv.URL+"/api/add-job", "application/json",
		strings.NewReader(`{"title":"Engineer"}`))
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestFetchJobsEndpoint(t *testing.T) {
	var gotGroup string
	srv, _ := newTestServer(t, func(ctx context.Context, group string) ingest.Summary {
		gotGroup = group
		return ingest.Summary{
			Sources: []ingest.SourceSummary{
				{Source: "remotive", Fetched: 10, Inserted: 7},
				{Source: "remoteok", Fetched: 0, Err: "status 503"},
			},
			TotalInserted: 7,
		}
	})

	res, err := http.Get(srv.URL + "/api/fetch-jobs")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if gotGroup != GroupCore {
		t.Errorf("expected core group, got %q", gotGroup)
	}

	var sum ingest.Summary
	if err := json.NewDecoder(res.Body).Decode(&sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.TotalInserted != 7 || len(sum.Sources) != 2 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.Sources[1].Err != "status 503" {
		t.Errorf("expected per-source error carried through, got %+v", sum.Sources[1])
	}

	// status must reflect the finished run
	res, err = http.Get(srv.URL + "/api/ingest/status")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var st types.IngestStatus
	if err := json.NewDecoder(res.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Running {
		t.Error("expected run to be finished")
	}
	if st.LastAdded != 7 {
		t.Errorf("expected last_added 7, got %d", st.LastAdded)
	}
	if !strings.Contains(st.LastError, "remoteok") {
		t.Errorf("expected the failed source in last_error, got %q", st.LastError)
	}
}

func TestScrapeLinkedInEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, func(ctx context.Context, group string) ingest.Summary {
		if group != GroupLinkedIn {
			t.Errorf("expected linkedin group, got %q", group)
		}
		return ingest.Summary{
			Sources:       []ingest.SourceSummary{{Source: "linkedin", Fetched: 12, Inserted: 9}},
			TotalInserted: 9,
		}
	})

	res, err := http.Post(srv.URL+"/api/scrape-linkedin", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["fetched"].(float64) != 12 || out["inserted"].(float64) != 9 {
		t.Errorf("unexpected response: %v", out)
	}
}

func newIngestHandler(hub *events.Hub, runFeeds func(ctx context.Context, group string) ingest.Summary) IngestHandler {
	var status atomic.Value
	status.Store(types.IngestStatus{})
	return IngestHandler{
		Hub:          hub,
		IngestStatus: &status,
		RunFeeds:     runFeeds,
		running:      new(atomic.Bool),
	}
}

func TestFetchJobs_ConcurrentRequestsSingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	ih := newIngestHandler(events.NewHub(), func(ctx context.Context, group string) ingest.Summary {
		close(entered)
		<-release
		return ingest.Summary{}
	})

	firstDone := make(chan *httptest.ResponseRecorder)
	go func() {
		rec := httptest.NewRecorder()
		ih.FetchCore(rec, httptest.NewRequest(http.MethodGet, "/api/fetch-jobs", nil))
		firstDone <- rec
	}()

	<-entered // first run is inside RunFeeds and holds the gate

	rec := httptest.NewRecorder()
	ih.FetchCore(rec, httptest.NewRequest(http.MethodGet, "/api/fetch-jobs", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 while a run is in flight, got %d", rec.Code)
	}

	close(release)
	first := <-firstDone
	if first.Code != http.StatusOK {
		t.Errorf("expected the first run to finish with 200, got %d", first.Code)
	}

	// gate released: a new run is admitted again
	ih.RunFeeds = func(ctx context.Context, group string) ingest.Summary { return ingest.Summary{} }
	rec = httptest.NewRecorder()
	ih.FetchCore(rec, httptest.NewRequest(http.MethodGet, "/api/fetch-jobs", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 after the previous run finished, got %d", rec.Code)
	}
}

func TestFetchJobs_EventOnlyWhenRowsInserted(t *testing.T) {
	hub := events.NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	sum := ingest.Summary{
		Sources: []ingest.SourceSummary{{Source: "remotive", Fetched: 5}},
	}
	ih := newIngestHandler(hub, func(ctx context.Context, group string) ingest.Summary { return sum })

	rec := httptest.NewRecorder()
	ih.FetchCore(rec, httptest.NewRequest(http.MethodGet, "/api/fetch-jobs", nil))
	select {
	case evt := <-ch:
		t.Errorf("expected no event for a run that inserted nothing, got %s", evt)
	default:
	}

	sum.Sources[0].Inserted = 5
	sum.TotalInserted = 5
	rec = httptest.NewRecorder()
	ih.FetchCore(rec, httptest.NewRequest(http.MethodGet, "/api/fetch-jobs", nil))
	select {
	case evt := <-ch:
		if !strings.Contains(evt, "jobs_ingested") {
			t.Errorf("unexpected event payload %s", evt)
		}
	default:
		t.Error("expected a jobs_ingested event after rows were inserted")
	}
}

func TestTranslateJobsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	res, err := http.Post(srv.URL+"/api/translate-jobs", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var out map[string]int
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := out["updated"]; !ok {
		t.Errorf("expected updated count in response: %v", out)
	}
}

func TestDeleteJobEndpoint(t *testing.T) {
	srv, db := newTestServer(t, nil)
	seedJobs(t, db, domain.Job{Title: "Engineer", Company: "Acme", ApplyURL: "https://a/1"})

	page, err := store.ListJobs(context.Background(), db.Pool, store.ListJobsOpts{})
	if err != nil {
		t.Fatal(err)
	}
	id := page.Jobs[0].ID

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/jobs/"+strconv.FormatInt(id, 10), nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	page, _ = store.ListJobs(context.Background(), db.Pool, store.ListJobsOpts{})
	if page.Total != 0 {
		t.Errorf("expected row deleted, %d left", page.Total)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	res, err := http.Post(srv.URL+"/api/jobs", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.StatusCode)
	}
}
