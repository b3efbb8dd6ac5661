package httpapi

import (
	"net/http"
	"sync/atomic"
)

// NewMux returns the raw mux so main() can wrap it in the middleware chain.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Jobs
	jh := JobsHandler{DB: d.DB, Hub: d.Hub, DeleteJob: d.DeleteJob}
	mux.HandleFunc("/api/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/api/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: jh.DeleteByPath, // expects /api/jobs/{id}
	}))
	mux.HandleFunc("/api/add-job", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: jh.Add,
	}))

	// Ingestion
	ih := IngestHandler{
		Hub:          d.Hub,
		IngestStatus: d.IngestStatus,
		RunFeeds:     d.RunFeeds,
		RunTranslate: d.RunTranslate,
		running:      new(atomic.Bool),
	}
	mux.HandleFunc("/api/fetch-jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ih.FetchCore,
	}))
	mux.HandleFunc("/api/fetch-jobs-extra", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ih.FetchExtra,
	}))
	mux.HandleFunc("/api/scrape-linkedin", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.ScrapeLinkedIn,
	}))
	mux.HandleFunc("/api/translate-jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.TranslateJobs,
	}))
	mux.HandleFunc("/api/ingest/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ih.Status,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/api/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/api/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/api/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/api/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// DB maintenance (localhost only)
	dh := DBHandler{DB: d.DB}
	mux.HandleFunc("/api/db/checkpoint", dh.Checkpoint)

	return mux
}
