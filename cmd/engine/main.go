package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"greenremote-engine/internal/config"
	"greenremote-engine/internal/events"
	"greenremote-engine/internal/feeds/arbeitnow"
	"greenremote-engine/internal/feeds/jobicy"
	"greenremote-engine/internal/feeds/linkedin"
	"greenremote-engine/internal/feeds/remoteok"
	"greenremote-engine/internal/feeds/remotive"
	"greenremote-engine/internal/feeds/types"
	"greenremote-engine/internal/feeds/util"
	"greenremote-engine/internal/httpapi"
	"greenremote-engine/internal/ingest"
	"greenremote-engine/internal/scheduler"
	"greenremote-engine/internal/secrets"
	"greenremote-engine/internal/store"
	"greenremote-engine/internal/translate"
)

func main() {
	// Local overrides for development; missing file is fine.
	_ = godotenv.Load()

	once := flag.Bool("once", false, "run one ingestion pass, print the summary, and exit")
	flag.Parse()

	dataDir := os.Getenv("GREENREMOTE_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; two writers on the same sqlite file is a
	// corruption risk not worth taking.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	held, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock: %v", err)
	}
	if !held {
		log.Fatalf("another engine instance is already running in %s", dataDir)
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	db, err := store.Open(filepath.Join(dataDir, "greenremote.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()

	var ingestStatus atomic.Value
	ingestStatus.Store(types.IngestStatus{})

	limiter := util.NewHostLimiter(1, 2)

	translator := func() *translate.Translator {
		c := cfgVal.Load().(config.Config)
		if !c.Translate.Enabled {
			return nil
		}
		return translate.New(c.Translate.BaseURL)
	}

	runFeeds := func(ctx context.Context, group string) ingest.Summary {
		c := cfgVal.Load().(config.Config)
		return ingest.RunOnce(ctx, db.Pool, translator(), buildFetchers(c, group, limiter))
	}
	runTranslate := func(ctx context.Context) (int, error) {
		c := cfgVal.Load().(config.Config)
		return ingest.TranslateBackfill(ctx, db.Pool, translate.New(c.Translate.BaseURL))
	}

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		var all ingest.Summary
		for _, g := range []string{httpapi.GroupCore, httpapi.GroupExtra, httpapi.GroupLinkedIn} {
			sum := runFeeds(ctx, g)
			all.Sources = append(all.Sources, sum.Sources...)
			all.TotalInserted += sum.TotalInserted
		}
		b, _ := json.MarshalIndent(all, "", "  ")
		fmt.Println(string(b))
		return
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:           db.Pool,
		Hub:          hub,
		CfgVal:       &cfgVal,
		IngestStatus: &ingestStatus,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		DeleteJob:    store.DeleteJob,
		RunFeeds:     runFeeds,
		RunTranslate: runTranslate,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := cfg.Ingest.IntervalHours
	if interval <= 0 {
		interval = 6
	}

	go scheduler.Every(ctx,
		time.Duration(interval)*time.Hour,
		"scheduler",
		cfg.Ingest.RunOnStart,
		func(ctx context.Context) error {
			st := ingestStatus.Load().(types.IngestStatus)
			if st.Running {
				return nil
			}
			ingestStatus.Store(types.IngestStatus{
				LastRunAt: time.Now().Format(time.RFC3339),
				Running:   true,
				LastOkAt:  st.LastOkAt,
			})

			var all ingest.Summary
			for _, g := range []string{httpapi.GroupCore, httpapi.GroupExtra, httpapi.GroupLinkedIn} {
				sum := runFeeds(ctx, g)
				all.Sources = append(all.Sources, sum.Sources...)
				all.TotalInserted += sum.TotalInserted
			}

			now := time.Now().Format(time.RFC3339)
			next := ingestStatus.Load().(types.IngestStatus)
			next.Running = false
			next.LastRunAt = now
			next.LastAdded = all.TotalInserted
			next.LastError = ""
			for _, s := range all.Sources {
				if s.Err != "" {
					next.LastError = s.Source + ": " + s.Err
					break
				}
			}
			if next.LastError == "" {
				next.LastOkAt = now
			}
			ingestStatus.Store(next)

			if all.TotalInserted > 0 {
				hub.Publish(events.MakeEvent("", "jobs_ingested", 1, all))
			}
			return nil
		})

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Cors,
		httpapi.Recover,
		httpapi.AccessLog,
	)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("[engine] listening on http://%s (data dir %s)", addr, dataDir)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// buildFetchers assembles the fetcher list for one endpoint group,
// honoring the per-source toggles.
func buildFetchers(cfg config.Config, group string, limiter *util.HostLimiter) []types.Fetcher {
	var out []types.Fetcher

	switch group {
	case httpapi.GroupCore:
		if cfg.Sources.Remotive.Enabled {
			out = append(out, remotive.New(remotive.Config{Limit: cfg.Ingest.PageLimit}, limiter))
		}
		if cfg.Sources.RemoteOK.Enabled {
			out = append(out, remoteok.New(remoteok.Config{}, limiter))
		}
		if cfg.Sources.ArbeitNow.Enabled {
			out = append(out, arbeitnow.New(arbeitnow.Config{}, limiter))
		}
	case httpapi.GroupExtra:
		if cfg.Sources.Jobicy.Enabled {
			out = append(out, jobicy.New(jobicy.Config{Count: cfg.Ingest.PageLimit}, limiter))
		}
	case httpapi.GroupLinkedIn:
		if cfg.LinkedIn.Enabled || cfg.Email.Enabled {
			li := linkedin.Config{
				Queries:   cfg.LinkedIn.Queries,
				Locations: cfg.LinkedIn.Locations,
				MaxJobs:   cfg.LinkedIn.MaxJobs,
			}
			if !cfg.LinkedIn.Enabled {
				li.Queries = nil
			}
			if cfg.Email.Enabled {
				pw, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
				if err != nil {
					log.Printf("[engine] imap password: %v", err)
				} else {
					li.Email = linkedin.EmailConfig{
						Enabled:     true,
						IMAPHost:    cfg.Email.IMAPHost,
						IMAPPort:    cfg.Email.IMAPPort,
						Username:    cfg.Email.Username,
						Password:    pw,
						Mailbox:     cfg.Email.Mailbox,
						MaxMessages: cfg.Email.MaxMessages,
					}
				}
			}
			out = append(out, linkedin.New(li, limiter))
		}
	}
	return out
}
