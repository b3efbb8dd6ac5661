package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"greenremote-engine/internal/config"
	"greenremote-engine/internal/events"
	"greenremote-engine/internal/ingest"
)

// Feed groups an ingestion endpoint can ask for.
const (
	GroupCore     = "core"     // remotive + remoteok + arbeitnow
	GroupExtra    = "extra"    // jobicy
	GroupLinkedIn = "linkedin" // guest search and/or alert mail
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	IngestStatus *atomic.Value // stores types.IngestStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	DeleteJob func(ctx context.Context, db *sql.DB, id int64) error

	// Ingestion entrypoints (injected for testability)
	RunFeeds     func(ctx context.Context, group string) ingest.Summary
	RunTranslate func(ctx context.Context) (updated int, err error)
}
