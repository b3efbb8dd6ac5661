package remoteok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"greenremote-engine/internal/domain"
	"greenremote-engine/internal/feeds/util"
)

const defaultBaseURL = "https://remoteok.com"

type Config struct {
	BaseURL string
}

type Fetcher struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Fetcher{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: limiter,
	}
}

func (f *Fetcher) Name() string { return "remoteok" }

// The RemoteOK feed is a flat array whose first element is a legal notice
// object without an id; real postings use epoch seconds for the date and a
// free-form tag list.
type remoteokJob struct {
	ID          json.Number `json:"id"`
	Position    string      `json:"position"`
	Company     string      `json:"company"`
	Location    string      `json:"location"`
	Tags        []string    `json:"tags"`
	Description string      `json:"description"`
	Epoch       int64       `json:"epoch"`
	URL         string      `json:"url"`
	ApplyURL    string      `json:"apply_url"`
}

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Job, error) {
	apiURL := f.cfg.BaseURL + "/api"

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "GreenRemote/1.0 (+jobs)")

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}
	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoteok get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("remoteok status %d", res.StatusCode)
	}

	var postings []remoteokJob
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("remoteok decode: %w", err)
	}

	out := make([]domain.Job, 0, len(postings))
	for _, p := range postings {
		if p.ID.String() == "" {
			continue // leading legal-notice element
		}

		applyURL := p.URL
		if applyURL == "" {
			applyURL = p.ApplyURL
		}

		category := ""
		if len(p.Tags) > 0 {
			category = util.CleanText(p.Tags[0])
		}

		j := domain.Job{
			Title:       util.CleanText(p.Position),
			Company:     util.CleanText(p.Company),
			Location:    util.CleanText(p.Location),
			Category:    category,
			Description: strings.TrimSpace(p.Description),
			ApplyURL:    util.CanonicalizeURL(applyURL),
			Source:      f.Name(),
		}
		if p.Epoch > 0 {
			t := time.Unix(p.Epoch, 0).UTC()
			j.PublishedAt = &t
		}
		if !j.Valid() {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}
