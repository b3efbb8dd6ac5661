package remotive

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

const defaultBaseURL = "https://remotive.com"

type Config struct {
	BaseURL string // test override; empty means the public API
	Limit   int    // 0 means provider default
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

func (f *Fetcher) Name() string { return "remotive" }

type remotiveJob struct {
	URL                       string `json:"url"`
	Title                     string `json:"title"`
	CompanyName               string `json:"company_name"`
	Category                  string `json:"category"`
	CandidateRequiredLocation string `json:"candidate_required_location"`
	PublicationDate           string `json:"publication_date"` // "2006-01-02T15:04:05"
	Description               string `json:"description"`
}

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Job, error) {
	apiURL := f.cfg.BaseURL + "/api/remote-jobs"
	if f.cfg.Limit > 0 {
		apiURL = fmt.Sprintf("%s?limit=%d", apiURL, f.cfg.Limit)
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "GreenRemote/1.0 (+jobs)")

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}
	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remotive get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("remotive status %d", res.StatusCode)
	}

	var body remotiveResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("remotive decode: %w", err)
	}

	out := make([]domain.Job, 0, len(body.Jobs))
	for _, rj := range body.Jobs {
		j := domain.Job{
			Title:       util.CleanText(rj.Title),
			Company:     util.CleanText(rj.CompanyName),
			Location:    util.CleanText(rj.CandidateRequiredLocation),
			Category:    util.CleanText(rj.Category),
			Description: strings.TrimSpace(rj.Description),
			ApplyURL:    util.CanonicalizeURL(rj.URL),
			Source:      f.Name(),
		}
		if t := parsePublicationDate(rj.PublicationDate); t != nil {
			j.PublishedAt = t
		}
		if !j.Valid() {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

// Remotive publishes timestamps without a zone offset.
func parsePublicationDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
