package arbeitnow

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

const defaultBaseURL = "https://www.arbeitnow.com"

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

func (f *Fetcher) Name() string { return "arbeitnow" }

type arbeitnowJob struct {
	Slug        string   `json:"slug"`
	CompanyName string   `json:"company_name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Remote      bool     `json:"remote"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	Location    string   `json:"location"`
	CreatedAt   int64    `json:"created_at"` // epoch seconds
}

type arbeitnowResponse struct {
	Data []arbeitnowJob `json:"data"`
}

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Job, error) {
	apiURL := f.cfg.BaseURL + "/api/job-board-api"

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "GreenRemote/1.0 (+jobs)")

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}
	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arbeitnow get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("arbeitnow status %d", res.StatusCode)
	}

	var body arbeitnowResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("arbeitnow decode: %w", err)
	}

	out := make([]domain.Job, 0, len(body.Data))
	for _, aj := range body.Data {
		location := util.CleanText(aj.Location)
		if location == "" && aj.Remote {
			location = "Remote"
		}

		category := ""
		if len(aj.Tags) > 0 {
			category = util.CleanText(aj.Tags[0])
		}

		j := domain.Job{
			Title:       util.CleanText(aj.Title),
			Company:     util.CleanText(aj.CompanyName),
			Location:    location,
			Category:    category,
			Description: strings.TrimSpace(aj.Description),
			ApplyURL:    util.CanonicalizeURL(aj.URL),
			Source:      f.Name(),
		}
		if aj.CreatedAt > 0 {
			t := time.Unix(aj.CreatedAt, 0).UTC()
			j.PublishedAt = &t
		}
		if !j.Valid() {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}
