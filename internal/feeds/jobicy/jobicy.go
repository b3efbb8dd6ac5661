package jobicy

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

const defaultBaseURL = "https://jobicy.com"

type Config struct {
	BaseURL string
	Count   int // 0 means provider default
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

func (f *Fetcher) Name() string { return "jobicy" }

// jobIndustry arrives as a string on some listings and an array on others.
type flexStrings []string

func (fs *flexStrings) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one != "" {
			*fs = []string{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*fs = many
	return nil
}

type jobicyJob struct {
	URL            string      `json:"url"`
	JobTitle       string      `json:"jobTitle"`
	CompanyName    string      `json:"companyName"`
	JobIndustry    flexStrings `json:"jobIndustry"`
	JobGeo         string      `json:"jobGeo"`
	JobLevel       string      `json:"jobLevel"`
	JobDescription string      `json:"jobDescription"`
	PubDate        string      `json:"pubDate"` // "2006-01-02 15:04:05"
}

type jobicyResponse struct {
	Jobs []jobicyJob `json:"jobs"`
}

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Job, error) {
	apiURL := f.cfg.BaseURL + "/api/v2/remote-jobs"
	if f.cfg.Count > 0 {
		apiURL = fmt.Sprintf("%s?count=%d", apiURL, f.cfg.Count)
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
		return nil, fmt.Errorf("jobicy get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("jobicy status %d", res.StatusCode)
	}

	var body jobicyResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("jobicy decode: %w", err)
	}

	out := make([]domain.Job, 0, len(body.Jobs))
	for _, jj := range body.Jobs {
		category := ""
		if len(jj.JobIndustry) > 0 {
			category = util.CleanText(jj.JobIndustry[0])
		}

		level := util.CleanText(jj.JobLevel)
		if strings.EqualFold(level, "any") {
			level = ""
		}

		j := domain.Job{
			Title:           util.CleanText(jj.JobTitle),
			Company:         util.CleanText(jj.CompanyName),
			Location:        util.CleanText(jj.JobGeo),
			Category:        category,
			Description:     strings.TrimSpace(jj.JobDescription),
			ApplyURL:        util.CanonicalizeURL(jj.URL),
			ExperienceLevel: level,
			Source:          f.Name(),
		}
		if t := parsePubDate(jj.PubDate); t != nil {
			j.PublishedAt = t
		}
		if !j.Valid() {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func parsePubDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
