package linkedin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"greenremote-engine/internal/domain"
	"greenremote-engine/internal/feeds/util"

	"github.com/PuerkitoBio/goquery"
)

const defaultBaseURL = "https://www.linkedin.com"

// Config drives the public guest-search scrape. No login: only listings
// LinkedIn exposes to anonymous visitors are collected.
type Config struct {
	BaseURL   string // test override
	Queries   []string
	Locations []string
	MaxJobs   int // hard budget across all query/location pairs

	// Email enables the job-alert mailbox source as a second collection
	// mode; see alerts.go.
	Email EmailConfig
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
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 150
	}
	if len(cfg.Locations) == 0 {
		cfg.Locations = []string{"Worldwide"}
	}
	return &Fetcher{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: limiter,
	}
}

func (f *Fetcher) Name() string { return "linkedin" }

// Fetch collects from the guest search pages and, when configured, from
// the job-alert mailbox. Either mode failing alone does not fail the run.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Job, error) {
	var out []domain.Job
	seen := map[string]bool{}

	scraped, scrapeErr := f.fetchSearch(ctx)
	for _, j := range scraped {
		if !seen[j.ApplyURL] {
			seen[j.ApplyURL] = true
			out = append(out, j)
		}
	}

	if f.cfg.Email.Enabled {
		mailed, err := f.fetchAlertMail(ctx)
		if err != nil {
			log.Printf("[linkedin] alert mail: %v", err)
		}
		for _, j := range mailed {
			if !seen[j.ApplyURL] {
				seen[j.ApplyURL] = true
				out = append(out, j)
			}
		}
	}

	if len(out) == 0 && scrapeErr != nil {
		return nil, scrapeErr
	}
	return out, nil
}

func (f *Fetcher) fetchSearch(ctx context.Context) ([]domain.Job, error) {
	var out []domain.Job
	remaining := f.cfg.MaxJobs

	for _, query := range f.cfg.Queries {
		for _, location := range f.cfg.Locations {
			if remaining <= 0 {
				return out, nil
			}
			jobs, err := f.searchPair(ctx, query, location, remaining)
			if err != nil {
				return out, err
			}
			out = append(out, jobs...)
			remaining -= len(jobs)
		}
	}
	return out, nil
}

// searchPair walks the guest search endpoint for one query+location,
// 25 cards per page, until the budget is spent or a page comes back empty.
func (f *Fetcher) searchPair(ctx context.Context, query, location string, budget int) ([]domain.Job, error) {
	var out []domain.Job

	for start := 0; len(out) < budget; start += 25 {
		pageURL := fmt.Sprintf(
			"%s/jobs-guest/jobs/api/seeMoreJobPostings/search?keywords=%s&location=%s&f_WT=2&start=%d",
			f.cfg.BaseURL, url.QueryEscape(query), url.QueryEscape(location), start,
		)

		if f.limiter != nil {
			if err := f.limiter.WaitURL(ctx, pageURL); err != nil {
				return out, err
			}
		}

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		res, err := f.hc.Do(req)
		if err != nil {
			return out, fmt.Errorf("linkedin search get: %w", err)
		}
		if res.StatusCode >= 400 {
			res.Body.Close()
			if start > 0 {
				// pagination past the end often 400s; keep what we have
				return out, nil
			}
			return out, fmt.Errorf("linkedin search status %d", res.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(res.Body)
		res.Body.Close()
		if err != nil {
			return out, fmt.Errorf("linkedin parse: %w", err)
		}

		jobs := parseSearchCards(doc)
		if len(jobs) == 0 {
			return out, nil
		}
		for _, j := range jobs {
			if len(out) >= budget {
				return out, nil
			}
			out = append(out, j)
		}
	}
	return out, nil
}

// parseSearchCards extracts one normalized record per result card. Cards
// are located through their full-card anchor, then fields read from the
// enclosing container.
func parseSearchCards(doc *goquery.Document) []domain.Job {
	var out []domain.Job
	seen := map[string]bool{}

	doc.Find("a.base-card__full-link").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		applyURL := util.CanonicalizeURL(href)
		if seen[applyURL] {
			return
		}
		seen[applyURL] = true

		card := a.Closest("div.base-card")
		if card.Length() == 0 {
			card = a.Closest("li")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		j := domain.Job{
			Title:    util.CleanText(card.Find("h3.base-search-card__title").First().Text()),
			Company:  util.CleanText(card.Find("h4.base-search-card__subtitle").First().Text()),
			Location: util.CleanText(card.Find("span.job-search-card__location").First().Text()),
			ApplyURL: applyURL,
			Source:   "linkedin",
		}

		if dt, ok := card.Find("time").First().Attr("datetime"); ok {
			if t, err := time.Parse("2006-01-02", strings.TrimSpace(dt)); err == nil {
				t = t.UTC()
				j.PublishedAt = &t
			}
		}

		if !j.Valid() {
			return
		}
		out = append(out, j)
	})

	return out
}
