package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.mymemory.translated.net"

	// MyMemory rejects requests above 500 characters.
	maxChars = 500

	requestTimeout = 8 * time.Second
)

// Outcome says what actually happened to a piece of text. Ingestion only
// needs the text back, but tests and logs care about the difference
// between translated, skipped and failed-with-fallback.
type Outcome int

const (
	OutcomeSkipped Outcome = iota // empty or already English; no network call
	OutcomeTranslated
	OutcomeFallback // provider failed or refused; original text kept
)

type Result struct {
	Text    string
	Outcome Outcome
	Reason  string // set for fallbacks
}

type Translator struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string) *Translator {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Translator{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: requestTimeout},
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus json.Number `json:"responseStatus"` // number normally, quoted string on some errors
	QuotaFinished  bool        `json:"quotaFinished"`
}

// ToEnglish translates one field, best-effort. Any failure (transport,
// timeout, quota, empty result) degrades to the original trimmed text and
// never surfaces as an error. Exactly one request is made, no retries.
func (t *Translator) ToEnglish(ctx context.Context, text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Text: "", Outcome: OutcomeSkipped}
	}
	if LikelyEnglish(trimmed) {
		return Result{Text: trimmed, Outcome: OutcomeSkipped}
	}

	query := trimmed
	if runes := []rune(query); len(runes) > maxChars {
		query = string(runes[:maxChars])
	}

	reqURL := fmt.Sprintf("%s/get?q=%s&langpair=%s",
		t.baseURL, url.QueryEscape(query), url.QueryEscape("Autodetect|en"))

	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, _ := http.NewRequestWithContext(rctx, http.MethodGet, reqURL, nil)
	res, err := t.hc.Do(req)
	if err != nil {
		return Result{Text: trimmed, Outcome: OutcomeFallback, Reason: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Result{Text: trimmed, Outcome: OutcomeFallback, Reason: fmt.Sprintf("status %d", res.StatusCode)}
	}

	var body myMemoryResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Result{Text: trimmed, Outcome: OutcomeFallback, Reason: "decode: " + err.Error()}
	}

	if body.QuotaFinished {
		return Result{Text: trimmed, Outcome: OutcomeFallback, Reason: "quota exhausted"}
	}
	if s, err := body.ResponseStatus.Int64(); err == nil && s != 0 && s != 200 {
		return Result{Text: trimmed, Outcome: OutcomeFallback, Reason: fmt.Sprintf("provider status %d", s)}
	}

	translated := strings.TrimSpace(body.ResponseData.TranslatedText)
	if translated == "" {
		return Result{Text: trimmed, Outcome: OutcomeFallback, Reason: "empty result"}
	}

	return Result{Text: translated, Outcome: OutcomeTranslated}
}
