package util

import (
	"net/url"
	"sort"
	"strings"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// CanonicalizeURL lowercases scheme/host, drops fragments and common
// tracking params, and sorts the query so the same listing always yields
// the same apply_url for deduplication.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "ref" || lk == "refid" || lk == "tracking_id" {
			q.Del(k)
		}
	}

	if strings.Contains(u.Host, "linkedin.com") {
		// job view pages carry session junk; the path alone identifies the job
		q = url.Values{}
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}
