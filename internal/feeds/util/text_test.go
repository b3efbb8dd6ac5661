package util

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Backend   Engineer ", "Backend Engineer"},
		{"Acme GmbH", "Acme GmbH"},
		{"one\ntwo\tthree", "one two three"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Errorf("CleanText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalizeURL(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{
			"strips tracking params",
			"https://remotive.com/jobs/123?utm_source=feed&utm_medium=rss&ref=home",
			"https://remotive.com/jobs/123",
		},
		{
			"lowercases scheme and host",
			"HTTPS://RemoteOK.com/remote-jobs/99",
			"https://remoteok.com/remote-jobs/99",
		},
		{
			"drops fragment, sorts query",
			"https://example.com/j?b=2&a=1#apply",
			"https://example.com/j?a=1&b=2",
		},
		{
			"linkedin drops all query junk",
			"https://www.linkedin.com/jobs/view/4100?refId=abc&trackingId=xyz&position=1",
			"https://www.linkedin.com/jobs/view/4100",
		},
		{
			"empty stays empty",
			"",
			"",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CanonicalizeURL(c.in); got != c.want {
				t.Errorf("CanonicalizeURL(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestCanonicalizeURL_SameListingSameKey(t *testing.T) {
	a := CanonicalizeURL("https://remotive.com/jobs/123?utm_source=feed&b=2&a=1")
	b := CanonicalizeURL("https://REMOTIVE.com/jobs/123?a=1&b=2&utm_campaign=x#top")
	if a != b {
		t.Errorf("expected identical canonical URLs, got %q vs %q", a, b)
	}
}
