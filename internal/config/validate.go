package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a cleaned-up copy of cfg plus everything a
// UI should surface before saving it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.LinkedIn.Queries = trimList(out.LinkedIn.Queries)
	out.LinkedIn.Locations = trimList(out.LinkedIn.Locations)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Ingest.IntervalHours <= 0 {
		res.addErr("ingest.interval_hours must be > 0")
	} else if out.Ingest.IntervalHours < 1 {
		res.addWarn("ingest.interval_hours is very low (%d); the public feeds update slowly.", out.Ingest.IntervalHours)
	}
	if out.Ingest.PageLimit < 0 {
		res.addErr("ingest.page_limit must be >= 0")
	}

	if !out.Sources.Remotive.Enabled && !out.Sources.RemoteOK.Enabled &&
		!out.Sources.ArbeitNow.Enabled && !out.Sources.Jobicy.Enabled &&
		!out.LinkedIn.Enabled && !out.Email.Enabled {
		res.addWarn("no sources enabled; ingestion runs will always insert 0 rows.")
	}

	if out.LinkedIn.Enabled {
		if len(out.LinkedIn.Queries) == 0 {
			res.addErr("linkedin.queries is required when linkedin.enabled=true")
		}
		if len(out.LinkedIn.Locations) == 0 {
			out.LinkedIn.Locations = []string{"Worldwide"}
		}
		if out.LinkedIn.MaxJobs <= 0 {
			out.LinkedIn.MaxJobs = 150
		}
	}

	// email required fields if enabled (password not validated here; it lives in the keychain)
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			out.Email.Mailbox = "INBOX"
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; alert parsing may find nothing.")
		}
	}

	return out, res
}
