package linkedin

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"greenremote-engine/internal/domain"
	"greenremote-engine/internal/feeds/util"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// EmailConfig points at a mailbox receiving LinkedIn job-alert digests.
// The password comes from the OS keychain (or env), never from config.
type EmailConfig struct {
	Enabled     bool
	IMAPHost    string
	IMAPPort    int
	Username    string
	Password    string
	Mailbox     string
	MaxMessages int
}

// fetchAlertMail pulls unseen alert emails and parses the job cards out of
// their HTML bodies. Messages are marked seen only after a successful parse
// so a crashed run re-reads them.
func (f *Fetcher) fetchAlertMail(ctx context.Context) ([]domain.Job, error) {
	ec := f.cfg.Email
	if ec.IMAPHost == "" || ec.Username == "" || ec.Password == "" {
		return nil, errors.New("alert mail: imap host/username/password required")
	}
	if ec.Mailbox == "" {
		ec.Mailbox = "INBOX"
	}
	if ec.MaxMessages <= 0 {
		ec.MaxMessages = 25
	}

	addr := fmt.Sprintf("%s:%d", ec.IMAPHost, ec.IMAPPort)
	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: ec.IMAPHost},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}
	defer func() { _ = c.Close() }()

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(ec.Username, ec.Password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	defer func() { _ = c.Logout().Wait() }()

	if _, err := c.Select(ec.Mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", ec.Mailbox, err)
	}

	searchData, err := c.UIDSearch(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > ec.MaxMessages {
		uids = uids[len(uids)-ec.MaxMessages:] // newest UIDs last
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	var out []domain.Job
	var parsed []imap.UID

	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return out, fmt.Errorf("imap fetch collect: %w", err)
		}

		subject, from := "", ""
		if buf.Envelope != nil {
			subject = buf.Envelope.Subject
			if len(buf.Envelope.From) > 0 {
				from = buf.Envelope.From[0].Addr()
			}
		}
		if !looksLikeJobAlert(from, subject) {
			continue
		}

		body := buf.FindBodySection(bodyAll)
		if len(body) == 0 {
			continue
		}

		jobs := ParseAlertHTML(string(body))
		out = append(out, jobs...)
		parsed = append(parsed, buf.UID)
	}

	if len(parsed) > 0 {
		cmd := c.Store(imap.UIDSetNum(parsed...), &imap.StoreFlags{
			Op:     imap.StoreFlagsAdd,
			Silent: true,
			Flags:  []imap.Flag{imap.FlagSeen},
		}, nil)
		_ = cmd.Close()
	}

	return out, nil
}

func looksLikeJobAlert(from, subject string) bool {
	if strings.Contains(strings.ToLower(from), "jobalerts-noreply") {
		return true
	}
	s := strings.ToLower(subject)
	return strings.Contains(s, "job alert") || strings.Contains(s, "new jobs")
}

// ParseAlertHTML extracts the job cards from a LinkedIn alert digest body.
// Several anchors point at the same job (logo, title, footer link); they
// are merged per job URL so whichever anchor carries the title wins.
func ParseAlertHTML(htmlBody string) []domain.Job {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil
	}

	byURL := map[string]*domain.Job{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		lh := strings.ToLower(strings.TrimSpace(href))
		if lh == "" || !strings.Contains(lh, "linkedin.com") {
			return
		}
		if !strings.Contains(lh, "/jobs/view/") && !strings.Contains(lh, "/comm/jobs/view/") {
			return
		}

		jobURL := util.CanonicalizeURL(href)
		if jobURL == "" {
			return
		}

		j, ok := byURL[jobURL]
		if !ok {
			j = &domain.Job{ApplyURL: jobURL, Source: "linkedin"}
			byURL[jobURL] = j
			order = append(order, jobURL)
		}

		if t := util.CleanText(a.Text()); plausibleTitle(t) && j.Title == "" {
			j.Title = t
		}

		// Company · Location usually sits in a <p> within the same card table.
		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Parent()
		}
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if t == "" || j.Company != "" {
				return
			}
			if parts := strings.SplitN(t, " · ", 2); len(parts) == 2 {
				j.Company = strings.TrimSpace(parts[0])
				j.Location = strings.TrimSpace(parts[1])
			}
		})
	})

	out := make([]domain.Job, 0, len(order))
	for _, u := range order {
		j := byURL[u]
		if !j.Valid() {
			continue
		}
		out = append(out, *j)
	}
	return out
}

// plausibleTitle rejects the CTA/badge anchor texts the digests are full of.
func plausibleTitle(t string) bool {
	if len(t) < 4 || len(t) > 140 {
		return false
	}
	l := strings.ToLower(t)
	for _, bad := range []string{"see all", "view job", "easy apply", "unsubscribe", "http://", "https://", "promoted", "actively recruiting"} {
		if strings.Contains(l, bad) {
			return false
		}
	}
	return !strings.Contains(t, " · ")
}
