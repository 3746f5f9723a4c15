// Package citation imports article metadata from the Highwire style
// citation_* meta tags that journal platforms put on article landing pages.
package citation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/markup"
	"go.uber.org/zap"
)

var errPrivateHost = errors.New("connection to a private address is not allowed")

var cgnat = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01",
	"2006/01",
	"2006",
}

// Scraper fetches a landing page and maps its citation meta tags
type Scraper struct {
	config     *Config
	httpClient *http.Client
	markdown   *markup.Converter
	logger     *zap.Logger
}

// NewScraper creates a new Scraper
func NewScraper(config *Config, logger *zap.Logger) *Scraper {
	config.applyDefaults()

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !config.AllowPrivateHosts {
		// Control sees the resolved address, so DNS rebinding cannot slip past it
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || isPrivateIP(ip) {
				return fmt.Errorf("%w: %s", errPrivateHost, host)
			}
			return nil
		}
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: config.Timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Scraper{
		config: config,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= config.MaxRedirects {
					return fmt.Errorf("too many redirects (max %d)", config.MaxRedirects)
				}
				if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
					return fmt.Errorf("redirect to %s scheme blocked", req.URL.Scheme)
				}
				return nil
			},
		},
		markdown: markup.NewConverter(),
		logger:   logger,
	}
}

// Scrape fetches pageURL and reads its citation metadata.
// The returned RemoteURL is the page address after redirects.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*submission.ImportedMetadata, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, submission.ErrUnsupportedRemoteURL
	}

	body, finalURL, err := s.fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}
	tags, err := readMetaTags(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", submission.ErrNoCitationMetadata, err)
	}
	meta, err := s.toMetadata(tags)
	if err != nil {
		return nil, err
	}
	meta.IsRemote = true
	meta.RemoteURL = finalURL
	return meta, nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Info("Citation page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", submission.ErrRemoteFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: HTTP %d", submission.ErrRemoteFetchFailed, resp.StatusCode)
	}

	// meta tags live in <head>; an oversized page is parsed up to the limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.config.MaxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read body: %v", submission.ErrRemoteFetchFailed, err)
	}
	return body, resp.Request.URL.String(), nil
}

func (s *Scraper) toMetadata(tags metaTags) (*submission.ImportedMetadata, error) {
	title := tags.first("citation_title")
	if title == "" {
		return nil, submission.ErrNoCitationMetadata
	}

	meta := &submission.ImportedMetadata{
		Title:          title,
		DOI:            submission.NormalizeDOI(tags.first("citation_doi")),
		Language:       tags.first("citation_language", "dc.language"),
		Keywords:       keywords(tags.all("citation_keywords")),
		PageNumbers:    submission.PageRange(tags.first("citation_firstpage"), tags.first("citation_lastpage")),
		Volume:         tags.first("citation_volume"),
		Issue:          tags.first("citation_issue"),
		ContainerTitle: tags.first("citation_journal_title"),
		Publisher:      tags.first("citation_publisher", "dc.publisher"),
		Authors:        authors(tags),
	}

	if raw := tags.first("citation_date", "citation_publication_date", "citation_online_date"); raw != "" {
		if t, ok := parseDate(raw); ok {
			meta.DatePublished = &t
		} else {
			s.logger.Debug("Ignoring unparseable citation date", zap.String("date", raw))
		}
	}

	if raw := tags.first("description", "og:description", "citation_abstract"); raw != "" {
		abstract, err := s.markdown.HTML(raw)
		if err != nil {
			s.logger.Warn("Could not convert abstract markup", zap.Error(err))
			abstract = raw
		}
		meta.Abstract = abstract
	}
	return meta, nil
}

// authors reads citation_author tags. The institution, email and ORCID tags
// that follow an author belong to that author.
func authors(tags metaTags) []submission.ImportedAuthor {
	var out []submission.ImportedAuthor
	for _, tag := range tags {
		if tag.content == "" {
			continue
		}
		if tag.name == "citation_author" {
			given, family := splitName(tag.content)
			out = append(out, submission.ImportedAuthor{Given: given, Family: family})
			continue
		}
		if len(out) == 0 {
			continue
		}
		last := &out[len(out)-1]
		switch tag.name {
		case "citation_author_institution":
			if last.Affiliation == "" {
				last.Affiliation = tag.content
			}
		case "citation_author_email":
			last.Email = tag.content
		case "citation_author_orcid":
			last.ORCID = strings.TrimPrefix(strings.TrimPrefix(tag.content, "https://orcid.org/"), "http://orcid.org/")
		}
	}
	return out
}

// splitName accepts "Family, Given" and "Given Family"
func splitName(name string) (given, family string) {
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[i+1:]), strings.TrimSpace(name[:i])
	}
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

// keywords accepts repeated tags as well as one tag with a delimited list
func keywords(values []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		sep := ";"
		if len(values) == 1 && !strings.Contains(v, ";") {
			sep = ","
		}
		for _, k := range strings.Split(v, sep) {
			k = strings.TrimSpace(k)
			key := strings.ToLower(k)
			if k == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, k)
		}
	}
	return out
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	return cgnat.Contains(ip)
}

var _ backcontent.CitationScraper = (*Scraper)(nil)
