// Package crossref resolves DOIs against the Crossref REST API.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/markup"
	"go.uber.org/zap"
)

// maxResponseSize caps a works response (5MB)
const maxResponseSize = 5 * 1024 * 1024

const cacheKeyPrefix = "works:"

// Cache stores raw works responses
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// Client implements the DOI resolver on top of the Crossref works endpoint
type Client struct {
	config     *Config
	httpClient *http.Client
	cache      Cache
	markdown   *markup.Converter
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache enables response caching
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// NewClient creates a new Crossref client
func NewClient(config *Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		markdown:   markup.NewConverter(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolve fetches the works record for doi.
// A 404 maps to DOI_NOT_FOUND; any other failure maps to REGISTRY_UNAVAILABLE.
func (c *Client) Resolve(ctx context.Context, doi string) (*submission.ImportedMetadata, error) {
	key := cacheKeyPrefix + strings.ToLower(doi)

	if body, ok := c.cached(ctx, key); ok {
		meta, err := c.decode(body)
		if err == nil {
			c.logger.Debug("Crossref cache hit", zap.String("doi", doi))
			return meta, nil
		}
		c.logger.Warn("Discarding unreadable cached Crossref response", zap.String("doi", doi), zap.Error(err))
	}

	body, err := c.fetch(ctx, doi)
	if err != nil {
		return nil, err
	}
	meta, err := c.decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", submission.ErrRegistryUnavailable, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.config.CacheTTL); err != nil {
			c.logger.Warn("Failed to cache Crossref response", zap.String("doi", doi), zap.Error(err))
		}
	}
	return meta, nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Crossref cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return body, ok
}

func (c *Client) worksURL(doi string) (string, error) {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	u := base.JoinPath("works", doi)
	if c.config.Mailto != "" {
		q := u.Query()
		q.Set("mailto", c.config.Mailto)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) fetch(ctx context.Context, doi string) ([]byte, error) {
	endpoint, err := c.worksURL(doi)
	if err != nil {
		return nil, fmt.Errorf("build crossref url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create crossref request: %w", err)
	}
	ua := c.config.UserAgent
	if c.config.Mailto != "" {
		ua += " (mailto:" + c.config.Mailto + ")"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Crossref request failed", zap.String("doi", doi), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", submission.ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Crossref response",
		zap.String("doi", doi),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, submission.ErrDOINotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: crossref returned HTTP %d", submission.ErrRegistryUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", submission.ErrRegistryUnavailable, err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", submission.ErrRegistryUnavailable, maxResponseSize)
	}
	return body, nil
}

func (c *Client) decode(body []byte) (*submission.ImportedMetadata, error) {
	var resp worksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse works response: %w", err)
	}
	return c.toMetadata(&resp.Message), nil
}

func (c *Client) toMetadata(w *work) *submission.ImportedMetadata {
	meta := &submission.ImportedMetadata{
		Title:          first(w.Title),
		Subtitle:       first(w.Subtitle),
		Language:       w.Language,
		DOI:            submission.NormalizeDOI(w.DOI),
		DatePublished:  publicationDate(w),
		Keywords:       w.Subject,
		PageNumbers:    w.Page,
		Volume:         w.Volume,
		Issue:          w.Issue,
		ContainerTitle: first(w.ContainerTitle),
		Publisher:      w.Publisher,
		RemoteURL:      w.URL,
	}

	if w.Abstract != "" {
		abstract, err := c.markdown.JATS(w.Abstract)
		if err != nil {
			c.logger.Warn("Could not convert Crossref abstract", zap.String("doi", w.DOI), zap.Error(err))
		} else {
			meta.Abstract = abstract
		}
	}

	for _, a := range w.Author {
		author := submission.ImportedAuthor{
			Given:  strings.TrimSpace(a.Given),
			Family: strings.TrimSpace(a.Family),
			ORCID:  bareORCID(a.ORCID),
		}
		if author.Family == "" && author.Given == "" {
			author.Family = strings.TrimSpace(a.Name)
		}
		if len(a.Affiliation) > 0 {
			author.Affiliation = strings.TrimSpace(a.Affiliation[0].Name)
		}
		if author.Family == "" && author.Given == "" {
			continue
		}
		meta.Authors = append(meta.Authors, author)
	}
	return meta
}

// publicationDate prefers print over online over issued
func publicationDate(w *work) *time.Time {
	for _, d := range []*partialDate{w.PublishedPrint, w.PublishedOnline, w.Issued} {
		if t := d.time(); t != nil {
			return t
		}
	}
	return nil
}

func (d *partialDate) time() *time.Time {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return nil
	}
	parts := d.DateParts[0]
	year, month, day := parts[0], 1, 1
	if year <= 0 {
		return nil
	}
	if len(parts) > 1 && parts[1] >= 1 && parts[1] <= 12 {
		month = parts[1]
	}
	if len(parts) > 2 && parts[2] >= 1 && parts[2] <= 31 {
		day = parts[2]
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func bareORCID(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://orcid.org/")
	return strings.TrimPrefix(s, "http://orcid.org/")
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var _ backcontent.DOIResolver = (*Client)(nil)
