// Package fetcher retrieves a single RSS or Atom feed and normalizes its entries
package fetcher

import (
	"blogroll/metrics"
	"blogroll/models"
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "blogroll/1.0 (+https://github.com/blogroll)"
)

// FetchError is returned when a source could not be retrieved or parsed
type FetchError struct {
	Source models.Source
	Cause  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Source.Host, e.Source.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxItems  int
	policy    *bluemonday.Policy
}

type Option func(*Fetcher)

// WithTimeout bounds each fetch, including reading and parsing the body
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMaxItems keeps only the first n entries of each feed. Zero keeps everything.
func WithMaxItems(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxItems = n
		}
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		policy:    bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads and parses the feed of source. Any failure, including a timeout,
// is reported as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, source models.Source) ([]models.Item, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	items, err := f.fetch(ctx, source)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(source.Host).Inc()
		return nil, &FetchError{Source: source, Cause: err}
	}

	log.WithFields(log.Fields{
		"host":    source.Host,
		"items":   len(items),
		"latency": time.Since(start),
	}).Debug("Fetched feed")

	return items, nil
}

func (f *Fetcher) fetch(ctx context.Context, source models.Source) ([]models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// gofeed parsers are not safe for concurrent use, so every fetch gets its own
	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return f.convertItems(feed), nil
}

func (f *Fetcher) convertItems(feed *gofeed.Feed) []models.Item {
	entries := feed.Items
	if f.maxItems > 0 && len(entries) > f.maxItems {
		entries = entries[:f.maxItems]
	}

	items := make([]models.Item, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}

		var published time.Time
		raw := entry.Published
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
			if raw == "" {
				raw = entry.Updated
			}
		}

		content := entry.Content
		if strings.TrimSpace(content) == "" {
			content = entry.Description
		}

		items = append(items, models.Item{
			Title:          strings.TrimSpace(entry.Title),
			Link:           itemLink(entry),
			Published:      published,
			PublishedRaw:   raw,
			ContentSnippet: f.snippet(content),
			Extra:          extraFields(entry),
		})
	}
	return items
}

func itemLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}
	if len(entry.Links) > 0 {
		return entry.Links[0]
	}
	return ""
}

var whitespace = regexp.MustCompile(`\s+`)

// snippet reduces HTML content to plain text
func (f *Fetcher) snippet(content string) string {
	text := html.UnescapeString(f.policy.Sanitize(content))
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// extraFields collects the parts of an entry the core passes through untouched
func extraFields(entry *gofeed.Item) map[string]any {
	extra := map[string]any{}
	if entry.GUID != "" {
		extra["guid"] = entry.GUID
	}
	if entry.Description != "" {
		extra["description"] = entry.Description
	}
	if entry.Content != "" {
		extra["content"] = entry.Content
	}
	if entry.Updated != "" {
		extra["updated"] = entry.Updated
	}
	if len(entry.Categories) > 0 {
		extra["categories"] = entry.Categories
	}
	if len(entry.Authors) > 0 {
		names := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			if a != nil && a.Name != "" {
				names = append(names, a.Name)
			}
		}
		if len(names) > 0 {
			extra["authors"] = names
		}
	}
	if entry.Image != nil && entry.Image.URL != "" {
		extra["image"] = entry.Image.URL
	}
	if len(entry.Enclosures) > 0 {
		urls := make([]string, 0, len(entry.Enclosures))
		for _, e := range entry.Enclosures {
			if e != nil && e.URL != "" {
				urls = append(urls, e.URL)
			}
		}
		if len(urls) > 0 {
			extra["enclosures"] = urls
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}
