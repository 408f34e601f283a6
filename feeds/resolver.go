// Package feeds turns page and author query parameters into a page of the blogroll timeline
package feeds

import (
	"blogroll/cache"
	"blogroll/models"
	"blogroll/pagination"
	"context"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Sources is the read side of the source registry
type Sources interface {
	All() []models.Source
	ByHost(host string) []models.Source
}

// Aggregator merges the feeds of a set of sources into one timeline
type Aggregator interface {
	Aggregate(ctx context.Context, sources []models.Source) []models.AggregatedItem
}

type Resolver struct {
	sources    Sources
	aggregator Aggregator
	cache      *cache.Cache
	pageSize   int
}

func NewResolver(sources Sources, aggregator Aggregator, c *cache.Cache, pageSize int) *Resolver {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	return &Resolver{
		sources:    sources,
		aggregator: aggregator,
		cache:      c,
		pageSize:   pageSize,
	}
}

// ParsePage parses the page query parameter. Anything that is not a positive integer is page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// CacheKey is the cache key for an author filter; an empty author means the unfiltered timeline
func CacheKey(author string) string {
	author = normalizeAuthor(author)
	if author == "" {
		return cache.AllKey
	}
	return author
}

func normalizeAuthor(author string) string {
	return strings.ToLower(strings.TrimSpace(author))
}

// Resolve returns one page of the timeline, filtered to author's host when author is set.
// An unknown author yields an empty page rather than an error.
func (r *Resolver) Resolve(ctx context.Context, page int, author string) models.PageResult {
	if page < 1 {
		page = 1
	}
	author = normalizeAuthor(author)
	key := CacheKey(author)

	// Unknown authors never reach the cache, which keeps its keys bounded by the registry
	subset := r.subset(author)
	var items []models.AggregatedItem
	if author == "" || len(subset) > 0 {
		items = r.cache.GetOrLoad(ctx, key, func(ctx context.Context) []models.AggregatedItem {
			return r.aggregator.Aggregate(ctx, subset)
		})
	}

	// Taken from the cached items, so it can lag behind a registry change until the entry expires
	var resolvedAuthor *models.Source
	if author != "" && len(items) > 0 {
		src := items[0].Source
		resolvedAuthor = &src
	}

	p := pagination.Paginate(items, page, r.pageSize)

	log.WithFields(log.Fields{
		"key":        key,
		"page":       p.Page,
		"totalPages": p.TotalPages,
		"items":      len(p.Items),
	}).Debug("Resolved page")

	return models.PageResult{
		Items:          p.Items,
		Page:           p.Page,
		TotalPages:     p.TotalPages,
		ResolvedAuthor: resolvedAuthor,
	}
}

func (r *Resolver) subset(author string) []models.Source {
	if author == "" {
		return r.sources.All()
	}
	return r.sources.ByHost(author)
}
