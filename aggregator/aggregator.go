// Package aggregator fans out feed fetches over a set of sources and merges the results
// into a single timeline, newest first.
package aggregator

import (
	"blogroll/metrics"
	"blogroll/models"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves the entries of one source
type Fetcher interface {
	Fetch(ctx context.Context, source models.Source) ([]models.Item, error)
}

type Aggregator struct {
	fetcher Fetcher
}

func New(fetcher Fetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher}
}

// Aggregate fetches every source concurrently and waits for all of them. A source that
// fails contributes no items. The result is sorted by publication time, newest first;
// ties and undated items keep source order, then feed order.
func (a *Aggregator) Aggregate(ctx context.Context, sources []models.Source) []models.AggregatedItem {
	start := time.Now()
	pass := uuid.NewString()

	// Each goroutine owns exactly one slot, so no locking is needed
	results := make([][]models.AggregatedItem, len(sources))
	failed := make([]bool, len(sources))

	var g errgroup.Group
	for i, source := range sources {
		g.Go(func() error {
			items, err := a.fetcher.Fetch(ctx, source)
			if err != nil {
				failed[i] = true
				log.WithFields(log.Fields{
					"pass":  pass,
					"host":  source.Host,
					"url":   source.URL,
					"error": err,
				}).Warn("Source fetch failed, skipping it for this pass")
				return nil
			}

			results[i] = lo.Map(items, func(item models.Item, _ int) models.AggregatedItem {
				return models.AggregatedItem{
					Item:        item,
					Source:      source,
					SourceIndex: i,
				}
			})
			return nil
		})
	}
	// Goroutines never return an error
	_ = g.Wait()

	merged := lo.Flatten(results)
	if merged == nil {
		merged = []models.AggregatedItem{}
	}
	SortByPublished(merged)

	elapsed := time.Since(start)
	metrics.AggregationDuration.Observe(elapsed.Seconds())

	log.WithFields(log.Fields{
		"pass":    pass,
		"sources": len(sources),
		"failed":  lo.Count(failed, true),
		"items":   len(merged),
		"latency": elapsed,
	}).Info("Aggregation pass finished")

	return merged
}

// SortByPublished orders items newest first. The sort is stable and undated items go last.
func SortByPublished(items []models.AggregatedItem) {
	slices.SortStableFunc(items, func(a, b models.AggregatedItem) int {
		switch {
		case a.Published.IsZero() && b.Published.IsZero():
			return 0
		case a.Published.IsZero():
			return 1
		case b.Published.IsZero():
			return -1
		}
		return b.Published.Compare(a.Published)
	})
}
