package feeds

import (
	"blogroll/cache"
	"blogroll/models"
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

var errDegradedPass = errors.New("aggregation pass produced no items")

// NewWarmBackOff is the retry schedule used by Warm when every source failed
func NewWarmBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 30 * time.Second
	b.Multiplier = 1.5
	b.MaxElapsedTime = 2 * time.Minute
	return b
}

// Warm fills the unfiltered cache entry before the first request arrives. A pass that
// yields nothing while sources are registered is retried on b until it gives up.
func (r *Resolver) Warm(ctx context.Context, b backoff.BackOff) error {
	sources := r.sources.All()
	if len(sources) == 0 {
		return nil
	}

	attempt := 0
	operation := func() error {
		attempt++
		items, err := r.cache.Fill(ctx, cache.AllKey, func(ctx context.Context) []models.AggregatedItem {
			return r.aggregator.Aggregate(ctx, sources)
		})
		if errors.Is(err, cache.ErrEmptyLoad) {
			return errDegradedPass
		}

		log.WithFields(log.Fields{
			"items":    len(items),
			"attempts": attempt,
		}).Info("Cache warmed")
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"error":   err,
			"attempt": attempt,
			"wait":    wait,
		}).Warn("Cache warm-up failed, retrying")
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		log.WithFields(log.Fields{
			"error":    err,
			"attempts": attempt,
		}).Error("Giving up on cache warm-up")
		return err
	}
	return nil
}
