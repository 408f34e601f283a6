package cmd

import (
	"blogroll/aggregator"
	"blogroll/cache"
	"blogroll/config"
	"blogroll/feeds"
	"blogroll/fetcher"
	"blogroll/pagination"
	"blogroll/sources"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

// Flags shared by every command that reads the source list
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config/sources.toml",
		Usage:   "Path to sources configuration file",
		EnvVars: []string{"BLOGROLL_CONFIG"},
	}
}

func fetchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:    "fetch-timeout",
			Value:   fetcher.DefaultTimeout,
			Usage:   "Timeout for fetching a single feed",
			EnvVars: []string{"BLOGROLL_FETCH_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "user-agent",
			Value:   fetcher.DefaultUserAgent,
			Usage:   "User-Agent header sent to feeds",
			EnvVars: []string{"BLOGROLL_USER_AGENT"},
		},
		&cli.IntFlag{
			Name:    "max-items",
			Value:   0,
			Usage:   "Keep at most this many entries per feed, 0 keeps all",
			EnvVars: []string{"BLOGROLL_MAX_ITEMS"},
		},
	}
}

func loadRegistry(path string) (*sources.Registry, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	reg, err := sources.New(cfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("invalid source registry: %w", err)
	}
	return reg, nil
}

func newAggregator(ctx *cli.Context) *aggregator.Aggregator {
	return aggregator.New(fetcher.New(
		fetcher.WithTimeout(ctx.Duration("fetch-timeout")),
		fetcher.WithUserAgent(ctx.String("user-agent")),
		fetcher.WithMaxItems(ctx.Int("max-items")),
	))
}

func newResolver(reg *sources.Registry, agg feeds.Aggregator, ttl time.Duration, pageSize int) (*feeds.Resolver, *cache.Cache) {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	c := cache.New(ttl)
	return feeds.NewResolver(reg, agg, c, pageSize), c
}
