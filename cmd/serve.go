/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"blogroll/cache"
	"blogroll/feeds"
	"blogroll/pagination"
	"blogroll/server"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the blogroll API",
		Description: `Starts the blogroll HTTP server.

Entries are aggregated lazily: the first request for a page (or after the cache
time-to-live has passed) fetches every feed concurrently, later requests are
served from memory. Use --warm to fetch the full timeline at startup.`,
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"BLOGROLL_PORT"},
			},
			&cli.DurationFlag{
				Name:    "cache-ttl",
				Value:   cache.DefaultTTL,
				Usage:   "How long an aggregated timeline is served from memory",
				EnvVars: []string{"BLOGROLL_CACHE_TTL"},
			},
			&cli.IntFlag{
				Name:    "page-size",
				Value:   pagination.DefaultPageSize,
				Usage:   "Number of entries per page",
				EnvVars: []string{"BLOGROLL_PAGE_SIZE"},
			},
			&cli.StringFlag{
				Name:    "allowed-origins",
				Value:   "*",
				Usage:   "Comma separated list of origins allowed by CORS",
				EnvVars: []string{"BLOGROLL_ALLOWED_ORIGINS"},
			},
			&cli.StringFlag{
				Name:    "avatar-dir",
				Usage:   "Directory of avatar images served under /avatars",
				EnvVars: []string{"BLOGROLL_AVATAR_DIR"},
			},
			&cli.BoolFlag{
				Name:    "warm",
				Usage:   "Fetch the full timeline before the first request",
				EnvVars: []string{"BLOGROLL_WARM"},
			},
		}, fetchFlags()...),
		Action: func(ctx *cli.Context) error {
			reg, err := loadRegistry(ctx.String("config"))
			if err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"sources":  reg.Len(),
				"cacheTTL": ctx.Duration("cache-ttl"),
			}).Info("Starting blogroll...")

			resolver, c := newResolver(reg, newAggregator(ctx), ctx.Duration("cache-ttl"), ctx.Int("page-size"))

			app := server.Server(&server.ServerConfig{
				Resolver:       resolver,
				Registry:       reg,
				Cache:          c,
				AllowedOrigins: ctx.String("allowed-origins"),
				AvatarDir:      ctx.String("avatar-dir"),
			})

			runCtx, cancel := context.WithCancel(ctx.Context)
			defer cancel()

			// Graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				log.Info("Gracefully shutting down...")
				cancel()
				if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
					log.Errorf("Error during shutdown: %v", err)
				}
			}()

			if ctx.Bool("warm") {
				go func() {
					if err := resolver.Warm(runCtx, feeds.NewWarmBackOff()); err != nil {
						log.Warn("Serving without a warm cache")
					}
				}()
			}

			log.Info("Starting server...")
			if err := app.Listen(fmt.Sprintf(":%d", ctx.Int("port"))); err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}

			log.Info("Done!")
			return nil
		},
	}
}
