package server

import (
	"blogroll/cache"
	"blogroll/feeds"
	"blogroll/models"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Resolver produces pages of the timeline
type Resolver interface {
	Resolve(ctx context.Context, page int, author string) models.PageResult
}

// Registry lists the configured sources
type Registry interface {
	Len() int
	Views() []models.SourceView
}

type ServerConfig struct {

	// Resolver serving the entries endpoint
	Resolver Resolver

	// Source registry, for listing and health
	Registry Registry

	// Cache is only inspected for health reporting
	Cache *cache.Cache

	// Comma separated list of origins allowed by CORS
	AllowedOrigins string

	// Optional directory served under /avatars
	AvatarDir string
}

// Returns a fiber.App instance to be used as an HTTP server for the blogroll
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New(fiber.Config{
		AppName: "blogroll",
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	allowedOrigins := config.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,HEAD,OPTIONS",
	}))

	app.Get("/api/entries", func(c *fiber.Ctx) error {
		page := feeds.ParsePage(c.Query("page", "1"))
		author := strings.TrimSpace(c.Query("author", ""))

		log.WithFields(log.Fields{
			"page":   page,
			"author": author,
		}).Debug("Resolve entries with parameters")

		result := config.Resolver.Resolve(c.UserContext(), page, author)

		return c.JSON(models.EntriesResponse{
			PageResult: result,
			Prev:       pageLink(result.HasPrev(), result.Page-1, author),
			Next:       pageLink(result.HasNext(), result.Page+1, author),
		})
	})

	app.Get("/api/sources", func(c *fiber.Ctx) error {
		return c.JSON(config.Registry.Views())
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		cachedKeys := 0
		if config.Cache != nil {
			cachedKeys = config.Cache.Len()
		}
		return c.JSON(fiber.Map{
			"status":     "ok",
			"sources":    config.Registry.Len(),
			"cachedKeys": cachedKeys,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if config.AvatarDir != "" {
		app.Use("/avatars", filesystem.New(filesystem.Config{
			Browse: false,
			Root:   http.Dir(config.AvatarDir),
			MaxAge: int((24 * time.Hour).Seconds()),
		}))
	}

	return app
}

// pageLink builds the query string of a neighbouring page, or nil when there is none
func pageLink(ok bool, page int, author string) *string {
	if !ok {
		return nil
	}
	link := fmt.Sprintf("page=%d", page)
	if author != "" {
		link += "&author=" + url.QueryEscape(author)
	}
	return &link
}
