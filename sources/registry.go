// Package sources holds the static, ordered list of blogs the aggregator reads from
package sources

import (
	"blogroll/config"
	"blogroll/models"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// Registry is immutable after New; the order of sources is the order in the config file
type Registry struct {
	sources []models.Source
}

// HostOf returns the lower-cased host name of rawURL, without port
func HostOf(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid url %q: scheme must be http or https", rawURL)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid url %q: missing host", rawURL)
	}
	return strings.ToLower(u.Hostname()), nil
}

func New(cfgSources []config.TomlSource) (*Registry, error) {
	srcs := make([]models.Source, 0, len(cfgSources))
	for i, s := range cfgSources {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("source %d: name is required", i)
		}

		host, err := HostOf(s.URL)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", name, err)
		}

		avatar := s.Avatar
		if avatar == "" {
			avatar = models.DefaultAvatar
		}

		srcs = append(srcs, models.Source{
			Name:   name,
			URL:    strings.TrimSpace(s.URL),
			Host:   host,
			Avatar: avatar,
		})
	}

	return &Registry{sources: srcs}, nil
}

// All returns a copy of every registered source
func (r *Registry) All() []models.Source {
	out := make([]models.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByHost returns the sources whose host matches, in registry order. The result may be empty.
func (r *Registry) ByHost(host string) []models.Source {
	host = strings.ToLower(strings.TrimSpace(host))
	return lo.Filter(r.sources, func(s models.Source, _ int) bool {
		return s.Host == host
	})
}

func (r *Registry) Len() int {
	return len(r.sources)
}

// Views maps the registry into its JSON listing shape
func (r *Registry) Views() []models.SourceView {
	return lo.Map(r.sources, func(s models.Source, _ int) models.SourceView {
		return models.SourceView{
			Name:       s.Name,
			URL:        s.URL,
			Host:       s.Host,
			AvatarPath: s.AvatarPath(),
			BlogURL:    s.BlogURL(),
		}
	})
}
