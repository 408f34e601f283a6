/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"blogroll/config"
	"blogroll/sources"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cqroot/prompt"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func addSourceCmd() *cli.Command {
	return &cli.Command{
		Name:  "add-source",
		Usage: "Add a blog to the sources configuration file",
		Description: `Prompts for the name, feed URL and avatar of a blog and appends it to the
sources configuration file.

The running server does not pick up new sources; restart it after editing.`,
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: func(ctx *cli.Context) error {
			path := ctx.String("config")

			cfg, err := loadOrNewConfig(path)
			if err != nil {
				return err
			}

			name, err := prompt.New().Ask("Name:").Input("")
			if err != nil {
				return err
			}

			feedURL, err := prompt.New().Ask("Feed URL:").Input("https://")
			if err != nil {
				return err
			}

			avatar, err := prompt.New().Ask("Avatar file (optional):").Input("")
			if err != nil {
				return err
			}

			source, err := newSource(cfg, name, feedURL, avatar)
			if err != nil {
				return err
			}

			cfg.Sources = append(cfg.Sources, source)
			if err := config.SaveConfig(path, cfg); err != nil {
				return err
			}

			host, _ := sources.HostOf(source.URL)
			fmt.Printf("Added %s (%s) to %s\n", source.Name, host, path)
			return nil
		},
	}
}

// loadOrNewConfig starts from an empty configuration when the file is missing or has no
// sources yet, but never from one that failed to parse
func loadOrNewConfig(path string) (*config.TomlConfig, error) {
	cfg, err := config.LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, config.ErrNoSources) {
		return &config.TomlConfig{}, nil
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return &config.TomlConfig{}, nil
	}
	return nil, err
}

// newSource validates a new entry against the existing configuration
func newSource(cfg *config.TomlConfig, name, feedURL, avatar string) (config.TomlSource, error) {
	source := config.TomlSource{
		Name:   strings.TrimSpace(name),
		URL:    strings.TrimSpace(feedURL),
		Avatar: strings.TrimSpace(avatar),
	}

	if source.Name == "" {
		return source, errors.New("name is required")
	}

	if _, err := sources.HostOf(source.URL); err != nil {
		return source, err
	}

	if lo.ContainsBy(cfg.Sources, func(s config.TomlSource) bool { return s.URL == source.URL }) {
		return source, fmt.Errorf("source %s is already configured", source.URL)
	}

	return source, nil
}
