/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"blogroll/models"
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func aggregateCmd() *cli.Command {
	return &cli.Command{
		Name:  "aggregate",
		Usage: "Run one aggregation pass and print the timeline",
		Description: `Fetches every configured feed (or only the feeds of --author) once and
prints the merged timeline, newest first.

Returns each entry as a JSON object on a single line. Use a tool like jq to process
the output.

Prints all other log messages to stderr.`,
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "author",
				Aliases: []string{"a"},
				Usage:   "Only aggregate the sources with this host",
			},
		}, fetchFlags()...),
		Action: func(ctx *cli.Context) error {
			// Keep stdout for entries only
			log.SetOutput(os.Stderr)

			reg, err := loadRegistry(ctx.String("config"))
			if err != nil {
				return err
			}

			subset := reg.All()
			if author := ctx.String("author"); author != "" {
				subset = reg.ByHost(author)
				if len(subset) == 0 {
					log.WithFields(log.Fields{"author": author}).Warn("No source matches author")
				}
			}

			items := newAggregator(ctx).Aggregate(ctx.Context, subset)
			for i := range items {
				printStdout(&items[i])
			}
			return nil
		},
	}
}

func printStdout(item *models.AggregatedItem) {
	// Print as single JSON string on a single line
	itemJson, err := json.Marshal(item)
	if err == nil {
		fmt.Println(string(itemJson))
	}
}
