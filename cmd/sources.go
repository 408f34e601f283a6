/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

func sourcesCmd() *cli.Command {
	return &cli.Command{
		Name:        "sources",
		Usage:       "List the configured sources",
		Description: `Validates the sources configuration file and prints every source with the host used to filter by author.`,
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: func(ctx *cli.Context) error {
			reg, err := loadRegistry(ctx.String("config"))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tHOST\tURL")
			for i, s := range reg.All() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, s.Name, s.Host, s.URL)
			}
			return w.Flush()
		},
	}
}
