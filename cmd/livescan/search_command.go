package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"livescan/internal/discovery"
	"livescan/internal/validation"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Print the streamers live for a query without storing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := validation.NormalizeQuery(strings.Join(args, " "))
			if valid, msg := validation.ValidateQuery(query); !valid {
				return fmt.Errorf("invalid query: %s", msg)
			}

			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			d, err := ctx.discoverer(cfg, ctx.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			res, err := d.Discover(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("%s", discovery.UserMessage(err))
			}

			if ctx.jsonOut {
				return writeJSON(cmd, map[string]any{
					"query":          res.Query,
					"total":          len(res.Identities),
					"streamers":      res.Identities,
					"failed_lookups": res.FailedLookups(),
				})
			}

			out := cmd.OutOrStdout()
			if len(res.Identities) == 0 {
				fmt.Fprintf(out, "No live streamers found for %q\n", query)
				return nil
			}

			rows := make([][]string, 0, len(res.Identities))
			for i, id := range res.Identities {
				rows = append(rows, []string{strconv.Itoa(i + 1), "@" + id})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Streamer"}, rows, []columnAlignment{alignRight, alignLeft}))
			fmt.Fprintf(out, "%d live for %q (%d from search, %d rooms, %d failed lookups)\n",
				len(res.Identities), query, res.SearchFound, res.RoomsFound, res.FailedLookups())
			return nil
		},
	}
}
