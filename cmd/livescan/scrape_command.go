package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"livescan/internal/db"
	"livescan/internal/scraper"
	"livescan/internal/validation"
)

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape [query...]",
		Short: "Scan queries and store the results (defaults to SEARCH_QUERIES)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}

			queries := cfg.SearchQueries
			if len(args) > 0 {
				queries = make([]string, 0, len(args))
				for _, q := range args {
					q = validation.NormalizeQuery(q)
					if valid, msg := validation.ValidateQuery(q); !valid {
						return fmt.Errorf("invalid query %q: %s", q, msg)
					}
					queries = append(queries, q)
				}
			}
			if len(queries) == 0 {
				return fmt.Errorf("no queries to scrape")
			}

			log := ctx.logger(cmd.ErrOrStderr())
			d, err := ctx.discoverer(cfg, log)
			if err != nil {
				return err
			}

			database, err := db.New(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()
			if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}

			svc := scraper.New(d, database, scraper.Options{Timeout: cfg.SearchTimeout}, log)
			res := svc.ScrapeQueries(cmd.Context(), queries)

			if ctx.jsonOut {
				return writeJSON(cmd, res)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Queries processed", fmt.Sprintf("%d/%d", res.QueriesProcessed, len(queries))},
				{"Streamers found", strconv.Itoa(res.TotalFound)},
				{"New", strconv.Itoa(res.TotalNew)},
				{"Updated", strconv.Itoa(res.TotalUpdated)},
				{"Errors", strconv.Itoa(len(res.Errors))},
			}
			fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			for _, msg := range res.Errors {
				fmt.Fprintln(out, "  "+msg)
			}
			return nil
		},
	}
}
