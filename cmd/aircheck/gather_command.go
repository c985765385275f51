package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"aircheck/internal/catalog"
	"aircheck/internal/updater"
)

func newGatherCommand(ctx *commandContext) *cobra.Command {
	var matchFlag string
	var sinceFlag string
	var untilFlag string
	var refreshFlag bool

	cmd := &cobra.Command{
		Use:   "gather",
		Short: "Discover catalog resources without enriching them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			since, err := parseDateFlag("since", sinceFlag)
			if err != nil {
				return err
			}
			until, err := parseDateFlag("until", untilFlag)
			if err != nil {
				return err
			}
			filter, err := catalog.NewFilter(matchFlag, since, until)
			if err != nil {
				return err
			}

			src, closeSource, err := ctx.buildSource(refreshFlag)
			if err != nil {
				return err
			}
			defer func() { _ = closeSource() }()

			resources, err := updater.New(cfg, src, logger).Discover(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(resources))
			for _, resource := range resources {
				if !filter.MatchResource(resource) {
					continue
				}
				rows = append(rows, []string{resource.URL, resource.Source, formatDate(resource.LastUpdated)})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"URL", "Sitemap", "Lastmod"}, rows))
			fmt.Fprintf(out, "Discovered %d resources (%d after filtering).\n", len(resources), len(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&matchFlag, "match", "", "Regex or substring to narrow resource URLs")
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Only resources modified on or after this date")
	cmd.Flags().StringVar(&untilFlag, "until", "", "Only resources modified on or before this date")
	cmd.Flags().BoolVar(&refreshFlag, "refresh", false, "Bypass the fetch cache")
	return cmd
}
