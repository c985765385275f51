package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"aircheck/internal/catalog"
	"aircheck/internal/persist"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var matchFlag string
	var sinceFlag string
	var untilFlag string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the persisted catalog",
	}
	listCmd.PersistentFlags().StringVar(&matchFlag, "match", "", "Regex or substring to narrow entries")
	listCmd.PersistentFlags().StringVar(&sinceFlag, "since", "", "Only entries dated on or after this date")
	listCmd.PersistentFlags().StringVar(&untilFlag, "until", "", "Only entries dated on or before this date")

	loadFiltered := func() (*catalog.Catalog, *catalog.Filter, error) {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, nil, err
		}
		since, err := parseDateFlag("since", sinceFlag)
		if err != nil {
			return nil, nil, err
		}
		until, err := parseDateFlag("until", untilFlag)
		if err != nil {
			return nil, nil, err
		}
		filter, err := catalog.NewFilter(matchFlag, since, until)
		if err != nil {
			return nil, nil, err
		}
		cat, exists, err := persist.Load(cfg.StatePath())
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			return nil, nil, fmt.Errorf("no catalog state at %s; run update first", cfg.StatePath())
		}
		return cat, filter, nil
	}

	listCmd.AddCommand(&cobra.Command{
		Use:   "shows",
		Short: "List catalogued shows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, filter, err := loadFiltered()
			if err != nil {
				return err
			}
			rows := make([][]string, 0)
			for _, show := range cat.ListShows(filter) {
				rows = append(rows, []string{
					show.UUID.String(),
					show.Title,
					strconv.Itoa(len(show.Episodes)),
					hostList(show),
					show.URL,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"UUID", "Title", "Episodes", "Hosts", "URL"}, rows))
			return nil
		},
	})

	listCmd.AddCommand(&cobra.Command{
		Use:   "episodes",
		Short: "List catalogued episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, filter, err := loadFiltered()
			if err != nil {
				return err
			}
			rows := make([][]string, 0)
			for _, episode := range cat.ListEpisodes(filter) {
				airdate := episode.Airdate
				rows = append(rows, []string{
					episode.UUID.String(),
					episode.Title,
					formatDate(&airdate),
					episode.URL,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"UUID", "Title", "Airdate", "URL"}, rows))
			return nil
		},
	})

	listCmd.AddCommand(&cobra.Command{
		Use:   "hosts",
		Short: "List catalogued hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, filter, err := loadFiltered()
			if err != nil {
				return err
			}
			rows := make([][]string, 0)
			for _, host := range cat.ListHosts(filter) {
				rows = append(rows, []string{host.UUID.String(), host.Name, host.URL})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"UUID", "Name", "URL"}, rows))
			return nil
		},
	})

	listCmd.AddCommand(&cobra.Command{
		Use:   "resources",
		Short: "List known resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, filter, err := loadFiltered()
			if err != nil {
				return err
			}
			rows := make([][]string, 0)
			for _, resource := range cat.ListResources(filter) {
				rows = append(rows, []string{resource.URL, resource.Source, formatDate(resource.LastUpdated)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"URL", "Source", "Lastmod"}, rows))
			return nil
		},
	})

	return listCmd
}

func hostList(show *catalog.Show) string {
	names := make([]string, 0, len(show.Hosts))
	for _, host := range show.Hosts {
		if host != nil && host.Name != "" {
			names = append(names, host.Name)
		}
	}
	return strings.Join(names, ", ")
}
