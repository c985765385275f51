package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aircheck/internal/feeds"
	"aircheck/internal/persist"
)

func newSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Rewrite the state file and render feeds from the current catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			cat, exists, err := persist.Load(cfg.StatePath())
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("no catalog state at %s; run update first", cfg.StatePath())
			}

			if err := persist.Save(cfg.StatePath(), cat); err != nil {
				return err
			}
			written, err := feeds.NewWriter(cat, cfg.Paths.FeedDir, cfg.Feeds, logger).WriteAll()
			if err != nil {
				return err
			}

			shows, episodes, hosts, _ := cat.Counts()
			fmt.Fprintf(cmd.OutOrStdout(),
				"Saved %d shows, %d episodes, %d hosts; rendered %d feeds to %s.\n",
				shows, episodes, hosts, written, cfg.Paths.FeedDir)
			return nil
		},
	}
}
