package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aircheck/internal/updater"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var matchFlag string
	var sinceFlag string
	var untilFlag string
	var selectFlag []string
	var dryRunFlag bool
	var refreshFlag bool
	var skipFeedsFlag bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Reconcile the local catalog against the station site",
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

			src, closeSource, err := ctx.buildSource(refreshFlag)
			if err != nil {
				return err
			}
			defer func() { _ = closeSource() }()

			report, err := updater.New(cfg, src, logger).Update(cmd.Context(), updater.Options{
				Match:     matchFlag,
				Since:     since,
				Until:     until,
				Select:    selectFlag,
				DryRun:    dryRunFlag,
				SkipFeeds: skipFeedsFlag,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&matchFlag, "match", "", "Regex or substring to narrow resource URLs")
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Only resources modified on or after this date")
	cmd.Flags().StringVar(&untilFlag, "until", "", "Only resources modified on or before this date")
	cmd.Flags().StringArrayVar(&selectFlag, "select", nil, "Resource URL that must be updated (repeatable)")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Report the diff without writing state or feeds")
	cmd.Flags().BoolVar(&refreshFlag, "refresh", false, "Bypass the fetch cache")
	cmd.Flags().BoolVar(&skipFeedsFlag, "skip-feeds", false, "Persist state but do not render feeds")
	return cmd
}
