package main

import (
	"context"

	"github.com/spf13/cobra"

	"sprint-insights/jira"
	"sprint-insights/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the report scheduler until interrupted",
	Long: "Polls once a minute. At 09:00 local time it checks the active sprint:\n" +
		"on the midpoint date it publishes the mid-sprint review, on the end date\n" +
		"the sprint report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup("JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_BOARD_ID", "SPACE_KEY")
		if err != nil {
			return err
		}

		jc := jira.NewClient(d.cfg, d.log)
		generate := func(ctx context.Context, reportType string) error {
			_, _, err := runSprintReport(ctx, d, reportType, true, true)
			return err
		}

		sched := scheduler.New(jc, d.cfg.JiraBoardID, generate, d.log)
		return sched.Run(cmd.Context())
	},
}
