package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sprint-insights/web"
)

var (
	supportPort string
	sprintPort  string
)

var serveCmd = &cobra.Command{
	Use:   "serve <support|sprint|all>",
	Short: "Run the HTTP API servers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		which := args[0]
		if which != "support" && which != "sprint" && which != "all" {
			return fmt.Errorf("serve target must be support, sprint, or all, got %q", which)
		}

		d, err := setup(serveRequirements(which)...)
		if err != nil {
			return err
		}

		var g errgroup.Group
		if which == "support" || which == "all" {
			srv := web.NewSupportServer(d.cfg, d.th, d.llm, d.log)
			g.Go(func() error { return srv.Start(supportPort) })
		}
		if which == "sprint" || which == "all" {
			srv := web.NewSprintServer(d.cfg, d.th, d.llm, d.log)
			g.Go(func() error { return srv.Start(sprintPort) })
		}
		return g.Wait()
	},
}

// serveRequirements returns the configuration each serve target depends on.
// The sprint server publishes to Confluence, so it needs the board and
// space settings up front rather than failing on the first request.
func serveRequirements(which string) []string {
	required := []string{"JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT"}
	if which == "sprint" || which == "all" {
		required = append(required,
			"JIRA_BOARD_ID", "CONFLUENCE_URL", "CONFLUENCE_USER", "CONFLUENCE_API_TOKEN", "SPACE_KEY")
	}
	return required
}

func init() {
	serveCmd.Flags().StringVar(&supportPort, "support-port", "5001", "Port for the support ticket API")
	serveCmd.Flags().StringVar(&sprintPort, "sprint-port", "5002", "Port for the sprint report API")
}
