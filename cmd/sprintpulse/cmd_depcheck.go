package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprint-insights/depcheck"
	"sprint-insights/jira"
)

var depcheckDryRun bool

var depcheckCmd = &cobra.Command{
	Use:   "depcheck",
	Short: "Report outdated npm dependencies as a Jira ticket",
	Long: "Compares package.json in the configured repository against the npm\n" +
		"registry, scans the code for usages of the outdated packages, optionally\n" +
		"asks the configured model to assess each upgrade, and files the findings\n" +
		"as a single Jira task.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup("JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT")
		if err != nil {
			return err
		}

		deps, err := depcheck.LoadManifest(d.cfg.RepoPath)
		if err != nil {
			return err
		}
		d.log.Info().Int("dependencies", len(deps)).Msg("🔍 checking npm registry")

		outdated := depcheck.NewRegistry(d.log).FindOutdated(deps)
		if len(outdated) == 0 {
			fmt.Println("✅ All packages are up to date")
			return nil
		}

		fmt.Println("📦 Outdated packages:")
		for _, o := range outdated {
			fmt.Printf("  - %s: %s -> %s (%s)\n", o.Package, o.Current, o.Latest, o.Type)
		}

		usage := depcheck.CollectUsage(d.cfg.RepoPath, outdated, d.log)

		reports, err := depcheck.AnalyzeUpgrades(cmd.Context(), d.llm, outdated)
		if err != nil {
			d.log.Warn().Err(err).Msg("upgrade analysis unavailable, filing without it")
		}

		description := depcheck.TicketDescription(outdated, reports, usage)
		if depcheckDryRun {
			fmt.Println()
			fmt.Println(description)
			return nil
		}

		jc := jira.NewClient(d.cfg, d.log)
		key, err := jc.CreateIssue(depcheck.TicketSummary, description, "Task")
		if err != nil {
			return err
		}
		fmt.Printf("✅ Jira ticket created: %s/browse/%s\n", d.cfg.JiraURL, key)
		return nil
	},
}

func init() {
	depcheckCmd.Flags().BoolVar(&depcheckDryRun, "dry-run", false, "Print the report instead of creating a ticket")
}
