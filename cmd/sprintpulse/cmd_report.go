package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sprint-insights/confluence"
	"sprint-insights/jira"
	"sprint-insights/report"
	"sprint-insights/sprint"
)

var (
	reportForce bool
	reportJSON  string
	reportCSV   string
	reportDry   bool
)

var reportCmd = &cobra.Command{
	Use:   "report <mid|end>",
	Short: "Generate a sprint report and publish it to Confluence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reportType := args[0]
		if reportType != "mid" && reportType != "end" {
			return fmt.Errorf("report type must be mid or end, got %q", reportType)
		}

		d, err := setup("JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_BOARD_ID", "SPACE_KEY")
		if err != nil {
			return err
		}

		rep, pageURL, err := runSprintReport(cmd.Context(), d, reportType, reportForce, !reportDry)
		if err != nil {
			return err
		}

		report.PrintSummary(rep)
		if pageURL != "" {
			fmt.Printf("\n📄 Published: %s\n", pageURL)
		}

		if reportJSON != "" {
			if err := report.ExportToJSON(rep, reportJSON); err != nil {
				return fmt.Errorf("exporting JSON: %w", err)
			}
			d.log.Info().Str("file", reportJSON).Msg("💾 JSON report saved")
		}
		if reportCSV != "" {
			if err := report.ExportToCSV(rep, reportCSV); err != nil {
				return fmt.Errorf("exporting CSV: %w", err)
			}
			d.log.Info().Str("file", reportCSV).Msg("💾 CSV report saved")
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportForce, "force", false, "Generate even when the date check fails")
	reportCmd.Flags().StringVar(&reportJSON, "json", "", "Also export the report to a JSON file")
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "Also export the report to a CSV file")
	reportCmd.Flags().BoolVar(&reportDry, "dry-run", false, "Skip publishing to Confluence")
}

// runSprintReport is the pipeline behind the report command and the
// scheduler: fetch, aggregate, score, render, publish.
func runSprintReport(ctx context.Context, d deps, reportType string, force, publish bool) (report.SprintReport, string, error) {
	now := time.Now()
	jc := jira.NewClient(d.cfg, d.log)

	active, err := jc.ActiveSprint(d.cfg.JiraBoardID)
	if err != nil {
		return report.SprintReport{}, "", fmt.Errorf("fetching active sprint: %w", err)
	}
	if active == nil {
		return report.SprintReport{}, "", fmt.Errorf("no active sprint on board %d", d.cfg.JiraBoardID)
	}

	if !force {
		if reportType == "mid" {
			mid := active.Midpoint()
			if mid == nil || !sameDay(*mid, now) {
				return report.SprintReport{}, "", fmt.Errorf(
					"today is not the sprint midpoint, pass --force to generate anyway")
			}
		} else if active.EndDate != nil && now.Before(*active.EndDate) {
			return report.SprintReport{}, "", fmt.Errorf(
				"sprint has not ended yet, pass --force to generate anyway")
		}
	}

	issues, err := jc.SprintIssues(d.cfg.JiraBoardID, active.ID)
	if err != nil {
		return report.SprintReport{}, "", fmt.Errorf("fetching sprint issues: %w", err)
	}

	m := sprint.Aggregate(issues, active.EndDate, d.th, now)
	risks := sprint.DetectRisks(issues, active.EndDate, d.th, now)
	health := sprint.CalculateHealth(m, risks, active.StartDate, active.EndDate, now)

	var rep report.SprintReport
	var title, content string
	if reportType == "mid" {
		notes := report.AINotes(ctx, d.llm, active.Name, m)
		rep = report.New(*active, m, risks, health, notes)
		title = report.MidSprintTitle(active.Name, now)
		content = report.RenderMidSprint(rep, d.cfg.JiraURL, d.cfg.JiraProject, d.cfg.JiraBoardID, now)
	} else {
		notes := report.AIRetrospective(ctx, d.llm, active.Name, m, health)
		rep = report.New(*active, m, risks, health, notes)
		title = report.EndOfSprintTitle(active.Name, now)
		content = report.RenderEndOfSprint(rep, d.cfg.JiraURL, report.Spillover(issues), now)
	}

	if !publish {
		return rep, "", nil
	}

	cc := confluence.NewClient(d.cfg, d.log)
	if _, err := cc.VerifySpace(); err != nil {
		return rep, "", err
	}
	_, pageURL, err := cc.PublishPage(title, content, "")
	if err != nil {
		return rep, "", fmt.Errorf("publishing report: %w", err)
	}
	return rep, pageURL, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
