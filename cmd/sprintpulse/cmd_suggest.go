package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sprint-insights/gitrepo"
	"sprint-insights/jira"
	"sprint-insights/suggest"
)

var (
	suggestReportDir string
	suggestMaxOpen   int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest open tickets related to your current work",
	Long: "Scans the repository's recent changes, extracts keywords from changed files\n" +
		"and the ticket on the current branch, scores every open project ticket for\n" +
		"relatedness, optionally reranks the shortlist with AI, and appends the\n" +
		"results to a daily Markdown report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup("JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT")
		if err != nil {
			return err
		}

		git := gitrepo.NewAnalyzer(d.cfg.RepoPath, d.log)
		jc := jira.NewClient(d.cfg, d.log)

		changedFiles := git.ChangedFiles()
		if len(changedFiles) == 0 {
			fmt.Println("No recent changes found, nothing to suggest.")
			return nil
		}

		currentTicket := "unknown"
		var reference *jira.Issue
		if branch, err := git.CurrentBranch(); err == nil {
			if key := gitrepo.ExtractTicketKey(branch); key != "" {
				currentTicket = key
				if issue, err := jc.GetIssue(key); err == nil {
					reference = &issue
				} else {
					d.log.Warn().Err(err).Str("key", key).Msg("could not fetch branch ticket")
				}
			}
		}

		kw := suggest.ExtractKeywords(changedFiles, reference)
		if kw.Empty() {
			fmt.Println("No usable keywords in recent changes, nothing to suggest.")
			return nil
		}

		open, err := jc.OpenProjectIssues()
		if err != nil {
			return fmt.Errorf("fetching open tickets: %w", err)
		}
		if suggestMaxOpen > 0 && len(open) > suggestMaxOpen {
			open = open[:suggestMaxOpen]
		}

		candidates := suggest.ScoreCandidates(kw, open)
		if len(candidates) == 0 {
			fmt.Println("No related tickets found.")
			return nil
		}

		commits := git.RecentCommits(5)
		var summary strings.Builder
		for _, c := range commits {
			fmt.Fprintf(&summary, "  - %s\n", c.Message)
		}

		suggestions := suggest.AIRank(cmd.Context(), d.llm, currentTicket, changedFiles,
			summary.String(), candidates, d.th.RerankMinScore)

		path, err := suggest.WriteDailyReport(suggestReportDir, d.cfg.JiraURL, currentTicket, suggestions)
		if err != nil {
			return fmt.Errorf("writing daily report: %w", err)
		}

		if len(suggestions) == 0 {
			fmt.Println("No suggestions above the relevance threshold.")
		}
		for i, s := range suggestions {
			fmt.Printf("%d. %s (%d%%) - %s\n   %s\n", i+1, s.Key, s.Score, s.Summary, s.Reason)
		}
		fmt.Printf("\n📝 Report: %s\n", path)
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestReportDir, "report-dir", "reports", "Directory for daily Markdown reports")
	suggestCmd.Flags().IntVar(&suggestMaxOpen, "max-open", 100, "Cap on open tickets to score (0 = no cap)")
}
