package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprint-insights/confluence"
	"sprint-insights/jira"
	"sprint-insights/pagesync"
)

var pagesyncPageID string

var pagesyncCmd = &cobra.Command{
	Use:   "pagesync",
	Short: "Create Jira stories from a Confluence requirements page",
	Long: "Reads the given Confluence page, extracts discrete requirements with the\n" +
		"configured model, files one Jira story per requirement, and appends a sync\n" +
		"section with links to the created tickets back onto the page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup("JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT",
			"CONFLUENCE_URL", "CONFLUENCE_USER", "CONFLUENCE_API_TOKEN", "OPENAI_API_KEY")
		if err != nil {
			return err
		}

		cc := confluence.NewClient(d.cfg, d.log)
		page, err := cc.GetPage(pagesyncPageID)
		if err != nil {
			return err
		}
		d.log.Info().Str("title", page.Title).Int("version", page.Version).
			Msg("📖 fetched requirements page")

		ex, err := pagesync.Extract(cmd.Context(), d.llm, page.Body)
		if err != nil {
			return err
		}
		if len(ex.Requirements) == 0 {
			fmt.Printf("✅ No actionable requirements found on page %s\n", pagesyncPageID)
			return nil
		}

		jc := jira.NewClient(d.cfg, d.log)
		var keys []string
		for _, req := range ex.Requirements {
			key, err := jc.CreateIssue(req.Title, req.Description, "Story")
			if err != nil {
				d.log.Error().Err(err).Str("title", req.Title).Msg("❌ could not create story")
				continue
			}
			keys = append(keys, key)
		}
		if len(keys) == 0 {
			return fmt.Errorf("none of the %d requirements produced a ticket", len(ex.Requirements))
		}

		body := page.Body + pagesync.SyncSection(d.cfg.JiraURL, ex.Summary, keys)
		if err := cc.UpdatePage(page.Page, body); err != nil {
			return err
		}

		fmt.Printf("✅ Created %d stories from page %q\n", len(keys), page.Title)
		for _, key := range keys {
			fmt.Printf("  🎫 %s/browse/%s\n", d.cfg.JiraURL, key)
		}
		return nil
	},
}

func init() {
	pagesyncCmd.Flags().StringVar(&pagesyncPageID, "page-id", "", "Confluence page ID to read requirements from")
	pagesyncCmd.MarkFlagRequired("page-id")
}
