package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprint-insights/jira"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Jira webhook that feeds the support API",
}

var webhookRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an issue-created webhook for the configured project",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup("JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT")
		if err != nil {
			return err
		}
		if d.cfg.WebhookCallbackURL == "" {
			return fmt.Errorf("missing required configuration: WEBHOOK_CALLBACK_URL")
		}

		jc := jira.NewClient(d.cfg, d.log)
		id, err := jc.RegisterWebhook(d.cfg.WebhookCallbackURL, d.cfg.JiraProject)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Webhook registered (id=%s) -> %s\n", id, d.cfg.WebhookCallbackURL)
		return nil
	},
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered webhooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup("JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN")
		if err != nil {
			return err
		}

		jc := jira.NewClient(d.cfg, d.log)
		webhooks, err := jc.ListWebhooks()
		if err != nil {
			return err
		}
		if len(webhooks) == 0 {
			fmt.Println("No webhooks registered")
			return nil
		}
		for _, w := range webhooks {
			state := "disabled"
			if w.Enabled {
				state = "enabled"
			}
			fmt.Printf("[%s] %s (%s)\n    %s\n    events: %v\n", w.ID, w.Name, state, w.URL, w.Events)
		}
		return nil
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a webhook by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup("JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN")
		if err != nil {
			return err
		}

		jc := jira.NewClient(d.cfg, d.log)
		if err := jc.DeleteWebhook(args[0]); err != nil {
			return err
		}
		fmt.Printf("🗑️ Webhook %s deleted\n", args[0])
		return nil
	},
}

func init() {
	webhookCmd.AddCommand(webhookRegisterCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
}
