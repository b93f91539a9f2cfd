package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprint-insights/gitrepo"
	"sprint-insights/jira"
)

var ticketCmd = &cobra.Command{
	Use:   "ticket [KEY STATUS]",
	Short: "Transition a Jira ticket, inferring it from the current branch",
	Long: "With no arguments, extracts the ticket key from the current git branch and\n" +
		"infers the target status: main/master/develop means Done, a branch already\n" +
		"pushed to the remote means Review, anything else means In Progress.\n\n" +
		"With two arguments, transitions the given ticket to the given status:\n" +
		"  sprintpulse ticket PROJ-123 \"In Progress\"",
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return fmt.Errorf("manual mode needs both a ticket key and a status")
		}

		d, err := setup("JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN")
		if err != nil {
			return err
		}
		jc := jira.NewClient(d.cfg, d.log)
		who, err := jc.Myself()
		if err != nil {
			return fmt.Errorf("verifying Jira credentials: %w", err)
		}
		d.log.Info().Str("user", who).Msg("🔐 authenticated with Jira")

		var key, status string
		if len(args) == 2 {
			key, status = args[0], args[1]
		} else {
			key, status, err = inferFromBranch(d)
			if err != nil {
				return err
			}
		}

		issue, err := jc.GetIssue(key)
		if err != nil {
			return err
		}
		if issue.Status == status {
			fmt.Printf("✅ %s is already in %q\n", key, status)
			return nil
		}

		if err := jc.TransitionIssue(key, status); err != nil {
			return err
		}
		fmt.Printf("✅ %s: %q -> %q\n", key, issue.Status, status)
		return nil
	},
}

// inferFromBranch maps the current branch to a ticket key and target status
func inferFromBranch(d deps) (string, string, error) {
	git := gitrepo.NewAnalyzer(d.cfg.RepoPath, d.log)

	branch, err := git.CurrentBranch()
	if err != nil {
		return "", "", fmt.Errorf("reading current branch: %w", err)
	}

	key := gitrepo.ExtractTicketKey(branch)
	if key == "" {
		return "", "", fmt.Errorf("no ticket key found in branch %q", branch)
	}

	status := "In Progress"
	switch branch {
	case "main", "master", "develop":
		status = "Done"
	default:
		if git.BranchOnRemote(branch) {
			status = "Review"
		}
	}

	d.log.Info().Str("branch", branch).Str("ticket", key).Str("status", status).
		Msg("🌿 inferred target status from branch")
	return key, status, nil
}
