package depcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sprint-insights/llm"
)

// TicketSummary is the fixed summary line of the generated Jira ticket
const TicketSummary = "[AI][Tech] Automated dependency upgrade + code improvement report"

// UpgradeReport is the model's assessment of one package upgrade
type UpgradeReport struct {
	Package         string `json:"package"`
	Issues          string `json:"issues"`
	Improvements    string `json:"improvements"`
	BreakingChanges string `json:"breaking_changes"`
	Risk            string `json:"risk"`
	Recommendation  string `json:"recommendation"`
}

const upgradeSystem = "You analyze npm dependency upgrades for engineering teams. " +
	"Respond with strict JSON only, no markdown."

// AnalyzeUpgrades asks the model to assess each outdated package. A nil
// result without error means AI analysis is not configured.
func AnalyzeUpgrades(ctx context.Context, cli *llm.Client, outdated []Outdated) ([]UpgradeReport, error) {
	if cli == nil || !cli.Enabled() || len(outdated) == 0 {
		return nil, nil
	}

	payload, err := json.MarshalIndent(outdated, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`For EACH npm package below, return an object with keys:
package, issues, improvements, breaking_changes, risk (LOW | MEDIUM | HIGH), recommendation.

Packages:
%s

Return a JSON array, one object per package.`, payload)

	var reports []UpgradeReport
	if err := cli.CompleteJSON(ctx, upgradeSystem, prompt, &reports); err != nil {
		return nil, fmt.Errorf("analyzing upgrades: %w", err)
	}
	return reports, nil
}

// TicketDescription renders the findings as the plain-text ticket body
func TicketDescription(outdated []Outdated, reports []UpgradeReport, usage []PackageUsage) string {
	var sb strings.Builder

	sb.WriteString("Outdated packages:\n")
	for _, o := range outdated {
		fmt.Fprintf(&sb, "- %s: %s -> %s (%s)\n", o.Package, o.Current, o.Latest, o.Type)
	}

	if len(reports) > 0 {
		sb.WriteString("\nUpgrade analysis:\n")
		for _, r := range reports {
			fmt.Fprintf(&sb, "- %s [%s]: %s\n", r.Package, r.Risk, r.Recommendation)
			if r.BreakingChanges != "" {
				fmt.Fprintf(&sb, "  Breaking: %s\n", r.BreakingChanges)
			}
		}
	}

	if len(usage) > 0 {
		sb.WriteString("\nCode usage:\n")
		for _, u := range usage {
			files := make([]string, 0, len(u.Matches))
			for _, m := range u.Matches {
				files = append(files, m.File)
			}
			fmt.Fprintf(&sb, "- %s: %s\n", u.Package, strings.Join(files, ", "))
		}
	}

	return sb.String()
}
