// Package pagesync turns a Confluence requirements page into Jira tickets.
// The model reads the page body, splits it into discrete requirements, and
// the caller files one ticket per requirement before stamping a sync section
// back onto the page.
package pagesync

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"sprint-insights/llm"
)

// Requirement is one work item extracted from a page
type Requirement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Extraction is the model's reading of a requirements page
type Extraction struct {
	Summary      string        `json:"summary"`
	Requirements []Requirement `json:"requirements"`
	DiagramCode  string        `json:"diagram_code"`
}

const extractSystem = "You extract engineering requirements from Confluence pages. " +
	"Respond with strict JSON only, no markdown."

const extractPrompt = `Analyze this Confluence page content. Treat every bullet point
under sections like "Detailed Description" and "Acceptance Criteria" as a unique
requirement.

Return JSON with exactly these keys:
{
  "summary": "one paragraph summary of the page",
  "requirements": [{"title": "short actionable name", "description": "full details"}],
  "diagram_code": "PlantUML source describing the flow, or empty string"
}

Page content:
%s`

// Extract asks the model to pull requirements out of a page body
func Extract(ctx context.Context, cli *llm.Client, pageHTML string) (Extraction, error) {
	if cli == nil || !cli.Enabled() {
		return Extraction{}, errors.New("requirement extraction needs OPENAI_API_KEY")
	}

	var ex Extraction
	if err := cli.CompleteJSON(ctx, extractSystem, fmt.Sprintf(extractPrompt, pageHTML), &ex); err != nil {
		return Extraction{}, fmt.Errorf("extracting requirements: %w", err)
	}
	return ex, nil
}

// SyncSection renders the storage-format fragment appended to the page once
// tickets exist, linking each created key back to Jira.
func SyncSection(jiraBase, summary string, keys []string) string {
	var sb strings.Builder
	sb.WriteString("<hr/><h2>AI Jira Sync</h2>")
	sb.WriteString("<p>" + html.EscapeString(summary) + "</p>")
	if len(keys) > 0 {
		sb.WriteString("<h3>Created Tickets</h3><ul>")
		for _, key := range keys {
			fmt.Fprintf(&sb, `<li><a href="%s/browse/%s">%s</a></li>`, jiraBase, key, key)
		}
		sb.WriteString("</ul>")
	}
	return sb.String()
}
