package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"sprint-insights/jira"
	"sprint-insights/sprint"
)

// SprintReport bundles everything one report run produced
type SprintReport struct {
	RunID       string         `json:"run_id"`
	Sprint      jira.Sprint    `json:"sprint"`
	Metrics     sprint.Metrics `json:"metrics"`
	Risks       sprint.Risks   `json:"risks"`
	Health      sprint.Health  `json:"health"`
	Notes       string         `json:"notes,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// New assembles a report with a fresh run ID
func New(s jira.Sprint, m sprint.Metrics, r sprint.Risks, h sprint.Health, notes string) SprintReport {
	return SprintReport{
		RunID:       uuid.NewString(),
		Sprint:      s,
		Metrics:     m,
		Risks:       r,
		Health:      h,
		Notes:       notes,
		GeneratedAt: time.Now().UTC(),
	}
}

// MidSprintTitle is the Confluence page title for a mid-sprint review
func MidSprintTitle(sprintName string, day time.Time) string {
	return fmt.Sprintf("%s - Mid-Sprint Review (%s)", sprintName, day.Format("2006-01-02"))
}

// EndOfSprintTitle is the Confluence page title for an end-of-sprint report
func EndOfSprintTitle(sprintName string, day time.Time) string {
	return fmt.Sprintf("%s - Sprint Report (%s)", sprintName, day.Format("2006-01-02"))
}

func progressStatus(completionPct float64) (string, string) {
	switch {
	case completionPct >= 75:
		return "On Track", "#4caf50"
	case completionPct >= 50:
		return "Good Progress", "#8bc34a"
	case completionPct >= 25:
		return "Needs Attention", "#ffc107"
	default:
		return "Critical", "#ff9800"
	}
}

func sprintDates(s jira.Sprint, now time.Time) (string, string, string) {
	start, end, daysLeft := "?", "?", "?"
	if s.StartDate != nil {
		start = s.StartDate.Format("2006-01-02")
	}
	if s.EndDate != nil {
		end = s.EndDate.Format("2006-01-02")
		d := int(s.EndDate.Sub(now).Hours() / 24)
		if d < 0 {
			d = 0
		}
		daysLeft = fmt.Sprintf("%d", d)
	}
	return start, end, daysLeft
}

func issueRow(jiraBase string, issue jira.Issue) string {
	return fmt.Sprintf(
		"<tr><td style='padding:8px;'><a href='%s/browse/%s'>%s</a></td><td>%s</td><td>%s</td><td>%.1f</td><td>%s</td></tr>",
		jiraBase, issue.Key, issue.Key, html.EscapeString(issue.Summary),
		html.EscapeString(issue.Assignee), issue.StoryPoints, html.EscapeString(issue.Status))
}

const issueTableHeader = "<tr style='background-color:#f5f5f5;'><th style='padding:8px;'>Key</th><th>Summary</th><th>Assignee</th><th>Points</th><th>Status</th></tr>"

// RenderMidSprint renders the mid-sprint review as Confluence storage HTML
func RenderMidSprint(rep SprintReport, jiraBase, project string, boardID int, now time.Time) string {
	m := rep.Metrics
	start, end, daysLeft := sprintDates(rep.Sprint, now)
	statusText, color := progressStatus(m.CompletionPct)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<h1>Mid-Sprint Review: %s</h1>\n", html.EscapeString(rep.Sprint.Name))
	fmt.Fprintf(&sb, "<p><strong>Board</strong>: %d | <strong>Project</strong>: %s</p>\n", boardID, project)
	fmt.Fprintf(&sb, "<p><strong>Dates</strong>: %s to %s | <strong>Days left</strong>: %s</p>\n", start, end, daysLeft)

	fmt.Fprintf(&sb, "<h2>Sprint Progress</h2>\n<p><span style='color:%s;'><strong>%.0f%% complete - %s</strong></span></p>\n",
		color, m.CompletionPct, statusText)
	fmt.Fprintf(&sb, "<p><strong>%d of %d</strong> issues completed | <strong>%.1f of %.1f</strong> story points done</p>\n",
		m.DoneCount, m.TotalIssues, m.DonePoints, m.TotalPoints)

	fmt.Fprintf(&sb, "<h2>Sprint Health: %d/100 (%s)</h2>\n", rep.Health.Score, rep.Health.Status)
	sb.WriteString("<table border='1' style='border-collapse:collapse; width:100%; margin:10px 0;'>\n")
	sb.WriteString("<tr style='background-color:#f5f5f5;'><th style='padding:8px;'>Factor</th><th>Score</th><th>Max</th></tr>\n")
	b := rep.Health.Breakdown
	fmt.Fprintf(&sb, "<tr><td style='padding:8px;'>Completion</td><td>%.1f</td><td>30</td></tr>\n", b.Completion)
	fmt.Fprintf(&sb, "<tr><td style='padding:8px;'>Pace</td><td>%.1f</td><td>25</td></tr>\n", b.Pace)
	fmt.Fprintf(&sb, "<tr><td style='padding:8px;'>Blocker Management</td><td>%.1f</td><td>15</td></tr>\n", b.Blockers)
	fmt.Fprintf(&sb, "<tr><td style='padding:8px;'>Risk Mitigation</td><td>%.1f</td><td>15</td></tr>\n", b.Risks)
	fmt.Fprintf(&sb, "<tr><td style='padding:8px;'>Work Distribution</td><td>%.1f</td><td>15</td></tr>\n", b.Velocity)
	sb.WriteString("</table>\n")

	sb.WriteString("<h2>Sprint Progress Summary</h2>\n")
	sb.WriteString("<table border='1' style='border-collapse:collapse; width:100%; margin:10px 0;'>\n")
	sb.WriteString("<tr style='background-color:#f5f5f5;'><th style='padding:8px;'>Metric</th><th>Count</th><th>Story Points</th></tr>\n")
	fmt.Fprintf(&sb, "<tr><td style='padding:8px;'>Done</td><td>%d</td><td>%.1f</td></tr>\n", m.DoneCount, m.DonePoints)
	fmt.Fprintf(&sb, "<tr><td style='padding:8px;'>In Progress</td><td>%d</td><td>%.1f</td></tr>\n", m.InProgressCount, m.InProgressPoints)
	fmt.Fprintf(&sb, "<tr><td style='padding:8px;'>To Do</td><td>%d</td><td>%.1f</td></tr>\n", m.TodoCount, m.TodoPoints)
	fmt.Fprintf(&sb, "<tr><td style='padding:8px;'>Blocked</td><td>%d</td><td>-</td></tr>\n", len(m.Blocked))
	fmt.Fprintf(&sb, "<tr style='background-color:#fff3cd; font-weight:bold;'><td style='padding:8px;'>Total</td><td>%d</td><td>%.1f</td></tr>\n",
		m.TotalIssues, m.TotalPoints)
	sb.WriteString("</table>\n")

	blockedKeys := "None"
	if len(m.Blocked) > 0 {
		var keys []string
		for _, issue := range m.Blocked {
			keys = append(keys, issue.Key)
		}
		blockedKeys = strings.Join(keys, ", ")
	}
	sb.WriteString("<h2>Risks &amp; Blockers</h2>\n<ul>\n")
	fmt.Fprintf(&sb, "<li><strong>Blocked issues</strong>: %s</li>\n", blockedKeys)
	fmt.Fprintf(&sb, "<li><strong>At-risk items</strong>: %d tickets may spill over</li>\n", len(m.AtRisk))
	fmt.Fprintf(&sb, "<li><strong>Detected risks</strong>: %d across all categories</li>\n", rep.Risks.Total())
	sb.WriteString("</ul>\n")

	if len(m.AtRisk) > 0 {
		sb.WriteString("<h3>Tickets at Risk of Spillover</h3>\n")
		sb.WriteString("<table border='1' style='border-collapse:collapse; width:100%; margin:10px 0;'>\n")
		sb.WriteString(issueTableHeader + "\n")
		for i, issue := range m.AtRisk {
			if i >= 10 {
				break
			}
			sb.WriteString(issueRow(jiraBase, issue) + "\n")
		}
		sb.WriteString("</table>\n")
	} else {
		sb.WriteString("<h3>No Tickets at High Risk of Spillover</h3>\n")
	}

	writeRiskSection(&sb, "Stale In-Progress Items", rep.Risks.StaleInProgress)
	writeRiskSection(&sb, "Unassigned High-Priority Items", rep.Risks.UnassignedHighPriority)
	writeRiskSection(&sb, "Large Items Still in To Do", rep.Risks.LargeItemsInTodo)
	writeRiskSection(&sb, "Sprint Goal at Risk", rep.Risks.SprintGoalRisk)

	sb.WriteString("<h2>AI Insights</h2>\n")
	notes := rep.Notes
	if notes == "" {
		notes = "No AI insights available"
	}
	fmt.Fprintf(&sb, "<p>%s</p>\n", html.EscapeString(notes))

	return sb.String()
}

func writeRiskSection(sb *strings.Builder, title string, risks []sprint.Risk) {
	if len(risks) == 0 {
		return
	}
	fmt.Fprintf(sb, "<h3>%s</h3>\n<ul>\n", title)
	for _, r := range risks {
		fmt.Fprintf(sb, "<li><strong>%s</strong> (%s): %s [%s]</li>\n",
			r.Key, html.EscapeString(r.Assignee), html.EscapeString(r.Reason), r.Severity)
	}
	sb.WriteString("</ul>\n")
}

// RenderEndOfSprint renders the end-of-sprint report with spillover and
// the retrospective brackets.
func RenderEndOfSprint(rep SprintReport, jiraBase string, spillover []jira.Issue, now time.Time) string {
	m := rep.Metrics
	start, end, _ := sprintDates(rep.Sprint, now)
	label := sprint.CompletionLabel(m.CompletionPct)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<h1>Sprint Report: %s</h1>\n", html.EscapeString(rep.Sprint.Name))
	fmt.Fprintf(&sb, "<p><strong>Dates</strong>: %s to %s</p>\n", start, end)
	fmt.Fprintf(&sb, "<h2>Outcome: %s</h2>\n", label)
	fmt.Fprintf(&sb, "<p><strong>%.0f%%</strong> of story points completed (%d of %d issues, %.1f of %.1f points)</p>\n",
		m.CompletionPct, m.DoneCount, m.TotalIssues, m.DonePoints, m.TotalPoints)

	if len(spillover) > 0 {
		fmt.Fprintf(&sb, "<h2>Spillover (%d issues)</h2>\n", len(spillover))
		sb.WriteString("<table border='1' style='border-collapse:collapse; width:100%; margin:10px 0;'>\n")
		sb.WriteString(issueTableHeader + "\n")
		for _, issue := range spillover {
			sb.WriteString(issueRow(jiraBase, issue) + "\n")
		}
		sb.WriteString("</table>\n")
	} else {
		sb.WriteString("<h2>No Spillover</h2>\n<p>Every committed issue was completed.</p>\n")
	}

	fmt.Fprintf(&sb, "<h2>Final Health Score: %d/100 (%s)</h2>\n", rep.Health.Score, rep.Health.Status)

	sb.WriteString("<h2>Retrospective Notes</h2>\n")
	notes := rep.Notes
	if notes == "" {
		notes = "No AI retrospective available"
	}
	fmt.Fprintf(&sb, "<p>%s</p>\n", html.EscapeString(notes))

	return sb.String()
}

// Spillover returns the issues that did not reach done
func Spillover(issues []jira.Issue) []jira.Issue {
	var out []jira.Issue
	for _, issue := range issues {
		if issue.StatusCategory != jira.CategoryDone {
			out = append(out, issue)
		}
	}
	return out
}
