package sprint

import (
	"strings"
	"time"

	"sprint-insights/config"
	"sprint-insights/jira"
)

// Metrics aggregates one sprint's issues into the buckets the reports use.
// Everything is derived fresh per run and never persisted.
type Metrics struct {
	TotalIssues      int     `json:"total_issues"`
	DoneCount        int     `json:"done_count"`
	InProgressCount  int     `json:"in_progress_count"`
	TodoCount        int     `json:"todo_count"`
	TotalPoints      float64 `json:"total_points"`
	DonePoints       float64 `json:"done_points"`
	InProgressPoints float64 `json:"in_progress_points"`
	TodoPoints       float64 `json:"todo_points"`
	CompletionPct    float64 `json:"completion_pct"`

	Blocked []jira.Issue `json:"blocked,omitempty"`
	AtRisk  []jira.Issue `json:"at_risk,omitempty"`
}

// IsBlocked reports whether an issue is blocked: flagged, carrying a
// "blocked" label, or sitting in a status whose name contains "blocked".
// The three conditions never double-count.
func IsBlocked(issue jira.Issue) bool {
	if issue.Flagged {
		return true
	}
	for _, label := range issue.Labels {
		if strings.EqualFold(label, "blocked") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(issue.Status), "blocked")
}

// classify maps an issue onto done/in-progress/todo. The status category is
// authoritative; webhook payloads sometimes omit it, so the status name is
// the fallback.
func classify(issue jira.Issue) string {
	switch issue.StatusCategory {
	case jira.CategoryDone:
		return "done"
	case jira.CategoryInProgress:
		return "inprogress"
	case jira.CategoryNew:
		return "todo"
	}

	status := strings.ToLower(issue.Status)
	switch {
	case strings.Contains(status, "done"), strings.Contains(status, "completed"),
		strings.Contains(status, "resolved"), strings.Contains(status, "closed"):
		return "done"
	case strings.Contains(status, "progress"), strings.Contains(status, "review"),
		strings.Contains(status, "development"):
		return "inprogress"
	default:
		return "todo"
	}
}

// malformed reports whether an entry carries nothing usable. Such entries
// are skipped so a bad webhook payload cannot abort a whole report.
func malformed(issue jira.Issue) bool {
	return issue.Key == "" && issue.Status == "" && issue.StatusCategory == ""
}

// Aggregate computes Metrics from a sprint's issues in a single pass.
// Malformed entries are skipped; an empty list yields a zeroed Metrics.
func Aggregate(issues []jira.Issue, sprintEnd *time.Time, th config.Thresholds, now time.Time) Metrics {
	var m Metrics

	daysLeft := -1
	if sprintEnd != nil {
		daysLeft = int(sprintEnd.Sub(now).Hours() / 24)
		if daysLeft < 0 {
			daysLeft = 0
		}
	}

	for _, issue := range issues {
		if malformed(issue) {
			continue
		}

		m.TotalIssues++
		m.TotalPoints += issue.StoryPoints

		bucket := classify(issue)
		switch bucket {
		case "done":
			m.DoneCount++
			m.DonePoints += issue.StoryPoints
		case "inprogress":
			m.InProgressCount++
			m.InProgressPoints += issue.StoryPoints
		default:
			m.TodoCount++
			m.TodoPoints += issue.StoryPoints
		}

		if IsBlocked(issue) {
			m.Blocked = append(m.Blocked, issue)
		}

		// Only in-progress work can be at risk; todo items surface through
		// the risk detector's large-todo and high-priority categories instead.
		if bucket == "inprogress" && daysLeft >= 0 && daysLeft <= th.AtRiskDaysLeft {
			highPriority := issue.Priority == "High" || issue.Priority == "Highest"
			if issue.StoryPoints >= th.AtRiskPoints || highPriority {
				m.AtRisk = append(m.AtRisk, issue)
			}
		}
	}

	if m.TotalPoints > 0 {
		m.CompletionPct = m.DonePoints / m.TotalPoints * 100
	} else if m.TotalIssues > 0 {
		m.CompletionPct = float64(m.DoneCount) / float64(m.TotalIssues) * 100
	}

	return m
}
