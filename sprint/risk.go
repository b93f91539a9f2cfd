package sprint

import (
	"fmt"
	"time"

	"sprint-insights/config"
	"sprint-insights/jira"
)

// Risk severities
const (
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Risk is one flagged issue with the reason it was flagged
type Risk struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Assignee string `json:"assignee"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

// Risks groups detected risks into the five categories the health score
// and the report tables consume.
type Risks struct {
	StaleInProgress        []Risk `json:"stale_in_progress,omitempty"`
	UnassignedHighPriority []Risk `json:"unassigned_high_priority,omitempty"`
	LargeItemsInTodo       []Risk `json:"large_items_in_todo,omitempty"`
	SprintGoalRisk         []Risk `json:"sprint_goal_risk,omitempty"`
	Blocked                []Risk `json:"blocked,omitempty"`
}

// Total returns the number of detected risks across all categories
func (r Risks) Total() int {
	return len(r.StaleInProgress) + len(r.UnassignedHighPriority) +
		len(r.LargeItemsInTodo) + len(r.SprintGoalRisk) + len(r.Blocked)
}

// mitigationCount is the count the health score's risk factor is based on:
// stale in-progress work plus critical sprint-goal risks.
func (r Risks) mitigationCount() int {
	n := len(r.StaleInProgress)
	for _, risk := range r.SprintGoalRisk {
		if risk.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// DetectRisks scans sprint issues against the configured thresholds.
// Issue age since creation stands in for time-in-status; the changelog
// walk that would make this exact costs one request per issue.
func DetectRisks(issues []jira.Issue, sprintEnd *time.Time, th config.Thresholds, now time.Time) Risks {
	var risks Risks

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

		bucket := classify(issue)
		highPriority := issue.Priority == "High" || issue.Priority == "Highest"

		if bucket == "inprogress" && !issue.Created.IsZero() {
			ageDays := int(now.Sub(issue.Created).Hours() / 24)
			if ageDays >= th.StaleAgeDays {
				severity := SeverityMedium
				if ageDays >= th.StaleHighAgeDays {
					severity = SeverityHigh
				}
				risks.StaleInProgress = append(risks.StaleInProgress, Risk{
					Key:      issue.Key,
					Summary:  issue.Summary,
					Assignee: issue.Assignee,
					Reason:   fmt.Sprintf("In progress for %d days", ageDays),
					Severity: severity,
				})
			}
		}

		if issue.Assignee == "Unassigned" && highPriority {
			risks.UnassignedHighPriority = append(risks.UnassignedHighPriority, Risk{
				Key:      issue.Key,
				Summary:  issue.Summary,
				Assignee: issue.Assignee,
				Reason:   fmt.Sprintf("%s priority with no assignee", issue.Priority),
				Severity: SeverityMedium,
			})
		}

		if bucket == "todo" && issue.StoryPoints >= th.LargeItemPoints &&
			daysLeft >= 0 && daysLeft <= th.LargeItemDaysLeft {
			risks.LargeItemsInTodo = append(risks.LargeItemsInTodo, Risk{
				Key:      issue.Key,
				Summary:  issue.Summary,
				Assignee: issue.Assignee,
				Reason:   fmt.Sprintf("%.0f points still in todo with %d days left", issue.StoryPoints, daysLeft),
				Severity: SeverityCritical,
			})
		}

		if bucket == "inprogress" && issue.StoryPoints >= th.GoalRiskPoints &&
			daysLeft >= 0 && daysLeft <= th.GoalRiskDaysLeft {
			risks.SprintGoalRisk = append(risks.SprintGoalRisk, Risk{
				Key:      issue.Key,
				Summary:  issue.Summary,
				Assignee: issue.Assignee,
				Reason:   fmt.Sprintf("%.0f points in progress with %d days left", issue.StoryPoints, daysLeft),
				Severity: SeverityHigh,
			})
		}

		if IsBlocked(issue) {
			risks.Blocked = append(risks.Blocked, Risk{
				Key:      issue.Key,
				Summary:  issue.Summary,
				Assignee: issue.Assignee,
				Reason:   "Issue is blocked",
				Severity: SeverityCritical,
			})
		}
	}

	return risks
}
