package sprint

import (
	"testing"
	"time"

	"sprint-insights/config"
	"sprint-insights/jira"
)

func TestDetectStaleInProgress(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	th := config.DefaultThresholds()

	fresh := issue("AS-1", jira.CategoryInProgress, 3)
	fresh.Created = now.AddDate(0, 0, -1)
	stale := issue("AS-2", jira.CategoryInProgress, 3)
	stale.Created = now.AddDate(0, 0, -th.StaleAgeDays)
	veryStale := issue("AS-3", jira.CategoryInProgress, 3)
	veryStale.Created = now.AddDate(0, 0, -th.StaleHighAgeDays-1)
	staleButDone := issue("AS-4", jira.CategoryDone, 3)
	staleButDone.Created = now.AddDate(0, 0, -30)

	r := DetectRisks([]jira.Issue{fresh, stale, veryStale, staleButDone}, nil, th, now)

	if len(r.StaleInProgress) != 2 {
		t.Fatalf("StaleInProgress has %d entries, want 2", len(r.StaleInProgress))
	}
	if r.StaleInProgress[0].Severity != SeverityMedium {
		t.Errorf("AS-2 severity = %s, want medium", r.StaleInProgress[0].Severity)
	}
	if r.StaleInProgress[1].Severity != SeverityHigh {
		t.Errorf("AS-3 severity = %s, want high", r.StaleInProgress[1].Severity)
	}
}

func TestDetectUnassignedHighPriority(t *testing.T) {
	now := time.Now()
	th := config.DefaultThresholds()

	orphan := issue("AS-1", jira.CategoryNew, 1)
	orphan.Assignee = "Unassigned"
	orphan.Priority = "Highest"
	assigned := issue("AS-2", jira.CategoryNew, 1)
	assigned.Priority = "High"
	lowOrphan := issue("AS-3", jira.CategoryNew, 1)
	lowOrphan.Assignee = "Unassigned"
	lowOrphan.Priority = "Low"

	r := DetectRisks([]jira.Issue{orphan, assigned, lowOrphan}, nil, th, now)

	if len(r.UnassignedHighPriority) != 1 || r.UnassignedHighPriority[0].Key != "AS-1" {
		t.Errorf("UnassignedHighPriority = %+v, want only AS-1", r.UnassignedHighPriority)
	}
}

func TestDetectEndOfSprintRisks(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	th := config.DefaultThresholds()
	end := now.AddDate(0, 0, 2)

	bigTodo := issue("AS-1", jira.CategoryNew, th.LargeItemPoints)
	bigInProgress := issue("AS-2", jira.CategoryInProgress, th.GoalRiskPoints)
	smallTodo := issue("AS-3", jira.CategoryNew, 1)

	r := DetectRisks([]jira.Issue{bigTodo, bigInProgress, smallTodo}, &end, th, now)

	if len(r.LargeItemsInTodo) != 1 || r.LargeItemsInTodo[0].Key != "AS-1" {
		t.Errorf("LargeItemsInTodo = %+v, want only AS-1", r.LargeItemsInTodo)
	}
	if r.LargeItemsInTodo[0].Severity != SeverityCritical {
		t.Errorf("large todo severity = %s, want critical", r.LargeItemsInTodo[0].Severity)
	}
	if len(r.SprintGoalRisk) != 1 || r.SprintGoalRisk[0].Key != "AS-2" {
		t.Errorf("SprintGoalRisk = %+v, want only AS-2", r.SprintGoalRisk)
	}

	// Without an end date the time-window categories stay empty
	r = DetectRisks([]jira.Issue{bigTodo, bigInProgress}, nil, th, now)
	if len(r.LargeItemsInTodo) != 0 || len(r.SprintGoalRisk) != 0 {
		t.Errorf("time-window risks detected without an end date: %+v", r)
	}
}

func TestMitigationCount(t *testing.T) {
	r := Risks{
		StaleInProgress: []Risk{{Key: "A"}, {Key: "B"}},
		SprintGoalRisk: []Risk{
			{Key: "C", Severity: SeverityCritical},
			{Key: "D", Severity: SeverityHigh},
		},
		Blocked: []Risk{{Key: "E", Severity: SeverityCritical}},
	}
	if got := r.mitigationCount(); got != 3 {
		t.Errorf("mitigationCount = %d, want 3 (two stale + one critical goal risk)", got)
	}
	if got := r.Total(); got != 5 {
		t.Errorf("Total = %d, want 5", got)
	}
}
