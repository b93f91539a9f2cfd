package report

import (
	"strings"
	"testing"
	"time"

	"sprint-insights/jira"
	"sprint-insights/sprint"
)

func sampleReport() SprintReport {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)

	return New(
		jira.Sprint{ID: 7, Name: "Sprint 42", State: "active", StartDate: &start, EndDate: &end},
		sprint.Metrics{
			TotalIssues: 10, DoneCount: 6, InProgressCount: 2, TodoCount: 2,
			TotalPoints: 34, DonePoints: 21, InProgressPoints: 8, TodoPoints: 5,
			CompletionPct: 61.8,
			Blocked:       []jira.Issue{{Key: "AS-9", Summary: "stuck", Assignee: "dev", Status: "Blocked"}},
		},
		sprint.Risks{
			StaleInProgress: []sprint.Risk{{Key: "AS-7", Assignee: "dev", Reason: "In progress for 4 days", Severity: "medium"}},
		},
		sprint.Health{Score: 69, Status: "Good", Breakdown: sprint.Breakdown{
			Completion: 18.5, Pace: 10, Blockers: 15, Risks: 10, Velocity: 15,
		}},
		"- watch AS-7",
	)
}

func TestRenderMidSprint(t *testing.T) {
	rep := sampleReport()
	now := time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)

	html := RenderMidSprint(rep, "https://example.atlassian.net", "AS", 3, now)

	for _, want := range []string{
		"<h1>Mid-Sprint Review: Sprint 42</h1>",
		"62% complete - Good Progress",
		"<strong>6 of 10</strong> issues completed",
		"Sprint Health: 69/100 (Good)",
		"AS-9",
		"Stale In-Progress Items",
		"In progress for 4 days",
		"- watch AS-7",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("mid-sprint page missing %q", want)
		}
	}
}

func TestRenderMidSprintBanner(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{80, "On Track"},
		{60, "Good Progress"},
		{30, "Needs Attention"},
		{10, "Critical"},
	}
	for _, tc := range cases {
		rep := sampleReport()
		rep.Metrics.CompletionPct = tc.pct
		html := RenderMidSprint(rep, "https://example.atlassian.net", "AS", 3, time.Now())
		if !strings.Contains(html, tc.want) {
			t.Errorf("%.0f%% page missing banner %q", tc.pct, tc.want)
		}
	}
}

func TestRenderEndOfSprint(t *testing.T) {
	rep := sampleReport()
	now := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	spill := []jira.Issue{
		{Key: "AS-3", Summary: "carried over", Assignee: "dev", Status: "In Progress", StoryPoints: 8},
	}

	html := RenderEndOfSprint(rep, "https://example.atlassian.net", spill, now)

	for _, want := range []string{
		"<h1>Sprint Report: Sprint 42</h1>",
		"Outcome: Fair", // 61.8% falls in the 50-75 bracket
		"Spillover (1 issues)",
		"AS-3",
		"Final Health Score: 69/100 (Good)",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("end-of-sprint page missing %q", want)
		}
	}

	html = RenderEndOfSprint(rep, "https://example.atlassian.net", nil, now)
	if !strings.Contains(html, "No Spillover") {
		t.Error("empty spillover not rendered as No Spillover")
	}
}

func TestSpillover(t *testing.T) {
	issues := []jira.Issue{
		{Key: "AS-1", StatusCategory: jira.CategoryDone},
		{Key: "AS-2", StatusCategory: jira.CategoryInProgress},
		{Key: "AS-3", StatusCategory: jira.CategoryNew},
	}
	spill := Spillover(issues)
	if len(spill) != 2 || spill[0].Key != "AS-2" || spill[1].Key != "AS-3" {
		t.Errorf("Spillover = %+v, want AS-2 and AS-3", spill)
	}
}

func TestReportTitles(t *testing.T) {
	day := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	if got := MidSprintTitle("Sprint 42", day); got != "Sprint 42 - Mid-Sprint Review (2025-06-13)" {
		t.Errorf("MidSprintTitle = %q", got)
	}
	if got := EndOfSprintTitle("Sprint 42", day); got != "Sprint 42 - Sprint Report (2025-06-13)" {
		t.Errorf("EndOfSprintTitle = %q", got)
	}
}

func TestNewAssignsRunID(t *testing.T) {
	a := sampleReport()
	b := sampleReport()
	if a.RunID == "" || a.RunID == b.RunID {
		t.Errorf("run IDs not unique: %q vs %q", a.RunID, b.RunID)
	}
}
