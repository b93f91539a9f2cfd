package sprint

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sprint-insights/config"
	"sprint-insights/jira"
)

func issue(key, category string, points float64) jira.Issue {
	return jira.Issue{
		Key:            key,
		Summary:        "summary for " + key,
		Status:         "Some Status",
		StatusCategory: category,
		Assignee:       "dev",
		Priority:       "Medium",
		StoryPoints:    points,
	}
}

func TestAggregateBuckets(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 7)
	th := config.DefaultThresholds()

	issues := []jira.Issue{
		issue("AS-1", jira.CategoryDone, 5),
		issue("AS-2", jira.CategoryDone, 3),
		issue("AS-3", jira.CategoryInProgress, 8),
		issue("AS-4", jira.CategoryNew, 2),
	}

	m := Aggregate(issues, &end, th, now)

	if m.TotalIssues != 4 || m.DoneCount != 2 || m.InProgressCount != 1 || m.TodoCount != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 4/2/1/1",
			m.TotalIssues, m.DoneCount, m.InProgressCount, m.TodoCount)
	}
	if m.TotalPoints != 18 || m.DonePoints != 8 {
		t.Errorf("points = %.1f total, %.1f done, want 18/8", m.TotalPoints, m.DonePoints)
	}
	want := 8.0 / 18.0 * 100
	if diff := cmp.Diff(want, m.CompletionPct); diff != "" {
		t.Errorf("completion pct mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateCompletionFallsBackToCounts(t *testing.T) {
	now := time.Now()
	th := config.DefaultThresholds()

	issues := []jira.Issue{
		issue("AS-1", jira.CategoryDone, 0),
		issue("AS-2", jira.CategoryNew, 0),
		issue("AS-3", jira.CategoryNew, 0),
		issue("AS-4", jira.CategoryNew, 0),
	}

	m := Aggregate(issues, nil, th, now)
	if m.CompletionPct != 25 {
		t.Errorf("CompletionPct = %.1f, want 25 (count ratio when no points)", m.CompletionPct)
	}
}

func TestAggregateStatusNameFallback(t *testing.T) {
	now := time.Now()
	th := config.DefaultThresholds()

	issues := []jira.Issue{
		{Key: "AS-1", Status: "Resolved", StoryPoints: 3},
		{Key: "AS-2", Status: "In Review", StoryPoints: 2},
		{Key: "AS-3", Status: "Backlog", StoryPoints: 1},
	}

	m := Aggregate(issues, nil, th, now)
	if m.DoneCount != 1 || m.InProgressCount != 1 || m.TodoCount != 1 {
		t.Errorf("fallback buckets = %d/%d/%d, want 1/1/1",
			m.DoneCount, m.InProgressCount, m.TodoCount)
	}
}

func TestIsBlockedTriggersOnce(t *testing.T) {
	// All three trigger conditions on one issue still count it once
	tripleBlocked := jira.Issue{
		Key:            "AS-9",
		Status:         "Blocked",
		StatusCategory: jira.CategoryInProgress,
		Flagged:        true,
		Labels:         []string{"BLOCKED"},
	}

	cases := []struct {
		name  string
		issue jira.Issue
		want  bool
	}{
		{"flagged", jira.Issue{Key: "A", StatusCategory: jira.CategoryNew, Flagged: true}, true},
		{"label", jira.Issue{Key: "B", StatusCategory: jira.CategoryNew, Labels: []string{"Blocked"}}, true},
		{"status name", jira.Issue{Key: "C", Status: "Blocked / Waiting", StatusCategory: jira.CategoryNew}, true},
		{"all three", tripleBlocked, true},
		{"clean", jira.Issue{Key: "D", Status: "To Do", StatusCategory: jira.CategoryNew}, false},
	}
	for _, tc := range cases {
		if got := IsBlocked(tc.issue); got != tc.want {
			t.Errorf("%s: IsBlocked = %v, want %v", tc.name, got, tc.want)
		}
	}

	m := Aggregate([]jira.Issue{tripleBlocked}, nil, config.DefaultThresholds(), time.Now())
	if len(m.Blocked) != 1 {
		t.Errorf("blocked list has %d entries, want 1", len(m.Blocked))
	}
}

func TestAggregateSkipsMalformedEntries(t *testing.T) {
	now := time.Now()
	th := config.DefaultThresholds()

	good := []jira.Issue{
		issue("AS-1", jira.CategoryDone, 5),
		issue("AS-2", jira.CategoryNew, 3),
	}
	withJunk := []jira.Issue{
		good[0],
		{}, // empty entry from a bad payload
		good[1],
		{StoryPoints: 99}, // points but nothing identifying
	}

	want := Aggregate(good, nil, th, now)
	got := Aggregate(withJunk, nil, th, now)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("malformed entries changed the result (-want +got):\n%s", diff)
	}
}

func TestAggregateEmpty(t *testing.T) {
	m := Aggregate(nil, nil, config.DefaultThresholds(), time.Now())
	if m.TotalIssues != 0 || m.CompletionPct != 0 {
		t.Errorf("empty aggregate = %+v, want zero value", m)
	}
}

func TestAggregateAtRisk(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 2) // inside the at-risk window
	th := config.DefaultThresholds()

	big := issue("AS-1", jira.CategoryInProgress, th.AtRiskPoints)
	urgent := issue("AS-2", jira.CategoryInProgress, 1)
	urgent.Priority = "Highest"
	small := issue("AS-3", jira.CategoryInProgress, 1)
	done := issue("AS-4", jira.CategoryDone, 13)
	urgentTodo := issue("AS-5", jira.CategoryNew, 1)
	urgentTodo.Priority = "Highest"
	bigTodo := issue("AS-6", jira.CategoryNew, th.AtRiskPoints)

	m := Aggregate([]jira.Issue{big, urgent, small, done, urgentTodo, bigTodo}, &end, th, now)

	keys := make([]string, 0, len(m.AtRisk))
	for _, i := range m.AtRisk {
		keys = append(keys, i.Key)
	}
	// Todo items never land in at-risk, no matter their points or priority
	if diff := cmp.Diff([]string{"AS-1", "AS-2"}, keys); diff != "" {
		t.Errorf("at-risk keys mismatch (-want +got):\n%s", diff)
	}
}
