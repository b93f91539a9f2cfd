package suggest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sprint-insights/jira"
)

func TestExtractKeywords(t *testing.T) {
	ref := &jira.Issue{
		Summary:     "Fix login timeout",
		Description: "Sessions expire early",
	}
	kw := ExtractKeywords([]string{"src/auth/session_store.go", "cmd/api.go"}, ref)

	want := []string{"src", "auth", "session", "store", "cmd", "api", "login", "timeout", "sessions", "expire", "early"}
	if diff := cmp.Diff(want, kw.ordered); diff != "" {
		t.Errorf("keyword order mismatch (-want +got):\n%s", diff)
	}

	if !kw.fromTicket["login"] || kw.fromTicket["session"] {
		t.Errorf("ticket-origin flags wrong: %v", kw.fromTicket)
	}
}

func TestExtractKeywordsLengthFilters(t *testing.T) {
	// File tokens must be >2 chars, ticket tokens >3
	kw := ExtractKeywords([]string{"a/db/ui.go"}, &jira.Issue{Summary: "fix the bug"})
	for _, short := range []string{"a", "db", "ui", "go", "fix", "the", "bug"} {
		if kw.has(short) {
			t.Errorf("short token %q survived the length filter", short)
		}
	}
}

func TestScoreCandidatesWeights(t *testing.T) {
	kw := ExtractKeywords([]string{"internal/payment/checkout.go"},
		&jira.Issue{Summary: "Checkout declines cards"})

	tickets := []jira.Issue{
		// description hit on ticket keyword (+5) and summary hit (+2)
		{Key: "AS-1", Summary: "checkout hangs", Description: "the checkout flow stalls"},
		// summary hit on file keyword only (+1)
		{Key: "AS-2", Summary: "payment report totals"},
		// label match (+4)
		{Key: "AS-3", Summary: "unrelated", Labels: []string{"payment"}},
		// nothing
		{Key: "AS-4", Summary: "dark mode"},
	}

	got := ScoreCandidates(kw, tickets)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	if got[0].Issue.Key != "AS-1" || got[0].MatchScore != 7 {
		t.Errorf("top = %s (%d), want AS-1 (7)", got[0].Issue.Key, got[0].MatchScore)
	}
	if got[1].Issue.Key != "AS-3" || got[1].MatchScore != 4 {
		t.Errorf("second = %s (%d), want AS-3 (4)", got[1].Issue.Key, got[1].MatchScore)
	}
	if got[2].Issue.Key != "AS-2" || got[2].MatchScore != 1 {
		t.Errorf("third = %s (%d), want AS-2 (1)", got[2].Issue.Key, got[2].MatchScore)
	}
}

func TestScoreCandidatesDeterministic(t *testing.T) {
	kw := ExtractKeywords([]string{"pkg/search/index.go"}, nil)
	var tickets []jira.Issue
	for i := 0; i < 30; i++ {
		tickets = append(tickets, jira.Issue{
			Key:     fmt.Sprintf("AS-%d", i+1),
			Summary: "search index rebuild",
		})
	}

	first := ScoreCandidates(kw, tickets)
	second := ScoreCandidates(kw, tickets)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two runs over the same input differ (-first +second):\n%s", diff)
	}

	if len(first) != 10 {
		t.Errorf("got %d candidates, want top-10 cap", len(first))
	}

	// Equal scores keep the input order
	for i, c := range first {
		want := fmt.Sprintf("AS-%d", i+1)
		if c.Issue.Key != want {
			t.Errorf("position %d = %s, want %s (stable tie order)", i, c.Issue.Key, want)
		}
	}
}

func TestDescriptionSnippet(t *testing.T) {
	long := strings.Repeat("alpha beta gamma ", 20)
	desc := long + "the timeout happens under load " + long

	snippet := descriptionSnippet(desc, "timeout")
	if snippet == "" {
		t.Fatal("empty snippet for present keyword")
	}
	if !strings.Contains(snippet, "timeout") {
		t.Errorf("snippet %q does not contain the keyword", snippet)
	}
	if len(snippet) > snippetMaxLen+3 {
		t.Errorf("snippet length %d exceeds cap", len(snippet))
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Errorf("long snippet %q not ellipsized", snippet)
	}

	if got := descriptionSnippet(desc, "absent"); got != "" {
		t.Errorf("snippet for missing keyword = %q, want empty", got)
	}
	if got := descriptionSnippet("", "timeout"); got != "" {
		t.Errorf("snippet for empty description = %q, want empty", got)
	}
}

func TestHeuristicSuggestions(t *testing.T) {
	candidates := []Candidate{
		{Issue: jira.Issue{Key: "AS-1", Summary: "s1", Status: "To Do"}, MatchScore: 9,
			MatchReasons: []string{"r1", "r2", "r3"}},
		{Issue: jira.Issue{Key: "AS-2", Summary: "s2", Status: "To Do"}, MatchScore: 12},
		{Issue: jira.Issue{Key: "AS-3", Summary: "s3", Status: "To Do"}, MatchScore: 2},
	}

	got := heuristicSuggestions(candidates, 60)
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2 above threshold", len(got))
	}
	if got[0].Score != 90 {
		t.Errorf("AS-1 score = %d, want 90 (9 x 10)", got[0].Score)
	}
	if got[0].Reason != "r1, r2" {
		t.Errorf("reason = %q, want first two reasons joined", got[0].Reason)
	}
	if got[1].Score != 100 {
		t.Errorf("AS-2 score = %d, want capped 100", got[1].Score)
	}
}
