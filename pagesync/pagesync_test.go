package pagesync

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"sprint-insights/config"
	"sprint-insights/llm"
)

func TestSyncSection(t *testing.T) {
	got := SyncSection("https://example.atlassian.net", "Refund flow for <EU> customers",
		[]string{"AS-101", "AS-102"})

	for _, want := range []string{
		"<hr/><h2>AI Jira Sync</h2>",
		"<p>Refund flow for &lt;EU&gt; customers</p>",
		"<h3>Created Tickets</h3>",
		`<a href="https://example.atlassian.net/browse/AS-101">AS-101</a>`,
		`<a href="https://example.atlassian.net/browse/AS-102">AS-102</a>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("section missing %q:\n%s", want, got)
		}
	}
}

func TestSyncSectionWithoutTickets(t *testing.T) {
	got := SyncSection("https://example.atlassian.net", "nothing actionable", nil)
	if strings.Contains(got, "Created Tickets") {
		t.Errorf("empty key list should not render a ticket section:\n%s", got)
	}
}

func TestExtractRequiresKey(t *testing.T) {
	cli := llm.NewClient(config.Config{}, zerolog.New(os.Stderr).Level(zerolog.Disabled))
	if _, err := Extract(context.Background(), cli, "<p>body</p>"); err == nil {
		t.Fatal("Extract without an API key should fail")
	}
	if _, err := Extract(context.Background(), nil, "<p>body</p>"); err == nil {
		t.Fatal("Extract with a nil client should fail")
	}
}
