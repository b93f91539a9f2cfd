package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sprint-insights/config"
)

func TestServeRequirementsPerTarget(t *testing.T) {
	supportOnly := []string{"JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT"}
	withSprint := append(append([]string{}, supportOnly...),
		"JIRA_BOARD_ID", "CONFLUENCE_URL", "CONFLUENCE_USER", "CONFLUENCE_API_TOKEN", "SPACE_KEY")

	cases := []struct {
		which string
		want  []string
	}{
		{"support", supportOnly},
		{"sprint", withSprint},
		{"all", withSprint},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, serveRequirements(tc.which)); diff != "" {
			t.Errorf("serveRequirements(%q) mismatch (-want +got):\n%s", tc.which, diff)
		}
	}
}

func TestServeRequirementsFailValidationWithoutBoard(t *testing.T) {
	cfg := config.Config{
		JiraURL:     "https://example.atlassian.net",
		JiraEmail:   "dev@example.com",
		JiraToken:   "token",
		JiraProject: "AS",
	}
	cfg = applyConfluenceFallback(cfg)

	if err := cfg.Validate(serveRequirements("support")...); err != nil {
		t.Errorf("support target should validate with Jira settings only: %v", err)
	}
	if err := cfg.Validate(serveRequirements("sprint")...); err == nil {
		t.Error("sprint target must fail validation without JIRA_BOARD_ID and SPACE_KEY")
	}
}

// applyConfluenceFallback mirrors what LoadConfig does after reading a file,
// so the Validate checks here see the same derived settings a real run would.
func applyConfluenceFallback(cfg config.Config) config.Config {
	if cfg.ConfluenceURL == "" {
		cfg.ConfluenceURL = cfg.JiraURL
	}
	if cfg.ConfluenceUser == "" {
		cfg.ConfluenceUser = cfg.JiraEmail
	}
	if cfg.ConfluenceToken == "" {
		cfg.ConfluenceToken = cfg.JiraToken
	}
	return cfg
}
