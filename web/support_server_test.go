package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"sprint-insights/config"
	"sprint-insights/llm"
)

func testSupportServer(t *testing.T) *SupportServer {
	t.Helper()
	cfg := config.Config{
		JiraURL:     "https://example.atlassian.net",
		JiraEmail:   "dev@example.com",
		JiraToken:   "token",
		JiraProject: "AS",
		RepoPath:    t.TempDir(), // not a git repo; scans degrade to empty
	}
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return NewSupportServer(cfg, config.DefaultThresholds(), llm.NewClient(cfg, logger), logger)
}

func TestSupportHealthCheck(t *testing.T) {
	srv := testSupportServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" || body["service"] != "support-ticket-api" {
		t.Errorf("health body = %v", body)
	}
}

func TestWebhookSkipsUnhandledEvents(t *testing.T) {
	srv := testSupportServer(t)

	payload := `{"webhookEvent": "jira:issue_deleted", "issue": {"key": "AS-1"}}`
	req := httptest.NewRequest("POST", "/api/jira-webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for skipped event", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "skipped") {
		t.Errorf("body = %s, want skip result", rec.Body.String())
	}
}

func TestWebhookSkipsAlreadyAnalyzed(t *testing.T) {
	srv := testSupportServer(t)
	srv.markAnalyzed("AS-7")

	payload := `{"webhookEvent": "jira:issue_created", "issue": {"key": "AS-7"}}`
	req := httptest.NewRequest("POST", "/api/jira-webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already analyzed") {
		t.Errorf("body = %s, want already-analyzed skip", rec.Body.String())
	}
}

func TestWebhookRejectsBadPayload(t *testing.T) {
	srv := testSupportServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing key", `{"webhookEvent": "jira:issue_created", "issue": {}}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/api/jira-webhook", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		srv.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
		}
	}
}

func TestAnalyzeSupportTicketRequiresSummary(t *testing.T) {
	srv := testSupportServer(t)

	req := httptest.NewRequest("POST", "/api/analyze-support-ticket",
		strings.NewReader(`{"description": "no summary"}`))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeSupportTicketFallback(t *testing.T) {
	// No OpenAI key and no git history: the endpoint still answers with
	// the keyword classification.
	srv := testSupportServer(t)

	body := `{"summary": "Login page crash", "description": "all users affected"}`
	req := httptest.NewRequest("POST", "/api/analyze-support-ticket", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			Analysis struct {
				Severity string `json:"severity"`
				Category string `json:"category"`
			} `json:"analysis"`
			Developer struct {
				Developer string `json:"developer"`
			} `json:"suggested_developer"`
			Git     *gitAnalysis `json:"git_analysis"`
			Actions []string     `json:"recommended_actions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Status != "success" {
		t.Errorf("status = %s", envelope.Status)
	}
	if envelope.Data.Analysis.Severity != "Critical" {
		t.Errorf("severity = %s, want Critical for a crash", envelope.Data.Analysis.Severity)
	}
	if envelope.Data.Developer.Developer != "Unassigned" {
		t.Errorf("developer = %s, want Unassigned with no history", envelope.Data.Developer.Developer)
	}
	if envelope.Data.Git == nil {
		t.Error("response is missing the git_analysis section")
	}
	if len(envelope.Data.Actions) == 0 {
		t.Error("response is missing recommended_actions")
	}
}

func TestDeveloperExpertiseEndpoint(t *testing.T) {
	srv := testSupportServer(t)

	req := httptest.NewRequest("GET", "/api/developer-expertise?days=30", nil)
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"success"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestFindRelatedCommitsRequiresKeywords(t *testing.T) {
	srv := testSupportServer(t)

	req := httptest.NewRequest("POST", "/api/find-related-commits",
		strings.NewReader(`{"keywords": [], "days": 30}`))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without keywords", rec.Code)
	}
}

func TestSupportMetricsEndpoint(t *testing.T) {
	srv := testSupportServer(t)

	req := httptest.NewRequest("GET", "/api/support-metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	for _, field := range []string{"total_developers", "recent_commits", "top_developers", "active_areas"} {
		if !strings.Contains(rec.Body.String(), field) {
			t.Errorf("metrics body missing %q: %s", field, rec.Body.String())
		}
	}
}
