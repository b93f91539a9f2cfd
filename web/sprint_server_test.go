package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"sprint-insights/config"
	"sprint-insights/llm"
)

func testSprintServer(t *testing.T) *SprintServer {
	t.Helper()
	cfg := config.Config{
		JiraURL:     "https://example.atlassian.net",
		JiraEmail:   "dev@example.com",
		JiraToken:   "token",
		JiraProject: "AS",
		JiraBoardID: 3,
	}
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return NewSprintServer(cfg, config.DefaultThresholds(), llm.NewClient(cfg, logger), logger)
}

func TestSprintHealthCheck(t *testing.T) {
	srv := testSprintServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sprint-report-api") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGenerateReportValidatesInput(t *testing.T) {
	srv := testSprintServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{oops"},
		{"bad type", `{"report_type": "weekly"}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/api/generate-sprint-report", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		srv.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
		}
	}
}
