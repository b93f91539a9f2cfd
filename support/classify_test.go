package support

import (
	"strings"
	"testing"
)

func TestDetermineSeverity(t *testing.T) {
	cases := []struct {
		name     string
		summary  string
		desc     string
		errorLog string
		want     string
	}{
		{"critical keyword", "Production down", "nothing works", "", SeverityCritical},
		{"data loss", "Report export", "loss of data after saving", "", SeverityCritical},
		{"high keyword", "Export button broken", "clicking does nothing", "", SeverityHigh},
		{"high escalates on wide impact", "Login failed for all users", "", "", SeverityCritical},
		{"medium keyword", "Dashboard is slow", "takes ten seconds", "", SeverityMedium},
		{"error log fallback", "Weird behaviour", "", strings.Repeat("stacktrace line\n", 10), SeverityHigh},
		{"default", "Question about labels", "", "", SeverityMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetermineSeverity(tc.summary, tc.desc, tc.errorLog); got != tc.want {
				t.Errorf("DetermineSeverity = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSeverityKeywordsAreCaseInsensitive(t *testing.T) {
	if got := DetermineSeverity("SYSTEM DOWN", "", ""); got != SeverityCritical {
		t.Errorf("uppercase summary = %s, want Critical", got)
	}
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		summary    string
		category   string
		confidence string
	}{
		{"Page is slow to load", "Performance", "High"},
		{"Cannot login with SSO", "Authentication", "High"},
		{"SQL query returns wrong records", "Database", "High"},
		{"API endpoint returns 404", "API", "High"},
		{"Button layout broken on mobile", "UI", "High"},
		{"Server processing stops", "Backend", "High"},
		{"Vulnerability in export module", "Security", "High"},
		{"Something odd happened", "Other", "Low"},
	}
	for _, tc := range cases {
		category, confidence := Categorize(tc.summary)
		if category != tc.category || confidence != tc.confidence {
			t.Errorf("Categorize(%q) = %s/%s, want %s/%s",
				tc.summary, category, confidence, tc.category, tc.confidence)
		}
	}
}

func TestHasAnalysisMarker(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{"h2. " + AnalysisMarker + "\ndetails", true},
		{"Severity: High", true},
		{"Root Cause investigation ongoing", true},
		{"Please look into this when you can", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := HasAnalysisMarker(tc.body); got != tc.want {
			t.Errorf("HasAnalysisMarker(%q) = %v, want %v", tc.body, got, tc.want)
		}
	}
}
