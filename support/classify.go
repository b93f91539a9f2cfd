package support

import "strings"

// Severity levels
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// Keyword lists behind the severity heuristic. Order matters: critical
// wins over high wins over medium.
var (
	criticalKeywords = []string{
		"crash", "down", "outage", "loss of data", "data deleted",
		"security breach", "breach", "500 error", "database error",
		"unable to access", "system down", "completely broken",
		"all users affected", "production down", "critical",
		"cannot save", "data corruption",
	}

	highKeywords = []string{
		"fail", "failed", "failing", "error", "cannot", "can't",
		"broken", "unavailable", "timeout", "stuck", "frozen",
		"not working", "doesn't work", "won't", "login fail",
		"payment fail", "lost connection", "disconnect",
		"blocked", "hangs", "unresponsive",
	}

	mediumKeywords = []string{
		"slow", "lag", "lagging", "sluggish", "issue", "problem",
		"sometimes", "intermittent", "occasional", "specific",
		"some users", "certain conditions", "minor", "glitch",
		"delay", "performance", "quality",
	}

	highImpactScope = []string{
		"all users", "many users", "everyone", "bulk",
		"mass", "widespread", "multiple", "customers",
		"production", "live",
	}
)

// DetermineSeverity classifies a ticket by keyword patterns. It works with
// or without an error log; a high-severity keyword escalates to critical
// when the described impact is wide.
func DetermineSeverity(summary, description, errorLog string) string {
	combined := strings.ToLower(summary + " " + description + " " + errorLog)

	highImpact := false
	for _, scope := range highImpactScope {
		if strings.Contains(combined, scope) {
			highImpact = true
			break
		}
	}

	for _, keyword := range criticalKeywords {
		if strings.Contains(combined, keyword) {
			return SeverityCritical
		}
	}
	for _, keyword := range highKeywords {
		if strings.Contains(combined, keyword) {
			if highImpact {
				return SeverityCritical
			}
			return SeverityHigh
		}
	}
	for _, keyword := range mediumKeywords {
		if strings.Contains(combined, keyword) {
			return SeverityMedium
		}
	}

	// A sizeable error log with no keyword hits is still likely a real issue
	if len(errorLog) > 50 {
		return SeverityHigh
	}
	return SeverityMedium
}

var categoryKeywords = []struct {
	Category string
	Keywords []string
}{
	{"Performance", []string{"slow", "lag", "delay", "hang", "freeze", "timeout"}},
	{"Authentication", []string{"login", "auth", "password", "token", "permission", "access"}},
	{"Database", []string{"database", "query", "sql", "connection", "data", "record"}},
	{"API", []string{"api", "endpoint", "request", "response", "integration"}},
	{"UI", []string{"display", "button", "layout", "design", "ui", "frontend", "blank"}},
	{"Backend", []string{"server", "backend", "service", "processing", "calculation"}},
	{"Security", []string{"security", "breach", "vulnerability", "hack", "unauthorized"}},
}

// Categorize does a quick keyword categorization of a ticket summary.
// The second return value is the confidence label.
func Categorize(summary string) (string, string) {
	summaryLower := strings.ToLower(summary)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(summaryLower, keyword) {
				return entry.Category, "High"
			}
		}
	}
	return "Other", "Low"
}
