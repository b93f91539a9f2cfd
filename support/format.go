package support

import (
	"fmt"
	"strings"
)

// AnalysisMarker identifies an analysis comment so a ticket is never
// analyzed twice across restarts.
const AnalysisMarker = "AI Support Ticket Analysis"

var commentMarkers = []string{AnalysisMarker, "Category:", "Severity:", "AI ANALYSIS", "Root Cause"}

// HasAnalysisMarker reports whether a comment body looks like a previously
// posted analysis.
func HasAnalysisMarker(body string) bool {
	for _, marker := range commentMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// FormatComment renders an analysis as a Jira comment
func FormatComment(a Analysis, dev DeveloperSuggestion) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "h2. %s\n\n", AnalysisMarker)
	sb.WriteString("h3. Summary\n")
	fmt.Fprintf(&sb, "* *Category:* %s\n", a.Category)
	fmt.Fprintf(&sb, "* *Severity:* %s\n", a.Severity)
	fmt.Fprintf(&sb, "* *Confidence:* %d%%\n", a.Confidence)
	fmt.Fprintf(&sb, "* *Suggested Developer:* %s\n", dev.Developer)

	if len(a.CodeAreas) > 0 {
		sb.WriteString("\nh3. Code Areas to Check\n")
		for _, area := range a.CodeAreas {
			fmt.Fprintf(&sb, "* {{%s}}\n", area)
		}
	}

	if len(a.RootCauses) > 0 {
		sb.WriteString("\nh3. Suspected Root Causes\n")
		for _, cause := range a.RootCauses {
			fmt.Fprintf(&sb, "# %s\n", cause)
		}
	}

	sb.WriteString("\nh3. Recommended Actions\n")
	sb.WriteString("# Review the suggested code areas above\n")
	fmt.Fprintf(&sb, "# Check recent commits by %s\n", dev.Developer)
	sb.WriteString("# Run tests for the affected area\n")
	sb.WriteString("# Compare with similar past issues\n")

	fmt.Fprintf(&sb, "\n_Analysis generated at %s_\n", a.Timestamp.Format("2006-01-02 15:04:05"))
	return sb.String()
}
