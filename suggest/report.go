package suggest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteDailyReport appends a suggestion run to the day's Markdown report
// under dir and returns the report path. One file per day, entries appended.
func WriteDailyReport(dir, jiraURL, currentTicket string, suggestions []Suggestion) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	now := time.Now()
	reportFile := filepath.Join(dir, fmt.Sprintf("related-tickets-%s.md", now.Format("2006-01-02")))

	var entry strings.Builder
	fmt.Fprintf(&entry, "\n## %s - %s\n\n", currentTicket, now.Format("15:04:05"))
	if len(suggestions) > 0 {
		entry.WriteString("### Suggested Related Tickets\n\n")
		for i, s := range suggestions {
			fmt.Fprintf(&entry, "%d. **[%s](%s/browse/%s)** - %s\n", i+1, s.Key, jiraURL, s.Key, s.Summary)
			fmt.Fprintf(&entry, "   - Relevance: %d%%\n", s.Score)
			fmt.Fprintf(&entry, "   - Status: %s\n", s.Status)
			fmt.Fprintf(&entry, "   - Reason: %s\n\n", s.Reason)
		}
	} else {
		entry.WriteString("*No related tickets found.*\n\n")
	}
	entry.WriteString("---\n")

	existing, err := os.ReadFile(reportFile)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	var content string
	if len(existing) == 0 {
		content = fmt.Sprintf("# Related Tickets Report - %s\n\n*Generated by the ticket suggester*\n\n%s",
			now.Format("2006-01-02"), entry.String())
	} else {
		content = string(existing) + entry.String()
	}

	if err := os.WriteFile(reportFile, []byte(content), 0644); err != nil {
		return "", err
	}
	return reportFile, nil
}
