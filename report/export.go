package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ExportToJSON saves a sprint report to a JSON file
func ExportToJSON(rep SprintReport, filename string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ExportToCSV saves the report's metrics to a CSV file
func ExportToCSV(rep SprintReport, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	m := rep.Metrics
	writer.Write([]string{"Category", "Metric", "Value"})

	writer.Write([]string{"Sprint", "Name", rep.Sprint.Name})
	writer.Write([]string{"Sprint", "State", rep.Sprint.State})

	writer.Write([]string{"Issues", "Total", strconv.Itoa(m.TotalIssues)})
	writer.Write([]string{"Issues", "Done", strconv.Itoa(m.DoneCount)})
	writer.Write([]string{"Issues", "In Progress", strconv.Itoa(m.InProgressCount)})
	writer.Write([]string{"Issues", "To Do", strconv.Itoa(m.TodoCount)})
	writer.Write([]string{"Issues", "Blocked", strconv.Itoa(len(m.Blocked))})
	writer.Write([]string{"Issues", "At Risk", strconv.Itoa(len(m.AtRisk))})

	writer.Write([]string{"Points", "Total", fmt.Sprintf("%.1f", m.TotalPoints)})
	writer.Write([]string{"Points", "Done", fmt.Sprintf("%.1f", m.DonePoints)})
	writer.Write([]string{"Points", "In Progress", fmt.Sprintf("%.1f", m.InProgressPoints)})
	writer.Write([]string{"Points", "To Do", fmt.Sprintf("%.1f", m.TodoPoints)})
	writer.Write([]string{"Points", "Completion (%)", fmt.Sprintf("%.2f", m.CompletionPct)})

	writer.Write([]string{"Health", "Score", strconv.Itoa(rep.Health.Score)})
	writer.Write([]string{"Health", "Status", rep.Health.Status})
	writer.Write([]string{"Health", "Completion Factor", fmt.Sprintf("%.2f", rep.Health.Breakdown.Completion)})
	writer.Write([]string{"Health", "Pace Factor", fmt.Sprintf("%.2f", rep.Health.Breakdown.Pace)})
	writer.Write([]string{"Health", "Blocker Factor", fmt.Sprintf("%.2f", rep.Health.Breakdown.Blockers)})
	writer.Write([]string{"Health", "Risk Factor", fmt.Sprintf("%.2f", rep.Health.Breakdown.Risks)})
	writer.Write([]string{"Health", "Velocity Factor", fmt.Sprintf("%.2f", rep.Health.Breakdown.Velocity)})

	writer.Write([]string{"Risks", "Stale In Progress", strconv.Itoa(len(rep.Risks.StaleInProgress))})
	writer.Write([]string{"Risks", "Unassigned High Priority", strconv.Itoa(len(rep.Risks.UnassignedHighPriority))})
	writer.Write([]string{"Risks", "Blocked Items", strconv.Itoa(len(rep.Risks.Blocked))})
	writer.Write([]string{"Risks", "Large Items In Todo", strconv.Itoa(len(rep.Risks.LargeItemsInTodo))})
	writer.Write([]string{"Risks", "Sprint Goal Risk", strconv.Itoa(len(rep.Risks.SprintGoalRisk))})

	return nil
}

// PrintSummary displays a formatted report summary to the console
func PrintSummary(rep SprintReport) {
	m := rep.Metrics

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("SPRINT REPORT: %s\n", rep.Sprint.Name)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Println("\n📊 PROGRESS")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Issues: %d total (Done: %d, In Progress: %d, To Do: %d)\n",
		m.TotalIssues, m.DoneCount, m.InProgressCount, m.TodoCount)
	fmt.Printf("Points: %.1f of %.1f done (%.1f%%)\n", m.DonePoints, m.TotalPoints, m.CompletionPct)
	fmt.Printf("Blocked: %d | At Risk: %d\n", len(m.Blocked), len(m.AtRisk))

	fmt.Println("\n❤️ HEALTH")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Score: %d/100 (%s)\n", rep.Health.Score, rep.Health.Status)
	b := rep.Health.Breakdown
	fmt.Printf("Completion: %.1f/30 | Pace: %.1f/25 | Blockers: %.1f/15\n", b.Completion, b.Pace, b.Blockers)
	fmt.Printf("Risks: %.1f/15 | Distribution: %.1f/15\n", b.Risks, b.Velocity)

	fmt.Println("\n⚠️ RISKS")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Total detected: %d\n", rep.Risks.Total())
	for _, r := range rep.Risks.StaleInProgress {
		fmt.Printf("  - [%s] %s: %s\n", r.Severity, r.Key, r.Reason)
	}
	for _, r := range rep.Risks.SprintGoalRisk {
		fmt.Printf("  - [%s] %s: %s\n", r.Severity, r.Key, r.Reason)
	}

	if rep.Notes != "" {
		fmt.Println("\n🤖 AI NOTES")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Println(rep.Notes)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}
