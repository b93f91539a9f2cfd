package sprint

import (
	"math"
	"time"
)

// Health is the 0-100 sprint health score with its factor breakdown
type Health struct {
	Score     int       `json:"score"`
	Status    string    `json:"status"`
	Breakdown Breakdown `json:"breakdown"`
}

// Breakdown holds the five weighted factors. They always sum to the
// (unrounded) score; the maxima are 30/25/15/15/15.
type Breakdown struct {
	Completion float64 `json:"completion"`
	Pace       float64 `json:"pace"`
	Blockers   float64 `json:"blockers"`
	Risks      float64 `json:"risks"`
	Velocity   float64 `json:"velocity"`
}

func (b Breakdown) sum() float64 {
	return b.Completion + b.Pace + b.Blockers + b.Risks + b.Velocity
}

// CalculateHealth scores a sprint from its metrics and detected risks.
func CalculateHealth(m Metrics, r Risks, sprintStart, sprintEnd *time.Time, now time.Time) Health {
	b := Breakdown{
		Completion: m.CompletionPct / 100 * 30,
		Pace:       paceScore(m.CompletionPct, sprintStart, sprintEnd, now),
		Blockers:   bracketScore(len(m.Blocked)),
		Risks:      bracketScore(r.mitigationCount()),
		Velocity:   velocityScore(m.DoneCount, m.TotalIssues),
	}

	score := int(math.Round(b.sum()))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Health{
		Score:     score,
		Status:    StatusLabel(score),
		Breakdown: b,
	}
}

// paceScore compares completion percentage to the elapsed share of the
// sprint. Unknown sprint dates score the neutral 15.
func paceScore(completionPct float64, start, end *time.Time, now time.Time) float64 {
	if start == nil || end == nil || !end.After(*start) {
		return 15
	}

	elapsedPct := now.Sub(*start).Hours() / end.Sub(*start).Hours() * 100
	if elapsedPct < 0 {
		elapsedPct = 0
	}
	if elapsedPct > 100 {
		elapsedPct = 100
	}

	diff := completionPct - elapsedPct
	switch {
	case diff >= 10:
		return 25
	case diff >= 0:
		return 20
	case diff >= -10:
		return 15
	case diff >= -20:
		return 10
	default:
		return 5
	}
}

// bracketScore maps a problem count onto the shared 15/10/5/0 brackets
// used by both the blocker and risk factors.
func bracketScore(count int) float64 {
	switch {
	case count == 0:
		return 15
	case count <= 2:
		return 10
	case count <= 5:
		return 5
	default:
		return 0
	}
}

func velocityScore(doneCount, totalIssues int) float64 {
	if totalIssues == 0 {
		return 15
	}
	ratio := float64(doneCount) / float64(totalIssues)
	switch {
	case ratio < 0.3:
		return 5
	case ratio < 0.5:
		return 10
	default:
		return 15
	}
}

// StatusLabel maps a health score onto its qualitative label
func StatusLabel(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 65:
		return "Good"
	case score >= 50:
		return "Fair"
	case score >= 35:
		return "At Risk"
	default:
		return "Critical"
	}
}

// CompletionLabel maps an end-of-sprint completion percentage onto the
// retrospective brackets.
func CompletionLabel(completionPct float64) string {
	switch {
	case completionPct >= 90:
		return "Excellent"
	case completionPct >= 75:
		return "Good"
	case completionPct >= 50:
		return "Fair"
	default:
		return "Needs Attention"
	}
}
