package report

import (
	"context"
	"encoding/json"
	"fmt"

	"sprint-insights/llm"
	"sprint-insights/sprint"
)

// DisabledNotes is returned when no OpenAI key is configured
const DisabledNotes = "AI insights disabled: OPENAI_API_KEY not set."

const coachSystem = "You are a delivery coach. Write a terse, action-oriented mid-sprint note. Use at most 4 bullets. Highlight risks, blockers, and specific next actions."

const retroSystem = "You are a delivery coach writing a sprint retrospective summary. Use at most 5 bullets. Cover what went well, what slipped, and one concrete improvement for the next sprint."

// AINotes asks the model for a short mid-sprint note. Missing key or API
// failure both degrade to a usable string rather than an error.
func AINotes(ctx context.Context, cli *llm.Client, sprintName string, m sprint.Metrics) string {
	if cli == nil || !cli.Enabled() {
		return DisabledNotes
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return DisabledNotes
	}
	user := fmt.Sprintf("Sprint: %s metrics: %s", sprintName, payload)

	notes, err := cli.Complete(ctx, coachSystem, user)
	if err != nil {
		return fmt.Sprintf("AI insights unavailable: %v", err)
	}
	return notes
}

// AIRetrospective asks the model for an end-of-sprint retrospective summary
func AIRetrospective(ctx context.Context, cli *llm.Client, sprintName string, m sprint.Metrics, h sprint.Health) string {
	if cli == nil || !cli.Enabled() {
		return DisabledNotes
	}

	payload, err := json.Marshal(struct {
		Metrics sprint.Metrics `json:"metrics"`
		Health  sprint.Health  `json:"health"`
	}{m, h})
	if err != nil {
		return DisabledNotes
	}
	user := fmt.Sprintf("Sprint: %s results: %s", sprintName, payload)

	notes, err := cli.Complete(ctx, retroSystem, user)
	if err != nil {
		return fmt.Sprintf("AI retrospective unavailable: %v", err)
	}
	return notes
}
