package jira

import "time"

// types.go - Data structures for Jira integration

// Status category keys as reported by Jira's statusCategory field.
const (
	CategoryNew        = "new"
	CategoryInProgress = "indeterminate"
	CategoryDone       = "done"
)

// Issue represents a Jira issue with the fields the reports care about.
// Optional remote fields are normalized once here: a missing assignee
// becomes "Unassigned", a missing priority becomes "Medium".
type Issue struct {
	Key            string    `json:"key"`
	Summary        string    `json:"summary"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status"`
	StatusCategory string    `json:"status_category"`
	Assignee       string    `json:"assignee"`
	AssigneeID     string    `json:"assignee_id,omitempty"`
	Priority       string    `json:"priority"`
	IssueType      string    `json:"issue_type"`
	Labels         []string  `json:"labels,omitempty"`
	Components     []string  `json:"components,omitempty"`
	StoryPoints    float64   `json:"story_points"`
	Flagged        bool      `json:"flagged"`
	Created        time.Time `json:"created"`
	Updated        time.Time `json:"updated"`
}

// Sprint represents a sprint from the Jira Agile API
type Sprint struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	State     string     `json:"state"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Midpoint returns the date halfway between sprint start and end,
// or nil when either boundary is unknown.
func (s Sprint) Midpoint() *time.Time {
	if s.StartDate == nil || s.EndDate == nil {
		return nil
	}
	mid := s.StartDate.Add(s.EndDate.Sub(*s.StartDate) / 2)
	return &mid
}

// Transition represents an available workflow transition for an issue
type Transition struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ToName string `json:"to_name"`
}

// Webhook represents a registered Jira webhook
type Webhook struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Events  []string `json:"events"`
	Enabled bool     `json:"enabled"`
}

// Comment is a single issue comment, flattened to plain text
type Comment struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Body    string    `json:"body"`
	Created time.Time `json:"created"`
}
