package jira

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sprint-insights/config"
)

// Client handles Jira REST v3 and Agile API operations
type Client struct {
	config config.Config
	http   *http.Client
	log    zerolog.Logger
}

// NewClient creates a new Jira client
func NewClient(cfg config.Config, logger zerolog.Logger) Client {
	return Client{
		config: cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    logger,
	}
}

// makeRequest issues an authenticated request and returns the response body.
// 429 and 5xx responses are retried up to three attempts with linear backoff;
// anything else non-2xx fails with the status and body.
func (c Client) makeRequest(method, url string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequest(method, url, reader)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.config.JiraEmail, c.config.JiraToken)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return nil, readErr
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return respBody, nil
			}
			lastErr = fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
			if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
				return nil, lastErr
			}
		}

		if attempt < 3 {
			c.log.Warn().Str("url", url).Int("attempt", attempt).Err(lastErr).Msg("jira request retrying")
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	return nil, lastErr
}

// issueFields mirrors the Jira fields payload. The story points custom field
// is read separately because its ID is configurable.
type issueFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description"`
	Status      *struct {
		Name           string `json:"name"`
		StatusCategory struct {
			Key string `json:"key"`
		} `json:"statusCategory"`
	} `json:"status"`
	Assignee *struct {
		DisplayName string `json:"displayName"`
		AccountID   string `json:"accountId"`
	} `json:"assignee"`
	Priority *struct {
		Name string `json:"name"`
	} `json:"priority"`
	IssueType *struct {
		Name string `json:"name"`
	} `json:"issuetype"`
	Labels     []string `json:"labels"`
	Components []struct {
		Name string `json:"name"`
	} `json:"components"`
	Flagged bool   `json:"flagged"`
	Created string `json:"created"`
	Updated string `json:"updated"`
}

type rawIssue struct {
	ID     string          `json:"id"`
	Key    string          `json:"key"`
	Fields json.RawMessage `json:"fields"`
}

var issueFieldNames = []string{
	"summary", "description", "status", "assignee", "priority",
	"issuetype", "labels", "components", "flagged", "created", "updated",
}

func (c Client) searchFields() []string {
	return append(append([]string{}, issueFieldNames...), c.config.StoryPointsField)
}

// decodeIssue converts a raw API issue into an Issue, substituting safe
// defaults for whatever the payload is missing.
func (c Client) decodeIssue(raw rawIssue) Issue {
	issue := Issue{
		Key:      raw.Key,
		Assignee: "Unassigned",
		Priority: "Medium",
	}
	if len(raw.Fields) == 0 {
		return issue
	}

	var fields issueFields
	if err := json.Unmarshal(raw.Fields, &fields); err != nil {
		c.log.Warn().Str("key", raw.Key).Err(err).Msg("could not parse issue fields")
		return issue
	}

	issue.Summary = fields.Summary
	issue.Description = flattenDescription(fields.Description)
	if fields.Status != nil {
		issue.Status = fields.Status.Name
		issue.StatusCategory = fields.Status.StatusCategory.Key
	}
	if fields.Assignee != nil && fields.Assignee.DisplayName != "" {
		issue.Assignee = fields.Assignee.DisplayName
		issue.AssigneeID = fields.Assignee.AccountID
	}
	if fields.Priority != nil && fields.Priority.Name != "" {
		issue.Priority = fields.Priority.Name
	}
	if fields.IssueType != nil {
		issue.IssueType = fields.IssueType.Name
	}
	issue.Labels = fields.Labels
	for _, comp := range fields.Components {
		issue.Components = append(issue.Components, comp.Name)
	}
	issue.Flagged = fields.Flagged
	issue.Created = parseJiraTime(fields.Created)
	issue.Updated = parseJiraTime(fields.Updated)

	// Story points live in a configurable custom field
	var extra map[string]any
	if err := json.Unmarshal(raw.Fields, &extra); err == nil {
		if pts, ok := extra[c.config.StoryPointsField].(float64); ok {
			issue.StoryPoints = pts
		}
	}

	return issue
}

// parseJiraTime handles the timestamp layouts Jira mixes across endpoints.
func parseJiraTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	layouts := []string{
		"2006-01-02T15:04:05.000-0700",
		time.RFC3339,
		"2006-01-02T15:04:05.000Z0700",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// flattenDescription extracts plain text from a description value, which
// Jira Cloud v3 returns as an Atlassian Document Format tree.
func flattenDescription(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	var node adfNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return ""
	}
	var sb strings.Builder
	node.collectText(&sb)
	return strings.TrimSpace(sb.String())
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

func (n adfNode) collectText(sb *strings.Builder) {
	if n.Text != "" {
		sb.WriteString(n.Text)
	}
	for _, child := range n.Content {
		child.collectText(sb)
	}
	if n.Type == "paragraph" || n.Type == "heading" {
		sb.WriteString("\n")
	}
}

// SearchIssues runs a JQL query and returns all matching issues
func (c Client) SearchIssues(jql string, maxResults int) ([]Issue, error) {
	if maxResults <= 0 {
		maxResults = 100
	}

	var issues []Issue
	nextPageToken := ""
	for {
		payload := map[string]any{
			"jql":        jql,
			"maxResults": maxResults,
			"fields":     c.searchFields(),
		}
		if nextPageToken != "" {
			payload["nextPageToken"] = nextPageToken
		}

		body, err := c.makeRequest("POST", c.config.JiraURL+"/rest/api/3/search/jql", payload)
		if err != nil {
			return nil, fmt.Errorf("error searching Jira issues: %w", err)
		}

		var response struct {
			Issues        []rawIssue `json:"issues"`
			IsLast        bool       `json:"isLast"`
			NextPageToken string     `json:"nextPageToken"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("error parsing Jira response: %w", err)
		}

		for _, raw := range response.Issues {
			issues = append(issues, c.decodeIssue(raw))
		}

		if response.IsLast || response.NextPageToken == "" {
			break
		}
		nextPageToken = response.NextPageToken
	}

	return issues, nil
}

// OpenProjectIssues returns open tickets for the configured project,
// most recently updated first.
func (c Client) OpenProjectIssues() ([]Issue, error) {
	jql := fmt.Sprintf("project = %s AND status != Done AND status != Closed ORDER BY updated DESC",
		c.config.JiraProject)
	return c.SearchIssues(jql, 100)
}

// GetIssue fetches a single issue by key
func (c Client) GetIssue(key string) (Issue, error) {
	url := fmt.Sprintf("%s/rest/api/3/issue/%s?fields=%s",
		c.config.JiraURL, key, strings.Join(c.searchFields(), ","))
	body, err := c.makeRequest("GET", url, nil)
	if err != nil {
		return Issue{}, fmt.Errorf("error fetching issue %s: %w", key, err)
	}

	var raw rawIssue
	if err := json.Unmarshal(body, &raw); err != nil {
		return Issue{}, fmt.Errorf("error parsing issue %s: %w", key, err)
	}
	return c.decodeIssue(raw), nil
}

// CreateIssue creates an issue in the configured project and returns its
// key. Jira Cloud v3 wants the description in Atlassian Document Format.
func (c Client) CreateIssue(summary, description, issueType string) (string, error) {
	if issueType == "" {
		issueType = "Task"
	}

	payload := map[string]any{
		"fields": map[string]any{
			"project":   map[string]string{"key": c.config.JiraProject},
			"summary":   summary,
			"issuetype": map[string]string{"name": issueType},
			"description": map[string]any{
				"type":    "doc",
				"version": 1,
				"content": []map[string]any{{
					"type":    "paragraph",
					"content": []map[string]any{{"type": "text", "text": description}},
				}},
			},
		},
	}

	body, err := c.makeRequest("POST", c.config.JiraURL+"/rest/api/3/issue", payload)
	if err != nil {
		return "", fmt.Errorf("error creating issue: %w", err)
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("error parsing create response: %w", err)
	}
	c.log.Info().Str("key", created.Key).Msg("🎫 created Jira ticket")
	return created.Key, nil
}

// Myself verifies credentials and returns the display name of the caller
func (c Client) Myself() (string, error) {
	body, err := c.makeRequest("GET", c.config.JiraURL+"/rest/api/3/myself", nil)
	if err != nil {
		return "", err
	}
	var me struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return "", err
	}
	return me.DisplayName, nil
}

// ActiveSprint returns the active sprint for the board, falling back to the
// most recently closed sprint when nothing is active.
func (c Client) ActiveSprint(boardID int) (*Sprint, error) {
	sprint, err := c.boardSprint(boardID, "active")
	if err != nil {
		return nil, err
	}
	if sprint != nil {
		return sprint, nil
	}
	c.log.Info().Int("board", boardID).Msg("no active sprint, falling back to most recent closed sprint")
	return c.boardSprint(boardID, "closed")
}

func (c Client) boardSprint(boardID int, state string) (*Sprint, error) {
	url := fmt.Sprintf("%s/rest/agile/1.0/board/%d/sprint?state=%s", c.config.JiraURL, boardID, state)
	body, err := c.makeRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s sprints: %w", state, err)
	}

	var response struct {
		Values []struct {
			ID        int    `json:"id"`
			Name      string `json:"name"`
			State     string `json:"state"`
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
		} `json:"values"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing sprint response: %w", err)
	}
	if len(response.Values) == 0 {
		return nil, nil
	}

	// The agile API returns sprints oldest first; take the latest.
	v := response.Values[len(response.Values)-1]
	sprint := Sprint{ID: v.ID, Name: v.Name, State: v.State}
	if t := parseJiraTime(v.StartDate); !t.IsZero() {
		sprint.StartDate = &t
	}
	if t := parseJiraTime(v.EndDate); !t.IsZero() {
		sprint.EndDate = &t
	}
	return &sprint, nil
}

// SprintIssues returns all issues in a sprint
func (c Client) SprintIssues(boardID, sprintID int) ([]Issue, error) {
	var issues []Issue
	startAt := 0
	maxResults := 50

	for {
		url := fmt.Sprintf("%s/rest/agile/1.0/board/%d/sprint/%d/issue?startAt=%d&maxResults=%d&fields=%s",
			c.config.JiraURL, boardID, sprintID, startAt, maxResults,
			strings.Join(c.searchFields(), ","))
		body, err := c.makeRequest("GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("error fetching sprint issues: %w", err)
		}

		var response struct {
			Issues []rawIssue `json:"issues"`
			Total  int        `json:"total"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("error parsing sprint issues: %w", err)
		}

		for _, raw := range response.Issues {
			issues = append(issues, c.decodeIssue(raw))
		}

		startAt += len(response.Issues)
		if len(response.Issues) < maxResults || startAt >= response.Total {
			break
		}
	}

	return issues, nil
}

// AddComment posts a plain-text comment on an issue
func (c Client) AddComment(key, text string) error {
	url := fmt.Sprintf("%s/rest/api/2/issue/%s/comment", c.config.JiraURL, key)
	_, err := c.makeRequest("POST", url, map[string]string{"body": text})
	if err != nil {
		return fmt.Errorf("error adding comment to %s: %w", key, err)
	}
	return nil
}

// Comments returns the comments on an issue
func (c Client) Comments(key string) ([]Comment, error) {
	url := fmt.Sprintf("%s/rest/api/2/issue/%s/comment", c.config.JiraURL, key)
	body, err := c.makeRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("error fetching comments for %s: %w", key, err)
	}

	var response struct {
		Comments []struct {
			ID     string `json:"id"`
			Author struct {
				DisplayName string `json:"displayName"`
			} `json:"author"`
			Body    string `json:"body"`
			Created string `json:"created"`
		} `json:"comments"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing comments for %s: %w", key, err)
	}

	var comments []Comment
	for _, raw := range response.Comments {
		comments = append(comments, Comment{
			ID:      raw.ID,
			Author:  raw.Author.DisplayName,
			Body:    raw.Body,
			Created: parseJiraTime(raw.Created),
		})
	}
	return comments, nil
}

// Transitions returns the workflow transitions currently available for an issue
func (c Client) Transitions(key string) ([]Transition, error) {
	url := fmt.Sprintf("%s/rest/api/3/issue/%s/transitions", c.config.JiraURL, key)
	body, err := c.makeRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("error fetching transitions for %s: %w", key, err)
	}

	var response struct {
		Transitions []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			To   struct {
				Name string `json:"name"`
			} `json:"to"`
		} `json:"transitions"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing transitions for %s: %w", key, err)
	}

	var transitions []Transition
	for _, t := range response.Transitions {
		transitions = append(transitions, Transition{ID: t.ID, Name: t.Name, ToName: t.To.Name})
	}
	return transitions, nil
}

// TransitionIssue moves an issue to the named status. The name is matched
// against both the transition name and its target status.
func (c Client) TransitionIssue(key, statusName string) error {
	transitions, err := c.Transitions(key)
	if err != nil {
		return err
	}
	if len(transitions) == 0 {
		return fmt.Errorf("no transitions available for %s", key)
	}

	var transitionID string
	for _, t := range transitions {
		if strings.EqualFold(t.Name, statusName) || strings.EqualFold(t.ToName, statusName) {
			transitionID = t.ID
			break
		}
	}
	if transitionID == "" {
		var available []string
		for _, t := range transitions {
			available = append(available, fmt.Sprintf("%s -> %s", t.Name, t.ToName))
		}
		return fmt.Errorf("transition %q not available for %s (available: %s)",
			statusName, key, strings.Join(available, ", "))
	}

	url := fmt.Sprintf("%s/rest/api/3/issue/%s/transitions", c.config.JiraURL, key)
	payload := map[string]any{"transition": map[string]string{"id": transitionID}}
	if _, err := c.makeRequest("POST", url, payload); err != nil {
		return fmt.Errorf("error transitioning %s: %w", key, err)
	}
	return nil
}

// AssignIssue sets the assignee of an issue by account ID
func (c Client) AssignIssue(key, accountID string) error {
	url := fmt.Sprintf("%s/rest/api/3/issue/%s/assignee", c.config.JiraURL, key)
	if _, err := c.makeRequest("PUT", url, map[string]string{"accountId": accountID}); err != nil {
		return fmt.Errorf("error assigning %s: %w", key, err)
	}
	return nil
}

// FindAssignableUser resolves a display name or email to an account ID
// among users assignable in the configured project. Returns "" when no
// user matches.
func (c Client) FindAssignableUser(query string) (string, error) {
	params := url.Values{}
	params.Set("project", c.config.JiraProject)
	params.Set("query", query)
	params.Set("maxResults", "1")

	body, err := c.makeRequest("GET", c.config.JiraURL+"/rest/api/3/user/assignable/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("error searching assignable users: %w", err)
	}

	var users []struct {
		AccountID string `json:"accountId"`
	}
	if err := json.Unmarshal(body, &users); err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", nil
	}
	return users[0].AccountID, nil
}

// RegisterWebhook registers a webhook for issue-created events on a project
// and returns the new webhook ID.
func (c Client) RegisterWebhook(callbackURL, projectKey string) (string, error) {
	payload := map[string]any{
		"name":   fmt.Sprintf("Auto Support Analyzer - %s", projectKey),
		"url":    callbackURL,
		"events": []string{"jira:issue_created"},
		"filters": map[string]string{
			"issue-related-events-section": fmt.Sprintf("project = %s", projectKey),
		},
		"excludeBody": false,
	}

	body, err := c.makeRequest("POST", c.config.JiraURL+"/rest/webhooks/1.0/webhook", payload)
	if err != nil {
		return "", fmt.Errorf("error registering webhook: %w", err)
	}

	var response struct {
		Self string `json:"self"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("error parsing webhook response: %w", err)
	}
	parts := strings.Split(response.Self, "/")
	return parts[len(parts)-1], nil
}

// ListWebhooks returns all registered webhooks
func (c Client) ListWebhooks() ([]Webhook, error) {
	body, err := c.makeRequest("GET", c.config.JiraURL+"/rest/webhooks/1.0/webhook", nil)
	if err != nil {
		return nil, fmt.Errorf("error listing webhooks: %w", err)
	}

	var raw []struct {
		Self    string   `json:"self"`
		Name    string   `json:"name"`
		URL     string   `json:"url"`
		Events  []string `json:"events"`
		Enabled bool     `json:"enabled"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error parsing webhooks: %w", err)
	}

	var webhooks []Webhook
	for _, w := range raw {
		parts := strings.Split(w.Self, "/")
		webhooks = append(webhooks, Webhook{
			ID:      parts[len(parts)-1],
			Name:    w.Name,
			URL:     w.URL,
			Events:  w.Events,
			Enabled: w.Enabled,
		})
	}
	return webhooks, nil
}

// DeleteWebhook removes a webhook by ID
func (c Client) DeleteWebhook(id string) error {
	url := fmt.Sprintf("%s/rest/webhooks/1.0/webhook/%s", c.config.JiraURL, id)
	if _, err := c.makeRequest("DELETE", url, nil); err != nil {
		return fmt.Errorf("error deleting webhook %s: %w", id, err)
	}
	return nil
}
