package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config represents the application configuration
type Config struct {
	JiraURL            string `json:"jira_url"`             // e.g., https://yoursite.atlassian.net
	JiraEmail          string `json:"jira_email"`           // Account email for Basic auth
	JiraToken          string `json:"jira_token"`           // API token
	JiraProject        string `json:"jira_project"`         // Project key, e.g. AS
	JiraBoardID        int    `json:"jira_board_id"`        // Agile board for sprint lookups
	ConfluenceURL      string `json:"confluence_url"`       // e.g., https://yoursite.atlassian.net
	ConfluenceUser     string `json:"confluence_user"`      // Account email
	ConfluenceToken    string `json:"confluence_token"`     // API token
	SpaceKey           string `json:"space_key"`            // Confluence space for reports
	OpenAIKey          string `json:"openai_key"`           // Empty disables AI sections
	OpenAIModel        string `json:"openai_model"`         // Defaults to gpt-4o-mini
	RepoPath           string `json:"repo_path"`            // Local git checkout to analyze
	DaysToAnalyze      int    `json:"days_to_analyze"`      // Git history window
	StoryPointsField   string `json:"story_points_field"`   // Jira custom field ID
	WebhookCallbackURL string `json:"webhook_callback_url"` // Public URL Jira posts events to
}

// LoadConfig loads configuration from file or environment variables
func LoadConfig(filename string) (Config, error) {
	// Try loading from file first
	if _, err := os.Stat(filename); err == nil {
		data, err := os.ReadFile(filename)
		if err != nil {
			return Config{}, err
		}
		var config Config
		if err := json.Unmarshal(data, &config); err != nil {
			return Config{}, err
		}
		config.applyDefaults()
		return config, nil
	}

	// Fall back to environment variables
	config := Config{
		JiraURL:            os.Getenv("JIRA_URL"),
		JiraEmail:          os.Getenv("JIRA_EMAIL"),
		JiraToken:          os.Getenv("JIRA_API_TOKEN"),
		JiraProject:        os.Getenv("JIRA_PROJECT"),
		ConfluenceURL:      os.Getenv("CONFLUENCE_URL"),
		ConfluenceUser:     os.Getenv("CONFLUENCE_USER"),
		ConfluenceToken:    os.Getenv("CONFLUENCE_API_TOKEN"),
		SpaceKey:           os.Getenv("SPACE_KEY"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        os.Getenv("OPENAI_MODEL"),
		RepoPath:           os.Getenv("REPO_PATH"),
		StoryPointsField:   os.Getenv("STORY_POINTS_FIELD"),
		WebhookCallbackURL: os.Getenv("WEBHOOK_CALLBACK_URL"),
	}

	if board := os.Getenv("JIRA_BOARD_ID"); board != "" {
		if id, err := strconv.Atoi(board); err == nil {
			config.JiraBoardID = id
		}
	}
	if days := os.Getenv("DAYS_TO_ANALYZE"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			config.DaysToAnalyze = d
		}
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.DaysToAnalyze == 0 {
		c.DaysToAnalyze = 7
	}
	if c.RepoPath == "" {
		c.RepoPath = "."
	}
	if c.StoryPointsField == "" {
		c.StoryPointsField = "customfield_10016"
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = "gpt-4o-mini"
	}
	if c.ConfluenceURL == "" {
		c.ConfluenceURL = c.JiraURL
	}
	if c.ConfluenceUser == "" {
		c.ConfluenceUser = c.JiraEmail
	}
	if c.ConfluenceToken == "" {
		c.ConfluenceToken = c.JiraToken
	}
}

// Validate checks that the variables a command depends on are set.
// It returns one error listing every missing name so a misconfigured
// environment fails once, before any network call.
func (c Config) Validate(required ...string) error {
	present := map[string]bool{
		"JIRA_URL":             c.JiraURL != "",
		"JIRA_EMAIL":           c.JiraEmail != "",
		"JIRA_API_TOKEN":       c.JiraToken != "",
		"JIRA_PROJECT":         c.JiraProject != "",
		"JIRA_BOARD_ID":        c.JiraBoardID != 0,
		"CONFLUENCE_URL":       c.ConfluenceURL != "",
		"CONFLUENCE_USER":      c.ConfluenceUser != "",
		"CONFLUENCE_API_TOKEN": c.ConfluenceToken != "",
		"SPACE_KEY":            c.SpaceKey != "",
		"OPENAI_API_KEY":       c.OpenAIKey != "",
	}

	var missing []string
	for _, name := range required {
		ok, known := present[name]
		if !known {
			return fmt.Errorf("unknown configuration requirement %q", name)
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CreateSampleConfig creates a sample configuration file
func CreateSampleConfig() error {
	config := Config{
		JiraURL:            "https://yoursite.atlassian.net",
		JiraEmail:          "you@company.com",
		JiraToken:          "your-jira-api-token",
		JiraProject:        "PROJ",
		JiraBoardID:        1,
		ConfluenceURL:      "https://yoursite.atlassian.net",
		ConfluenceUser:     "you@company.com",
		ConfluenceToken:    "your-confluence-api-token",
		SpaceKey:           "TEAM",
		OpenAIKey:          "sk-your-key",
		OpenAIModel:        "gpt-4o-mini",
		RepoPath:           ".",
		DaysToAnalyze:      7,
		StoryPointsField:   "customfield_10016",
		WebhookCallbackURL: "https://your-server.com/api/jira-webhook",
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile("config.sample.json", data, 0644)
}
