package confluence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"sprint-insights/config"
)

// Client handles Confluence REST API operations
type Client struct {
	config config.Config
	http   *http.Client
	log    zerolog.Logger
}

// Page is a Confluence page reference with its current version
type Page struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version int    `json:"version"`
}

// NewClient creates a new Confluence client
func NewClient(cfg config.Config, logger zerolog.Logger) Client {
	return Client{
		config: cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    logger,
	}
}

func (c Client) baseURL() string {
	return c.config.ConfluenceURL + "/wiki/rest/api"
}

func (c Client) makeRequest(method, url string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.config.ConfluenceUser, c.config.ConfluenceToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// VerifySpace checks the configured space exists and returns its name
func (c Client) VerifySpace() (string, error) {
	body, err := c.makeRequest("GET", c.baseURL()+"/space/"+c.config.SpaceKey, nil)
	if err != nil {
		return "", fmt.Errorf("error verifying space %s: %w", c.config.SpaceKey, err)
	}
	var space struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &space); err != nil {
		return "", err
	}
	return space.Name, nil
}

type pageResults struct {
	Results []struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Version struct {
			Number int `json:"number"`
		} `json:"version"`
	} `json:"results"`
}

// FindPageByTitle looks up an existing page in the configured space.
// A nil result without error means no page with that title exists.
func (c Client) FindPageByTitle(title string) (*Page, error) {
	query := url.Values{}
	query.Set("title", title)
	query.Set("spaceKey", c.config.SpaceKey)
	query.Set("expand", "version")

	body, err := c.makeRequest("GET", c.baseURL()+"/content?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error searching for page %q: %w", title, err)
	}

	var results pageResults
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, err
	}
	for _, p := range results.Results {
		if p.Title == title {
			return &Page{ID: p.ID, Title: p.Title, Version: p.Version.Number}, nil
		}
	}
	return nil, nil
}

// PageContent is a page together with its storage-format body
type PageContent struct {
	Page
	Body string
}

// GetPage fetches a page by ID with its body and current version
func (c Client) GetPage(pageID string) (PageContent, error) {
	url := fmt.Sprintf("%s/content/%s?expand=body.storage,version", c.baseURL(), pageID)
	body, err := c.makeRequest("GET", url, nil)
	if err != nil {
		return PageContent{}, fmt.Errorf("error fetching page %s: %w", pageID, err)
	}

	var raw struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Version struct {
			Number int `json:"number"`
		} `json:"version"`
		Body struct {
			Storage struct {
				Value string `json:"value"`
			} `json:"storage"`
		} `json:"body"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return PageContent{}, err
	}
	return PageContent{
		Page: Page{ID: raw.ID, Title: raw.Title, Version: raw.Version.Number},
		Body: raw.Body.Storage.Value,
	}, nil
}

// ChildPages lists the child pages under a parent
func (c Client) ChildPages(parentID string) ([]Page, error) {
	url := fmt.Sprintf("%s/content/%s/child/page?expand=version&limit=50", c.baseURL(), parentID)
	body, err := c.makeRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("error fetching child pages of %s: %w", parentID, err)
	}

	var results pageResults
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, err
	}

	var pages []Page
	for _, p := range results.Results {
		pages = append(pages, Page{ID: p.ID, Title: p.Title, Version: p.Version.Number})
	}
	return pages, nil
}

func storageBody(content string) map[string]any {
	return map[string]any{
		"storage": map[string]string{
			"value":          content,
			"representation": "storage",
		},
	}
}

// CreatePage creates a page in the configured space, optionally under a parent
func (c Client) CreatePage(title, content, parentID string) (Page, error) {
	payload := map[string]any{
		"type":  "page",
		"title": title,
		"space": map[string]string{"key": c.config.SpaceKey},
		"body":  storageBody(content),
	}
	if parentID != "" {
		payload["ancestors"] = []map[string]string{{"id": parentID}}
	}

	body, err := c.makeRequest("POST", c.baseURL()+"/content", payload)
	if err != nil {
		return Page{}, fmt.Errorf("error creating page %q: %w", title, err)
	}

	var created struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return Page{}, err
	}
	c.log.Info().Str("title", title).Str("id", created.ID).Msg("📄 created Confluence page")
	return Page{ID: created.ID, Title: created.Title, Version: 1}, nil
}

// UpdatePage replaces a page's content, bumping its version
func (c Client) UpdatePage(page Page, content string) error {
	payload := map[string]any{
		"version": map[string]int{"number": page.Version + 1},
		"title":   page.Title,
		"type":    "page",
		"body":    storageBody(content),
	}

	if _, err := c.makeRequest("PUT", c.baseURL()+"/content/"+page.ID, payload); err != nil {
		return fmt.Errorf("error updating page %s: %w", page.ID, err)
	}
	c.log.Info().Str("title", page.Title).Str("id", page.ID).Msg("📄 updated Confluence page")
	return nil
}

// AddLabel attaches a label to a page
func (c Client) AddLabel(pageID, label string) error {
	payload := []map[string]string{{"prefix": "global", "name": label}}
	if _, err := c.makeRequest("POST", c.baseURL()+"/content/"+pageID+"/label", payload); err != nil {
		return fmt.Errorf("error labeling page %s: %w", pageID, err)
	}
	return nil
}

// PublishPage creates the page or updates it in place when a page with the
// same title already exists. Returns the page and its browse URL.
func (c Client) PublishPage(title, content, parentID string) (Page, string, error) {
	existing, err := c.FindPageByTitle(title)
	if err != nil {
		return Page{}, "", err
	}

	var page Page
	if existing != nil {
		if err := c.UpdatePage(*existing, content); err != nil {
			return Page{}, "", err
		}
		page = Page{ID: existing.ID, Title: existing.Title, Version: existing.Version + 1}
	} else {
		page, err = c.CreatePage(title, content, parentID)
		if err != nil {
			return Page{}, "", err
		}
	}

	pageURL := fmt.Sprintf("%s/wiki/spaces/%s/pages/%s", c.config.ConfluenceURL, c.config.SpaceKey, page.ID)
	return page, pageURL, nil
}
