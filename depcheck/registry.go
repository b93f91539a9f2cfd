package depcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Registry queries the npm registry for published package versions
type Registry struct {
	http    *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewRegistry creates a client for the public npm registry
func NewRegistry(logger zerolog.Logger) Registry {
	return Registry{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://registry.npmjs.org",
		log:     logger,
	}
}

// LatestVersion returns the dist-tags.latest version of a package
func (r Registry) LatestVersion(name string) (string, error) {
	resp, err := r.http.Get(r.baseURL + "/" + name)
	if err != nil {
		return "", fmt.Errorf("querying registry for %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("registry returned status %d for %s", resp.StatusCode, name)
	}

	var data struct {
		DistTags struct {
			Latest string `json:"latest"`
		} `json:"dist-tags"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", err
	}
	if data.DistTags.Latest == "" {
		return "", fmt.Errorf("no latest tag published for %s", name)
	}
	return data.DistTags.Latest, nil
}

// Outdated is one dependency with a newer published version
type Outdated struct {
	Package string `json:"package"`
	Current string `json:"current"`
	Latest  string `json:"latest"`
	Type    string `json:"type"`
}

// FindOutdated compares each manifest entry against the registry. Packages
// the registry cannot answer for are skipped with a warning.
func (r Registry) FindOutdated(deps map[string]string) []Outdated {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Outdated
	for _, name := range names {
		latest, err := r.LatestVersion(name)
		if err != nil {
			r.log.Warn().Err(err).Str("package", name).Msg("skipping registry lookup")
			continue
		}
		kind := ClassifyUpdate(deps[name], latest)
		if kind == "NONE" {
			continue
		}
		out = append(out, Outdated{
			Package: name,
			Current: CleanVersion(deps[name]),
			Latest:  latest,
			Type:    kind,
		})
	}
	return out
}
