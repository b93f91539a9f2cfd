// Package depcheck scans an npm project for outdated dependencies, finds
// where the affected packages are used in the code, and drafts a Jira
// ticket describing the recommended upgrades.
package depcheck

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// LoadManifest reads package.json under repoPath and merges dependencies
// with devDependencies into one name-to-version map.
func LoadManifest(repoPath string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(repoPath, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("reading package.json: %w", err)
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}

	deps := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name, version := range pkg.Dependencies {
		deps[name] = version
	}
	for name, version := range pkg.DevDependencies {
		deps[name] = version
	}
	return deps, nil
}

var rangePrefix = regexp.MustCompile(`^[^0-9]*`)

// CleanVersion strips npm range operators like ^, ~, and >= from a spec
func CleanVersion(spec string) string {
	return rangePrefix.ReplaceAllString(strings.TrimSpace(spec), "")
}

// parseVersion reads up to three numeric components, ignoring prerelease
// and build suffixes.
func parseVersion(v string) [3]int {
	var out [3]int
	for i, part := range strings.SplitN(v, ".", 3) {
		if cut := strings.IndexAny(part, "-+"); cut >= 0 {
			part = part[:cut]
		}
		if n, err := strconv.Atoi(part); err == nil {
			out[i] = n
		}
	}
	return out
}

// ClassifyUpdate labels the gap between the installed and latest versions
// as MAJOR, MINOR, PATCH, or NONE.
func ClassifyUpdate(current, latest string) string {
	c := parseVersion(CleanVersion(current))
	l := parseVersion(CleanVersion(latest))
	switch {
	case l[0] > c[0]:
		return "MAJOR"
	case l[0] == c[0] && l[1] > c[1]:
		return "MINOR"
	case l[0] == c[0] && l[1] == c[1] && l[2] > c[2]:
		return "PATCH"
	default:
		return "NONE"
	}
}
