package support

import (
	"fmt"
	"sort"
	"strings"

	"sprint-insights/gitrepo"
)

// DeveloperSuggestion is the expertise matcher's verdict for one ticket
type DeveloperSuggestion struct {
	Developer     string   `json:"developer"`
	Confidence    int      `json:"confidence"`
	MatchingFiles []string `json:"matching_files,omitempty"`
	Reason        string   `json:"reason"`
}

// SuggestDeveloper matches a ticket's suspected code areas against each
// developer's committed files: +10 per file match, +20 bonus for having
// any match at all. Confidence is the score capped at 100.
func SuggestDeveloper(codeAreas []string, commitHistory map[string][]string) DeveloperSuggestion {
	type devScore struct {
		name    string
		score   int
		matches int
		files   []string
	}

	var scores []devScore
	for dev, files := range commitHistory {
		s := devScore{name: dev}
		for _, area := range codeAreas {
			areaLower := strings.ToLower(area)
			for _, file := range files {
				fileLower := strings.ToLower(file)
				if strings.Contains(fileLower, areaLower) || strings.Contains(areaLower, fileLower) {
					s.score += 10
					s.matches++
				}
			}
		}
		if s.matches > 0 {
			s.score += 20
		}
		if len(files) > 5 {
			files = files[:5]
		}
		s.files = files
		scores = append(scores, s)
	}

	// Highest score wins; name breaks ties so reruns stay stable
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].name < scores[j].name
	})

	if len(scores) == 0 || scores[0].score == 0 {
		return DeveloperSuggestion{
			Developer:  "Unassigned",
			Confidence: 0,
			Reason:     "No matching expertise found",
		}
	}

	best := scores[0]
	confidence := best.score
	if confidence > 100 {
		confidence = 100
	}
	return DeveloperSuggestion{
		Developer:     best.name,
		Confidence:    confidence,
		MatchingFiles: best.files,
		Reason:        fmt.Sprintf("Committed to %d related files", best.matches),
	}
}

// HistoryFromExpertise flattens a git expertise scan into the
// developer -> files map the matcher consumes.
func HistoryFromExpertise(expertise map[string]*gitrepo.Expertise) map[string][]string {
	history := make(map[string][]string, len(expertise))
	for dev, e := range expertise {
		files := make([]string, 0, len(e.Files))
		for file := range e.Files {
			files = append(files, file)
		}
		sort.Strings(files)
		history[dev] = files
	}
	return history
}
