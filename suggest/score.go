package suggest

import (
	"fmt"
	"sort"
	"strings"

	"sprint-insights/jira"
)

const (
	maxCandidates = 10
	maxReasons    = 3
	snippetMaxLen = 100
)

// Keywords is the ordered, deduplicated keyword set driving relatedness
// scoring. Ticket-origin keywords score higher than file-origin ones.
type Keywords struct {
	ordered    []string
	fromTicket map[string]bool
}

// Candidate is an open ticket annotated with its pattern-match score
type Candidate struct {
	Issue        jira.Issue `json:"issue"`
	MatchScore   int        `json:"match_score"`
	MatchReasons []string   `json:"match_reasons"`
}

func splitTokens(text string, minLen int) []string {
	replacer := strings.NewReplacer("/", " ", "_", " ", "-", " ", ".", " ")
	var tokens []string
	for _, part := range strings.Fields(replacer.Replace(text)) {
		if len(part) > minLen {
			tokens = append(tokens, strings.ToLower(part))
		}
	}
	return tokens
}

// ExtractKeywords builds the keyword set from changed file paths and,
// optionally, a reference ticket's summary and description. File path
// tokens must be longer than 2 characters, ticket text tokens longer
// than 3. Order is first-seen, so scoring stays deterministic.
func ExtractKeywords(changedFiles []string, reference *jira.Issue) Keywords {
	kw := Keywords{fromTicket: make(map[string]bool)}
	seen := make(map[string]bool)

	add := func(token string, ticketOrigin bool) {
		if !seen[token] {
			seen[token] = true
			kw.ordered = append(kw.ordered, token)
		}
		if ticketOrigin {
			kw.fromTicket[token] = true
		}
	}

	for _, path := range changedFiles {
		for _, token := range splitTokens(path, 2) {
			add(token, false)
		}
	}

	if reference != nil {
		for _, token := range splitTokens(reference.Summary, 3) {
			add(token, true)
		}
		for _, token := range splitTokens(reference.Description, 3) {
			add(token, true)
		}
	}

	return kw
}

// Empty reports whether no keywords were extracted
func (k Keywords) Empty() bool {
	return len(k.ordered) == 0
}

// ScoreCandidates scores every ticket against the keyword set and returns
// the top candidates, highest score first. Ties keep the input order and
// zero-score tickets are dropped.
func ScoreCandidates(kw Keywords, tickets []jira.Issue) []Candidate {
	var candidates []Candidate

	for _, ticket := range tickets {
		score := 0
		var reasons []string
		var snippets []string

		descLower := strings.ToLower(ticket.Description)
		if descLower != "" {
			for _, keyword := range kw.ordered {
				if strings.Contains(descLower, keyword) {
					if kw.fromTicket[keyword] {
						score += 5
					} else {
						score += 3
					}
					if snippet := descriptionSnippet(ticket.Description, keyword); snippet != "" && !contains(snippets, snippet) {
						snippets = append(snippets, snippet)
					}
				}
			}
		}
		if len(snippets) > 0 {
			reasons = append(reasons, snippets[0])
		}

		summaryLower := strings.ToLower(ticket.Summary)
		for _, keyword := range kw.ordered {
			if strings.Contains(summaryLower, keyword) {
				if kw.fromTicket[keyword] {
					score += 2
				} else {
					score += 1
				}
				if len(reasons) == 0 {
					reasons = append(reasons, "Related to: "+ticket.Summary)
				}
			}
		}

		for _, label := range ticket.Labels {
			if kw.has(strings.ToLower(label)) {
				score += 4
				reasons = append(reasons, fmt.Sprintf("matching label '%s'", label))
			}
		}
		for _, component := range ticket.Components {
			if kw.has(strings.ToLower(component)) {
				score += 4
				reasons = append(reasons, fmt.Sprintf("matching component '%s'", component))
			}
		}

		if score > 0 {
			if len(reasons) > maxReasons {
				reasons = reasons[:maxReasons]
			}
			candidates = append(candidates, Candidate{
				Issue:        ticket,
				MatchScore:   score,
				MatchReasons: reasons,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

func (k Keywords) has(token string) bool {
	for _, kw := range k.ordered {
		if kw == token {
			return true
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// descriptionSnippet windows the description around the first keyword
// occurrence (40 characters before, 60 after), trims partial words, and
// ellipsizes past the maximum length.
func descriptionSnippet(description, keyword string) string {
	if description == "" || keyword == "" {
		return ""
	}

	pos := strings.Index(strings.ToLower(description), strings.ToLower(keyword))
	if pos == -1 {
		return ""
	}

	start := pos - 40
	if start < 0 {
		start = 0
	}
	end := pos + len(keyword) + 60
	if end > len(description) {
		end = len(description)
	}

	snippet := strings.TrimSpace(description[start:end])
	if start > 0 {
		if firstSpace := strings.Index(snippet, " "); firstSpace > 0 {
			snippet = strings.TrimSpace(snippet[firstSpace:])
		}
	}

	if len(snippet) > snippetMaxLen {
		cut := snippet[:snippetMaxLen]
		if lastSpace := strings.LastIndex(cut, " "); lastSpace > 0 {
			cut = cut[:lastSpace]
		}
		snippet = cut + "..."
	}

	return snippet
}
