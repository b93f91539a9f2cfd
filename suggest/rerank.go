package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"sprint-insights/llm"
)

// Suggestion is a final ranked suggestion, either AI-scored or derived
// from the pattern-match score when AI analysis is unavailable.
type Suggestion struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
	Status  string `json:"status"`
	Score   int    `json:"score"`
	Reason  string `json:"reason"`
}

const rerankSystemPrompt = "You are a helpful assistant that analyzes software development tasks and identifies related work."

// AIRank asks the model to re-score the shortlisted candidates against the
// current work. Only suggestions at or above minScore survive. Any failure
// falls back to the pattern-match scores, same threshold applied.
func AIRank(ctx context.Context, cli *llm.Client, currentTicket string, changedFiles []string,
	commitSummary string, candidates []Candidate, minScore int) []Suggestion {

	if len(candidates) == 0 {
		return nil
	}
	if cli == nil || !cli.Enabled() {
		log.Warn().Msg("OpenAI key not configured, using pattern-match scores")
		return heuristicSuggestions(candidates, minScore)
	}

	var files strings.Builder
	for i, f := range changedFiles {
		if i >= 20 {
			break
		}
		fmt.Fprintf(&files, "  - %s\n", f)
	}

	var list strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&list, "  %d. %s: %s (Status: %s)\n", i+1, c.Issue.Key, c.Issue.Summary, c.Issue.Status)
	}

	prompt := fmt.Sprintf(`You are analyzing Jira tickets to find related work.

Current Ticket: %s

Recent Code Changes:
%s
Recent Commit Summary:
%s

Candidate Related Tickets:
%s
Task: Analyze which tickets are most related to the current work. For each relevant ticket:
1. Assign a relevance score (0-100)
2. Provide a complete sentence explaining why it's related.

Return ONLY a JSON array of the top 5 most relevant tickets in this exact format:
[
  {"ticket": "KEY-123", "score": 85, "reason": "This ticket addresses authentication improvements which relates to the current login flow changes"}
]

Return empty array [] if no tickets are related.`, currentTicket, files.String(), commitSummary, list.String())

	var ranked []struct {
		Ticket string `json:"ticket"`
		Score  int    `json:"score"`
		Reason string `json:"reason"`
	}
	if err := cli.CompleteJSON(ctx, rerankSystemPrompt, prompt, &ranked); err != nil {
		log.Warn().Err(err).Msg("AI ranking failed, using pattern-match scores")
		return heuristicSuggestions(candidates, minScore)
	}

	var suggestions []Suggestion
	for _, r := range ranked {
		if r.Score < minScore {
			continue
		}
		for _, c := range candidates {
			if c.Issue.Key == r.Ticket {
				suggestions = append(suggestions, Suggestion{
					Key:     c.Issue.Key,
					Summary: c.Issue.Summary,
					Status:  c.Issue.Status,
					Score:   r.Score,
					Reason:  r.Reason,
				})
				break
			}
		}
	}
	return suggestions
}

// heuristicSuggestions converts the top pattern-match candidates into
// suggestions by scaling match scores onto 0-100.
func heuristicSuggestions(candidates []Candidate, minScore int) []Suggestion {
	var suggestions []Suggestion
	for i, c := range candidates {
		if i >= 5 {
			break
		}
		score := c.MatchScore * 10
		if score > 100 {
			score = 100
		}
		if score < minScore {
			continue
		}
		reasons := c.MatchReasons
		if len(reasons) > 2 {
			reasons = reasons[:2]
		}
		suggestions = append(suggestions, Suggestion{
			Key:     c.Issue.Key,
			Summary: c.Issue.Summary,
			Status:  c.Issue.Status,
			Score:   score,
			Reason:  strings.Join(reasons, ", "),
		})
	}
	return suggestions
}
