package support

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sprint-insights/llm"
)

// Analysis is the full result for one support ticket
type Analysis struct {
	Timestamp          time.Time `json:"timestamp"`
	Summary            string    `json:"summary"`
	Description        string    `json:"description"`
	ErrorLog           string    `json:"error_log,omitempty"`
	Category           string    `json:"category"`
	Area               string    `json:"area"`
	Severity           string    `json:"severity"`
	Confidence         int       `json:"confidence"`
	RootCauses         []string  `json:"root_causes"`
	CodeAreas          []string  `json:"code_areas"`
	InvestigationSteps []string  `json:"investigation_steps,omitempty"`
	Reasoning          string    `json:"reasoning,omitempty"`
}

// Analyzer runs AI-backed support ticket analysis with a keyword fallback
type Analyzer struct {
	llm *llm.Client
	log zerolog.Logger
}

// NewAnalyzer creates a support ticket analyzer
func NewAnalyzer(cli *llm.Client, logger zerolog.Logger) Analyzer {
	return Analyzer{llm: cli, log: logger}
}

const analyzerSystemPrompt = `You are an expert support ticket analyzer with deep knowledge of software engineering,
common bugs, performance issues, and integration problems.
You excel at inferring technical root causes from user descriptions without error logs.
Always respond with valid JSON.`

// aiAnalysis mirrors the JSON the model is asked to produce
type aiAnalysis struct {
	Category           string   `json:"category"`
	Area               string   `json:"area"`
	RootCauses         []string `json:"root_causes"`
	CodeAreas          []string `json:"code_areas"`
	InvestigationSteps []string `json:"investigation_steps"`
	Reasoning          string   `json:"reasoning"`
	Confidence         int      `json:"confidence"`
}

// AnalyzeTicket analyzes a support ticket. Severity always comes from the
// keyword classifier; category, root causes, and code areas come from the
// model when available and degrade to the keyword category otherwise.
func (a Analyzer) AnalyzeTicket(ctx context.Context, summary, description, errorLog string) Analysis {
	a.log.Info().Str("summary", summary).Msg("🔍 analyzing support ticket")

	analysis := Analysis{
		Timestamp:   time.Now(),
		Summary:     summary,
		Description: description,
		ErrorLog:    errorLog,
		Severity:    DetermineSeverity(summary, description, errorLog),
	}

	context_ := fmt.Sprintf("Support Ticket Summary: %s\n\nDescription: %s\n", summary, description)
	hasErrorLog := len(errorLog) > 20
	if hasErrorLog {
		context_ += fmt.Sprintf("\nError Log: %s\n", errorLog)
	}

	var parsed aiAnalysis
	var err error
	if a.llm != nil && a.llm.Enabled() {
		prompt := descriptionPrompt(context_)
		if hasErrorLog {
			prompt = standardPrompt(context_)
		}
		err = a.llm.CompleteJSON(ctx, analyzerSystemPrompt, prompt, &parsed)
	} else {
		err = fmt.Errorf("openai key not configured")
	}

	if err != nil {
		a.log.Warn().Err(err).Msg("AI analysis unavailable, using keyword classification")
		category, _ := Categorize(summary)
		analysis.Category = category
		analysis.RootCauses = []string{"Unable to determine"}
		return analysis
	}

	analysis.Category = parsed.Category
	analysis.Area = parsed.Area
	analysis.RootCauses = parsed.RootCauses
	analysis.CodeAreas = parsed.CodeAreas
	analysis.InvestigationSteps = parsed.InvestigationSteps
	analysis.Reasoning = parsed.Reasoning
	analysis.Confidence = parsed.Confidence
	if analysis.Category == "" {
		analysis.Category, _ = Categorize(summary)
	}

	a.log.Info().Str("severity", analysis.Severity).Str("category", analysis.Category).
		Int("confidence", analysis.Confidence).Msg("✅ analysis complete")
	return analysis
}

func standardPrompt(context string) string {
	return fmt.Sprintf(`You are a senior software engineer analyzing support tickets.

Analyze this support ticket with error logs and provide:
1. Issue Category (Frontend Bug/Backend Bug/Database/Performance/Security/Integration/Infrastructure/UI/Other)
2. Affected Area (Frontend/Backend/Database/API/Infrastructure/DevOps)
3. Suspected Root Causes (2-3 technical causes, ordered by likelihood)
4. Likely Code Areas (specific file patterns to investigate)
5. Investigation Steps (ordered by priority)
6. Confidence Level (0-100)

SUPPORT TICKET:
%s

Respond in JSON format:
{
  "category": "category here",
  "area": "affected area",
  "root_causes": ["cause 1", "cause 2", "cause 3"],
  "code_areas": ["path/file.ts", "path/module.py"],
  "investigation_steps": ["step 1", "step 2"],
  "confidence": 90
}`, context)
}

func descriptionPrompt(context string) string {
	return fmt.Sprintf(`You are an expert support ticket analyzer. Based ONLY on the description provided (no error logs available),
infer the most likely technical root causes and affected code areas.

KEY INSIGHT: Without error logs, look for patterns like:
- User behavior descriptions suggest UI/form handling issues
- Timing descriptions (slow, intermittent) suggest performance/race conditions
- Data-related descriptions suggest database/API issues
- Integration descriptions suggest third-party API issues
- Feature not working suggests missing implementation or condition bugs

SUPPORT TICKET:
%s

Respond in JSON format:
{
  "category": "category here",
  "area": "affected area",
  "root_causes": ["most likely cause", "second most likely", "third possibility"],
  "reasoning": "why these root causes based on description",
  "code_areas": ["src/components/IssueArea.tsx", "src/services/RelatedService.ts"],
  "investigation_steps": ["where to start without error logs"],
  "confidence": 75
}`, context)
}
