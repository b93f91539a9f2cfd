package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sprint-insights/config"
	"sprint-insights/gitrepo"
	"sprint-insights/jira"
	"sprint-insights/llm"
	"sprint-insights/support"
)

// SupportServer exposes the support ticket analysis API
type SupportServer struct {
	Router   *chi.Mux
	config   config.Config
	th       config.Thresholds
	jira     jira.Client
	git      gitrepo.Analyzer
	analyzer support.Analyzer
	log      zerolog.Logger

	mu       sync.Mutex
	analyzed map[string]bool
}

// NewSupportServer wires the support API against the configured Jira
// project and local repository.
func NewSupportServer(cfg config.Config, th config.Thresholds, cli *llm.Client, logger zerolog.Logger) *SupportServer {
	s := &SupportServer{
		config:   cfg,
		th:       th,
		jira:     jira.NewClient(cfg, logger),
		git:      gitrepo.NewAnalyzer(cfg.RepoPath, logger),
		analyzer: support.NewAnalyzer(cli, logger),
		log:      logger,
		analyzed: make(map[string]bool),
	}
	s.setupRoutes()
	return s
}

func (s *SupportServer) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/health", s.healthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze-support-ticket", s.analyzeSupportTicket)
		r.Post("/analyze-jira-ticket", s.analyzeJiraTicket)
		r.Post("/jira-webhook", s.handleWebhook)
		r.Get("/developer-expertise", s.developerExpertise)
		r.Post("/find-related-commits", s.findRelatedCommits)
		r.Get("/support-metrics", s.supportMetrics)
	})

	s.Router = r
}

func (s *SupportServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "support-ticket-api",
	})
}

// gitAnalysis is the history context attached to every ticket analysis
type gitAnalysis struct {
	RecentChanges  []gitrepo.Commit        `json:"recent_changes"`
	RelatedCommits []gitrepo.RelatedCommit `json:"related_commits"`
}

// analysisResult pairs an analysis with the expertise matcher's verdict
// and the repository context it was matched against.
type analysisResult struct {
	Analysis  support.Analysis            `json:"analysis"`
	Developer support.DeveloperSuggestion `json:"suggested_developer"`
	Git       gitAnalysis                 `json:"git_analysis"`
	Actions   []string                    `json:"recommended_actions"`
}

// analyze runs the AI analysis and the git history snapshot concurrently,
// then matches the suspected code areas against developer history.
func (s *SupportServer) analyze(ctx context.Context, summary, description, errorLog string) analysisResult {
	var analysis support.Analysis
	var snap gitrepo.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analysis = s.analyzer.AnalyzeTicket(gctx, summary, description, errorLog)
		return nil
	})
	g.Go(func() error {
		snap = s.git.TakeSnapshot(s.config.DaysToAnalyze, summary)
		return nil
	})
	g.Wait()

	history := support.HistoryFromExpertise(snap.Expertise)
	dev := support.SuggestDeveloper(analysis.CodeAreas, history)

	changes := snap.RecentChanges
	if len(changes) > 5 {
		changes = changes[:5]
	}

	return analysisResult{
		Analysis:  analysis,
		Developer: dev,
		Git:       gitAnalysis{RecentChanges: changes, RelatedCommits: snap.RelatedCommits},
		Actions:   recommendedActions(analysis, dev, snap.RelatedCommits),
	}
}

func recommendedActions(analysis support.Analysis, dev support.DeveloperSuggestion, related []gitrepo.RelatedCommit) []string {
	var actions []string
	if len(analysis.CodeAreas) > 0 {
		areas := analysis.CodeAreas
		if len(areas) > 3 {
			areas = areas[:3]
		}
		actions = append(actions, "Review these code areas: "+strings.Join(areas, ", "))
	}
	if dev.Developer != "Unassigned" {
		actions = append(actions, fmt.Sprintf("Check recent commits by %s", dev.Developer))
	}
	actions = append(actions,
		fmt.Sprintf("Look for similar issues: %d related commits found", len(related)),
		"Compare with past resolutions to similar issues")
	return actions
}

func (s *SupportServer) analyzeSupportTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
		ErrorLog    string `json:"error_log"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Summary == "" {
		respondError(w, http.StatusBadRequest, "summary is required")
		return
	}

	result := s.analyze(r.Context(), req.Summary, req.Description, req.ErrorLog)
	respond(w, result, map[string]int{
		"code_areas":  len(result.Analysis.CodeAreas),
		"root_causes": len(result.Analysis.RootCauses),
	})
}

func (s *SupportServer) analyzeJiraTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TicketKey string `json:"ticket_key"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TicketKey == "" {
		respondError(w, http.StatusBadRequest, "ticket_key is required")
		return
	}

	issue, err := s.jira.GetIssue(req.TicketKey)
	if err != nil {
		s.log.Error().Err(err).Str("key", req.TicketKey).Msg("❌ error fetching ticket")
		respondError(w, http.StatusNotFound, "ticket not found: "+req.TicketKey)
		return
	}

	result := s.analyze(r.Context(), issue.Summary, issue.Description, "")
	comment := support.FormatComment(result.Analysis, result.Developer)
	if err := s.jira.AddComment(issue.Key, comment); err != nil {
		s.log.Error().Err(err).Str("key", issue.Key).Msg("❌ error posting analysis comment")
	}
	s.markAnalyzed(issue.Key)

	respond(w, result, map[string]int{
		"code_areas":  len(result.Analysis.CodeAreas),
		"root_causes": len(result.Analysis.RootCauses),
	})
}

func (s *SupportServer) developerExpertise(w http.ResponseWriter, r *http.Request) {
	days := 90
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	expertise := s.git.DeveloperExpertise(days)
	respond(w, expertise, map[string]int{"developers": len(expertise)})
}

func (s *SupportServer) findRelatedCommits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords []string `json:"keywords"`
		Days     int      `json:"days"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Keywords) == 0 {
		respondError(w, http.StatusBadRequest, "keywords are required")
		return
	}
	if req.Days <= 0 {
		req.Days = 30
	}

	commits := s.git.RelatedCommits(req.Keywords, req.Days, 5)
	respond(w, commits, map[string]int{"commits": len(commits)})
}

// developerActivity is one row of the support-metrics leaderboard
type developerActivity struct {
	Developer string `json:"developer"`
	Commits   int    `json:"commits"`
}

func (s *SupportServer) supportMetrics(w http.ResponseWriter, r *http.Request) {
	expertise := s.git.DeveloperExpertise(90)
	recent := s.git.RecentChanges(7, 20)

	top := make([]developerActivity, 0, len(expertise))
	for dev, info := range expertise {
		top = append(top, developerActivity{Developer: dev, Commits: info.Commits})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Commits != top[j].Commits {
			return top[i].Commits > top[j].Commits
		}
		return top[i].Developer < top[j].Developer
	})
	if len(top) > 5 {
		top = top[:5]
	}

	respond(w, map[string]any{
		"total_developers": len(expertise),
		"recent_commits":   len(recent),
		"top_developers":   top,
		"active_areas":     gitrepo.ActiveAreas(recent, 10),
	}, nil)
}

func (s *SupportServer) markAnalyzed(key string) {
	s.mu.Lock()
	s.analyzed[key] = true
	s.mu.Unlock()
}

func (s *SupportServer) alreadyAnalyzed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzed[key]
}

// hasAnalysisComment checks the ticket's existing comments for the marker
// so restarts do not re-analyze tickets the previous process handled.
func (s *SupportServer) hasAnalysisComment(key string) bool {
	comments, err := s.jira.Comments(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("could not fetch comments, assuming not analyzed")
		return false
	}
	for _, c := range comments {
		if support.HasAnalysisMarker(c.Body) {
			return true
		}
	}
	return false
}

func (s *SupportServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var event struct {
		WebhookEvent string `json:"webhookEvent"`
		Issue        struct {
			Key string `json:"key"`
		} `json:"issue"`
	}
	if err := decodeBody(r, &event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	if event.WebhookEvent != "jira:issue_created" && event.WebhookEvent != "jira:issue_updated" {
		respond(w, map[string]string{"result": "skipped", "reason": "unhandled event " + event.WebhookEvent}, nil)
		return
	}
	key := event.Issue.Key
	if key == "" {
		respondError(w, http.StatusBadRequest, "webhook payload missing issue key")
		return
	}

	if s.alreadyAnalyzed(key) {
		s.log.Info().Str("key", key).Msg("⏭️ ticket already analyzed this session")
		respond(w, map[string]string{"result": "skipped", "reason": "already analyzed"}, nil)
		return
	}
	if s.hasAnalysisComment(key) {
		s.markAnalyzed(key)
		s.log.Info().Str("key", key).Msg("⏭️ ticket already carries an analysis comment")
		respond(w, map[string]string{"result": "skipped", "reason": "analysis comment exists"}, nil)
		return
	}

	issue, err := s.jira.GetIssue(key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("❌ error fetching webhook ticket")
		respondError(w, http.StatusInternalServerError, "error fetching ticket")
		return
	}

	result := s.analyze(r.Context(), issue.Summary, issue.Description, "")
	comment := support.FormatComment(result.Analysis, result.Developer)
	if err := s.jira.AddComment(key, comment); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("❌ error posting analysis comment")
		respondError(w, http.StatusInternalServerError, "error posting comment")
		return
	}
	s.markAnalyzed(key)

	assigned := s.maybeAutoAssign(key, result.Developer)

	respond(w, map[string]any{
		"result":        "analyzed",
		"ticket":        key,
		"developer":     result.Developer.Developer,
		"confidence":    result.Developer.Confidence,
		"auto_assigned": assigned,
	}, map[string]int{
		"code_areas": len(result.Analysis.CodeAreas),
	})
}

// maybeAutoAssign assigns the ticket when the expertise match is confident
// enough and the developer resolves to a Jira account.
func (s *SupportServer) maybeAutoAssign(key string, dev support.DeveloperSuggestion) bool {
	if dev.Confidence < s.th.AutoAssignMinScore || dev.Developer == "Unassigned" {
		return false
	}

	accountID, err := s.jira.FindAssignableUser(dev.Developer)
	if err != nil || accountID == "" {
		s.log.Warn().Err(err).Str("developer", dev.Developer).Msg("could not resolve developer to a Jira account")
		return false
	}
	if err := s.jira.AssignIssue(key, accountID); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("❌ error auto-assigning ticket")
		return false
	}
	s.log.Info().Str("key", key).Str("developer", dev.Developer).Int("confidence", dev.Confidence).
		Msg("👤 ticket auto-assigned")
	return true
}

// Start runs the support API server
func (s *SupportServer) Start(port string) error {
	s.log.Info().Str("port", port).Msg("🚀 starting support ticket API server")
	s.log.Info().Msg("   GET  /health - Health check")
	s.log.Info().Msg("   POST /api/analyze-support-ticket - Analyze raw ticket text")
	s.log.Info().Msg("   POST /api/analyze-jira-ticket - Analyze an existing Jira ticket")
	s.log.Info().Msg("   POST /api/jira-webhook - Jira issue-created webhook")
	s.log.Info().Msg("   GET  /api/developer-expertise - Per-developer git activity")
	s.log.Info().Msg("   POST /api/find-related-commits - Keyword search over commit history")
	s.log.Info().Msg("   GET  /api/support-metrics - Repository activity overview")

	return http.ListenAndServe(":"+port, s.Router)
}
