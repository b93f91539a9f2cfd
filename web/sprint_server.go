package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"sprint-insights/config"
	"sprint-insights/confluence"
	"sprint-insights/jira"
	"sprint-insights/llm"
	"sprint-insights/report"
	"sprint-insights/sprint"
)

// SprintServer exposes the sprint reporting API
type SprintServer struct {
	Router     *chi.Mux
	config     config.Config
	th         config.Thresholds
	jira       jira.Client
	confluence confluence.Client
	llm        *llm.Client
	log        zerolog.Logger
}

// NewSprintServer wires the sprint API against Jira and Confluence
func NewSprintServer(cfg config.Config, th config.Thresholds, cli *llm.Client, logger zerolog.Logger) *SprintServer {
	s := &SprintServer{
		config:     cfg,
		th:         th,
		jira:       jira.NewClient(cfg, logger),
		confluence: confluence.NewClient(cfg, logger),
		llm:        cli,
		log:        logger,
	}
	s.setupRoutes()
	return s
}

func (s *SprintServer) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/health", s.healthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-sprint-report", s.generateReport)
		r.Get("/sprint-status", s.sprintStatus)
	})

	s.Router = r
}

func (s *SprintServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "sprint-report-api",
	})
}

// sprintSnapshot fetches the active sprint and computes its metrics,
// risks, and health in one pass.
func (s *SprintServer) sprintSnapshot(now time.Time) (*jira.Sprint, []jira.Issue, sprint.Metrics, sprint.Risks, sprint.Health, error) {
	active, err := s.jira.ActiveSprint(s.config.JiraBoardID)
	if err != nil || active == nil {
		return nil, nil, sprint.Metrics{}, sprint.Risks{}, sprint.Health{}, err
	}

	issues, err := s.jira.SprintIssues(s.config.JiraBoardID, active.ID)
	if err != nil {
		return active, nil, sprint.Metrics{}, sprint.Risks{}, sprint.Health{}, err
	}

	m := sprint.Aggregate(issues, active.EndDate, s.th, now)
	risks := sprint.DetectRisks(issues, active.EndDate, s.th, now)
	health := sprint.CalculateHealth(m, risks, active.StartDate, active.EndDate, now)
	return active, issues, m, risks, health, nil
}

func (s *SprintServer) generateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReportType string `json:"report_type"`
		Force      bool   `json:"force"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ReportType == "" {
		req.ReportType = "mid"
	}
	if req.ReportType != "mid" && req.ReportType != "end" {
		respondError(w, http.StatusBadRequest, "report_type must be mid or end")
		return
	}

	now := time.Now()
	active, issues, m, risks, health, err := s.sprintSnapshot(now)
	if err != nil {
		s.log.Error().Err(err).Msg("❌ error building sprint snapshot")
		respondError(w, http.StatusInternalServerError, "error fetching sprint data")
		return
	}
	if active == nil {
		respondError(w, http.StatusNotFound, "no active sprint on board")
		return
	}
	if req.ReportType == "end" && !req.Force && active.EndDate != nil && now.Before(*active.EndDate) {
		respondError(w, http.StatusConflict, "sprint has not ended yet, pass force to generate anyway")
		return
	}

	var title, content string
	var rep report.SprintReport
	if req.ReportType == "mid" {
		notes := report.AINotes(r.Context(), s.llm, active.Name, m)
		rep = report.New(*active, m, risks, health, notes)
		title = report.MidSprintTitle(active.Name, now)
		content = report.RenderMidSprint(rep, s.config.JiraURL, s.config.JiraProject, s.config.JiraBoardID, now)
	} else {
		notes := report.AIRetrospective(r.Context(), s.llm, active.Name, m, health)
		rep = report.New(*active, m, risks, health, notes)
		title = report.EndOfSprintTitle(active.Name, now)
		content = report.RenderEndOfSprint(rep, s.config.JiraURL, report.Spillover(issues), now)
	}

	page, pageURL, err := s.confluence.PublishPage(title, content, "")
	if err != nil {
		s.log.Error().Err(err).Str("title", title).Msg("❌ error publishing report page")
		respondError(w, http.StatusBadGateway, "error publishing to Confluence")
		return
	}

	respond(w, map[string]any{
		"run_id":       rep.RunID,
		"report_type":  req.ReportType,
		"sprint":       active.Name,
		"page_id":      page.ID,
		"page_url":     pageURL,
		"health_score": health.Score,
		"completion":   m.CompletionPct,
	}, map[string]int{
		"issues": m.TotalIssues,
		"risks":  risks.Total(),
	})
}

func (s *SprintServer) sprintStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	active, _, m, risks, health, err := s.sprintSnapshot(now)
	if err != nil {
		s.log.Error().Err(err).Msg("❌ error building sprint snapshot")
		respondError(w, http.StatusInternalServerError, "error fetching sprint data")
		return
	}
	if active == nil {
		respondError(w, http.StatusNotFound, "no active sprint on board")
		return
	}

	respond(w, map[string]any{
		"sprint":  active,
		"metrics": m,
		"health":  health,
		"risks":   risks,
	}, map[string]int{
		"issues":  m.TotalIssues,
		"blocked": len(m.Blocked),
		"at_risk": len(m.AtRisk),
	})
}

// Start runs the sprint API server
func (s *SprintServer) Start(port string) error {
	s.log.Info().Str("port", port).Msg("🚀 starting sprint report API server")
	s.log.Info().Msg("   GET  /health - Health check")
	s.log.Info().Msg("   POST /api/generate-sprint-report - Render and publish a report")
	s.log.Info().Msg("   GET  /api/sprint-status - Current sprint metrics and health")

	return http.ListenAndServe(":"+port, s.Router)
}
