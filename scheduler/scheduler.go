package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sprint-insights/jira"
)

// GenerateFunc produces and publishes one report of the given type,
// "mid" or "end".
type GenerateFunc func(ctx context.Context, reportType string) error

// Scheduler fires sprint reports on their due dates. It ticks once a
// minute and generates during the configured run hour: the mid-sprint
// review on the sprint's midpoint date and the sprint report on its
// end date. Each report fires at most once per day.
type Scheduler struct {
	jira     jira.Client
	boardID  int
	runHour  int
	generate GenerateFunc
	log      zerolog.Logger
	fired    map[string]bool
}

// New creates a scheduler that runs reports at 09:00 local time
func New(cli jira.Client, boardID int, generate GenerateFunc, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		jira:     cli,
		boardID:  boardID,
		runHour:  9,
		generate: generate,
		log:      logger,
		fired:    make(map[string]bool),
	}
}

// Run ticks until the context is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info().Int("board", s.boardID).Int("run_hour", s.runHour).Msg("⏰ scheduler started")

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	s.check(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("⏰ scheduler stopped")
			return ctx.Err()
		case now := <-ticker.C:
			s.check(ctx, now)
		}
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *Scheduler) check(ctx context.Context, now time.Time) {
	if now.Hour() != s.runHour {
		return
	}

	active, err := s.jira.ActiveSprint(s.boardID)
	if err != nil {
		s.log.Warn().Err(err).Msg("scheduler could not fetch active sprint")
		return
	}
	if active == nil {
		return
	}

	if mid := active.Midpoint(); mid != nil && sameDay(*mid, now) {
		s.fire(ctx, now, "mid", active.Name)
	}
	if active.EndDate != nil && sameDay(*active.EndDate, now) {
		s.fire(ctx, now, "end", active.Name)
	}
}

func (s *Scheduler) fire(ctx context.Context, now time.Time, reportType, sprintName string) {
	key := fmt.Sprintf("%s|%s", now.Format("2006-01-02"), reportType)
	if s.fired[key] {
		return
	}
	s.fired[key] = true

	s.log.Info().Str("type", reportType).Str("sprint", sprintName).Msg("📅 report due, generating")
	if err := s.generate(ctx, reportType); err != nil {
		s.log.Error().Err(err).Str("type", reportType).Msg("❌ scheduled report failed")
		// Retry on the next matching tick of a later day, not today
		return
	}
	s.log.Info().Str("type", reportType).Msg("✅ scheduled report published")
}
