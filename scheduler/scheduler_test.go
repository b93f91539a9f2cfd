package scheduler

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sprint-insights/jira"
)

func testScheduler(generate GenerateFunc) *Scheduler {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return New(jira.Client{}, 3, generate, logger)
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)
	b := time.Date(2025, 6, 13, 23, 59, 0, 0, time.UTC)
	c := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	if !sameDay(a, b) {
		t.Error("same calendar day reported as different")
	}
	if sameDay(a, c) {
		t.Error("different days reported as same")
	}
}

func TestFireOncePerDay(t *testing.T) {
	calls := 0
	s := testScheduler(func(ctx context.Context, reportType string) error {
		calls++
		return nil
	})

	now := time.Date(2025, 6, 13, 9, 5, 0, 0, time.UTC)
	s.fire(context.Background(), now, "mid", "Sprint 42")
	s.fire(context.Background(), now, "mid", "Sprint 42")
	s.fire(context.Background(), now.Add(30*time.Minute), "mid", "Sprint 42")

	if calls != 1 {
		t.Errorf("generate called %d times, want 1", calls)
	}

	// A different report type the same day still fires
	s.fire(context.Background(), now, "end", "Sprint 42")
	if calls != 2 {
		t.Errorf("generate called %d times after end report, want 2", calls)
	}

	// The next day fires again
	s.fire(context.Background(), now.AddDate(0, 0, 1), "mid", "Sprint 42")
	if calls != 3 {
		t.Errorf("generate called %d times next day, want 3", calls)
	}
}

func TestFireDoesNotRetrySameDayAfterFailure(t *testing.T) {
	calls := 0
	s := testScheduler(func(ctx context.Context, reportType string) error {
		calls++
		return errors.New("confluence unavailable")
	})

	now := time.Date(2025, 6, 13, 9, 5, 0, 0, time.UTC)
	s.fire(context.Background(), now, "mid", "Sprint 42")
	s.fire(context.Background(), now.Add(time.Minute), "mid", "Sprint 42")

	if calls != 1 {
		t.Errorf("generate called %d times, want 1 (no same-day retry)", calls)
	}
}
