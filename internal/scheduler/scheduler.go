package scheduler

import (
	"log/slog"
	"time"

	"github.com/dohr-michael/nag/internal/events"
)

// Scheduler publishes a reminder.due event whenever the cron expression
// matches the current minute. Publishing instead of invoking keeps a slow
// reminder run (the LLM round-trips) off the tick loop.
type Scheduler struct {
	cron *CronExpr
	bus  *events.Bus

	done    chan struct{}
	lastRun time.Time
}

// New creates a scheduler for the given cron expression.
func New(cron *CronExpr, bus *events.Bus) *Scheduler {
	return &Scheduler{
		cron: cron,
		bus:  bus,
		done: make(chan struct{}),
	}
}

// Start begins the minute ticker.
func (s *Scheduler) Start() {
	slog.Info("scheduler started", "cron", s.cron.String(), "next", s.cron.Next(time.Now()).Format(time.RFC3339))
	go s.loop()
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	close(s.done)
	slog.Info("scheduler stopped")
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.tick(now)
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) tick(now time.Time) {
	if !s.cron.Matches(now) {
		return
	}
	// At most one trigger per matched minute.
	if now.Truncate(time.Minute).Equal(s.lastRun) {
		return
	}
	s.lastRun = now.Truncate(time.Minute)

	slog.Debug("scheduler: reminder due", "at", now.Format(time.RFC3339))
	s.bus.Publish(events.NewEvent(events.EventReminderDue, map[string]any{
		"cron": s.cron.String(),
	}))
}
