package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/survivorbot/internal/config"
	"github.com/omarshaarawi/survivorbot/internal/models"
)

const (
	refreshJob  = "league-refresh"
	reminderJob = "deadline-reminder"
)

type Refresher interface {
	Refresh(ctx context.Context) (models.LeagueData, error)
}

type Reminder interface {
	DeadlineReminder() string
}

type Scheduler struct {
	s           gocron.Scheduler
	cfg         config.Scheduler
	refresher   Refresher
	reminder    Reminder
	sendMessage func(string) error
}

func NewScheduler(cfg config.Scheduler, clock clockwork.Clock, refresher Refresher, reminder Reminder, sendMessage func(string) error) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", cfg.Timezone, err)
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
		gocron.WithClock(clock),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		cfg:         cfg,
		refresher:   refresher,
		reminder:    reminder,
		sendMessage: sendMessage,
	}, nil
}

// Start registers the jobs and starts the scheduler. The league refresh also
// runs once right away so the cache is filled at boot.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.s.NewJob(
		gocron.CronJob(s.cfg.RefreshCron, false),
		gocron.NewTask(func() { s.refresh(ctx) }),
		gocron.WithName(refreshJob),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh job: %w", err)
	}

	_, err = s.s.NewJob(
		gocron.CronJob(s.cfg.ReminderCron, false),
		gocron.NewTask(s.sendReminder),
		gocron.WithName(reminderJob),
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.refresher.Refresh(ctx); err != nil {
		slog.Warn("League refresh incomplete", "error", err)
	}
}

func (s *Scheduler) sendReminder() {
	text := s.reminder.DeadlineReminder()
	if text == "" {
		slog.Debug("No deadline reminder to send")
		return
	}
	if err := s.sendMessage(text); err != nil {
		slog.Error("Failed to send deadline reminder", "error", err)
	}
}
